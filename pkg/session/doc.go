// Package session defines the token source the realtime client depends on.
//
// The core never reads credentials from ambient state; it receives a Provider
// at construction and asks it for the current bearer token when dialing.
// A Provider reports whether a token is currently available, so callers can
// distinguish "no session yet" from an empty value.
//
// Basic usage:
//
//	manager, err := notifykit.New(cfg,
//	    notifykit.WithSessionProvider(session.Static("tok-123")),
//	)
//
// Func adapts any closure, for example one reading a renewing token store:
//
//	provider := session.Func(func(ctx context.Context) (string, bool) {
//	    return tokens.Current(ctx)
//	})
package session
