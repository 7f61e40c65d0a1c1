package session

import (
	"context"
	"os"
)

// Provider supplies the bearer token attached to outbound connections and
// requests. The second return value reports whether a token is available;
// implementations must be safe for concurrent use.
type Provider interface {
	Token(ctx context.Context) (string, bool)
}

// Static is a Provider returning a fixed token. An empty value reports no
// token available.
type Static string

func (s Static) Token(_ context.Context) (string, bool) {
	return string(s), s != ""
}

// Func adapts a closure to the Provider interface.
type Func func(ctx context.Context) (string, bool)

func (f Func) Token(ctx context.Context) (string, bool) {
	return f(ctx)
}

// FromEnv returns a Provider reading the token from the named environment
// variable on every call.
func FromEnv(key string) Provider {
	return Func(func(_ context.Context) (string, bool) {
		v := os.Getenv(key)
		return v, v != ""
	})
}
