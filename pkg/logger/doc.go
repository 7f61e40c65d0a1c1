// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the toolkit by exposing
// a single factory - New - that creates a *slog.Logger configured by a set of
// Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from
//     a context value (for example a request id) every time Handle is invoked
//
// # Architecture
//
// New builds a decorated slog.Handler. It first picks the concrete handler -
// slog.NewTextHandler or slog.NewJSONHandler - based on the configured
// Format, then wraps it with LogHandlerDecorator which executes any
// registered ContextExtractor callbacks before delegating to the underlying
// handler.
//
// Helper constructors such as Error, SessionID, Room and FrameType live in
// attr.go and keep attribute naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/evalforge/notifykit/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithDevelopment("relayd"),
//	        logger.WithContextValue("request_id", ctxKeyRequestID),
//	    )
//	    logger.SetAsDefault(log)
//
//	    log.Info("frame dropped",
//	        logger.FrameType("pong"),
//	        logger.SessionID("u1"),
//	    )
//	}
//
// Error produces an attribute only when the supplied error is non-nil,
// allowing calls like
//
//	log.Warn("delivery failed", logger.Error(err))
//
// without an additional nil check.
package logger
