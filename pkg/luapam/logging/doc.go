// Package logging provides the small logging facade used by the PAM binding.
//
// The Logger interface wraps the subset of log/slog the binding needs so
// applications can plug in their own implementation:
//
//	type Logger interface {
//	    Debug(ctx context.Context, msg string, args ...any)
//	    Info(ctx context.Context, msg string, args ...any)
//	    Warn(ctx context.Context, msg string, args ...any)
//	    Error(ctx context.Context, msg string, args ...any)
//	    With(args ...any) Logger
//	}
//
// New(nil) binds to slog.Default(). Discard drops everything, which is what
// tests usually want.
//
// # Redaction
//
// Conversation responses carry passwords and one-time codes. The binding
// never logs their text; it logs Redacted("response") instead:
//
//	logger.Debug(ctx, "conversation", "messages", 1, logging.Redacted("response"))
//	// response="[redacted]"
//
// Custom implementations must keep that guarantee: do not log arguments
// whose key is "response" or "authtok" even if a caller passes one.
package logging
