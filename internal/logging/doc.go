// Package logging provides structured logging for campusfeed on top of zap.
//
// Logs go to stderr by default because the terminal client owns stdout, with
// an optional OpenTelemetry bridge for shipping records alongside traces.
// Context carries the acting session user and a request id; the context-aware
// methods stamp both onto every record together with the active trace and
// span ids.
//
// Example:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx := logging.WithSessionUser(ctx, "42")
//	logger.Info(ctx, "feed refreshed", zap.Int("posts", n))
package logging
