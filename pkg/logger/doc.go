// Package logger builds the log/slog loggers used across cmsroute.
//
// [New] returns a JSON (or text) stdout logger at the configured level,
// wrapped by [NewLogHandlerDecorator] so request-scoped values are attached to
// every record:
//
//	log := logger.New(logger.Config{Level: "debug", Format: logger.FormatText},
//		logger.StringExtractor(requestIDKey{}, "request_id"),
//	)
//
// When a Sentry DSN is configured, warnings and errors are also shipped to
// Sentry and errors open issues. If the SDK cannot be initialized the logger
// falls back to stdout only.
//
// Components that accept a logger default to [NewNope].
//
// # Environment
//
//	LOG_LEVEL           debug | info | warn | error (default: info)
//	LOG_FORMAT          json | text (default: json)
//	SENTRY_DSN          enables Sentry when set
//	SENTRY_ENVIRONMENT  default: production
//	SENTRY_MIN_LEVEL    WARN or ERROR (default: WARN)
package logger
