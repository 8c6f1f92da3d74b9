package middlewares

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/cmsroute/internal"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
)

type requestIDKey struct{}

type requestID struct {
	generate func() string
	header   string
	upstream []string
}

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestID)

// WithRequestIDHeaders replaces the headers an upstream ID is read from,
// in priority order. Called without headers, upstream IDs are ignored,
// which suits servers exposed without a proxy in front.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(r *requestID) {
		r.upstream = headers
	}
}

// WithRequestIDGenerator replaces uuid.NewString.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(r *requestID) {
		if gen != nil {
			r.generate = gen
		}
	}
}

// WithRequestIDResponseHeader sets the header the ID is echoed in.
// Default: X-Request-ID.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(r *requestID) {
		if header != "" {
			r.header = header
		}
	}
}

// RequestID tags each request with an ID: the first one found in
// X-Request-ID or X-Correlation-ID, or a new UUID. HTTP errors returned
// further down carry the ID into the error response.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestID{
		generate: uuid.NewString,
		header:   "X-Request-ID",
		upstream: []string{"X-Request-ID", "X-Correlation-ID"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]internal.ExtractorSource, len(cfg.upstream))
	for i, h := range cfg.upstream {
		sources[i] = internal.FromHeader(h)
	}
	inbound := internal.NewExtractor(sources...)

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			id, ok := inbound.Extract(c)
			if !ok {
				id = cfg.generate()
			}
			c.Set(requestIDKey{}, id)
			c.SetHeader(cfg.header, id)

			err := next(c)
			if he := internal.AsHTTPError(err); he != nil && he.RequestID == "" {
				he.RequestID = id
			}
			return err
		}
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor adds request_id to log records written with the
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor(requestIDKey{}, "request_id")
}
