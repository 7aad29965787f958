package utils

import "context"

// contextKey keeps request metadata keys private to this package so they
// cannot collide with string keys set by other code.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	clientIPKey  contextKey = "client_ip"
	userAgentKey contextKey = "user_agent"
)

// WithRequestMeta attaches request tracing metadata to the context.
func WithRequestMeta(ctx context.Context, requestID, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// RequestIDFromContext returns the request ID, or "" when none was attached.
func RequestIDFromContext(ctx context.Context) string {
	return contextString(ctx, requestIDKey)
}

// ClientIPFromContext returns the client IP, or "" when none was attached.
func ClientIPFromContext(ctx context.Context) string {
	return contextString(ctx, clientIPKey)
}

// UserAgentFromContext returns the user agent, or "" when none was attached.
func UserAgentFromContext(ctx context.Context) string {
	return contextString(ctx, userAgentKey)
}

func contextString(ctx context.Context, key contextKey) string {
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}
