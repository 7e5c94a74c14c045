package protocol

import "context"

// requestMetaKey is the context key for request metadata.
type requestMetaKey struct{}

// RequestMeta holds per-invocation metadata that transports send alongside
// the envelope. The HTTP and WebSocket transports send every entry as a
// header, so keys should be canonical header names.
type RequestMeta map[string]string

// ContextWithRequestMeta returns a new context with the request metadata attached.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the request metadata from the context.
// Returns nil if no metadata is present.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return nil
}

// GetRequestMeta returns a single metadata value, or "" when absent.
func GetRequestMeta(ctx context.Context, key string) string {
	return RequestMetaFromContext(ctx)[key]
}

// SetRequestMeta returns a context carrying a copy of the existing metadata
// with key set to value. The metadata seen by outer callers is never mutated,
// so concurrent invocations sharing a parent context stay independent.
func SetRequestMeta(ctx context.Context, key, value string) context.Context {
	prev := RequestMetaFromContext(ctx)
	meta := make(RequestMeta, len(prev)+1)
	for k, v := range prev {
		meta[k] = v
	}
	meta[key] = value
	return ContextWithRequestMeta(ctx, meta)
}
