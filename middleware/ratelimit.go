package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// ErrRateLimited is returned when an invocation is rejected locally by the
// client-side rate limiter. No request is sent.
var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(*protocol.Request) string
	logger  Logger
	poll    time.Duration
}

// WithRateLimitKeyFunc selects the bucket an invocation is charged to.
func WithRateLimitKeyFunc(fn func(*protocol.Request) string) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.keyFunc = fn
	}
}

// WithRateLimitLogger sets the logger for rate limit events.
func WithRateLimitLogger(l Logger) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.logger = l
	}
}

// WithRateLimitWait makes an invocation wait for a token instead of failing
// with ErrRateLimited. The bucket is retried every poll interval until the
// context is done, in which case the context error is returned.
func WithRateLimitWait(poll time.Duration) RateLimitOption {
	return func(o *rateLimitConfig) {
		o.poll = poll
	}
}

// RateLimit returns middleware that limits the invocation rate using a token
// bucket. The rate is in invocations per second; burst allows short bursts
// above it. Calls and notifications share the bucket.
func RateLimit(rate int, burst int, opts ...RateLimitOption) Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(_ *protocol.Request) string { return "global" },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			key := cfg.keyFunc(req)

			if limiter.Allow(ctx, key) {
				return next(ctx, req)
			}

			if cfg.logger != nil {
				cfg.logger.Warn("rate limit exceeded",
					F("method", req.Method),
					F("key", key),
					F("waiting", cfg.poll > 0),
				)
			}
			if cfg.poll <= 0 {
				return nil, ErrRateLimited
			}

			ticker := time.NewTicker(cfg.poll)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-ticker.C:
					if limiter.Allow(ctx, key) {
						return next(ctx, req)
					}
				}
			}
		}
	}
}

// RateLimitByMethod returns rate limiting middleware with a separate bucket
// per method.
func RateLimitByMethod(rate int, burst int, opts ...RateLimitOption) Middleware {
	allOpts := append([]RateLimitOption{
		WithRateLimitKeyFunc(func(req *protocol.Request) string {
			return req.Method
		}),
	}, opts...)
	return RateLimit(rate, burst, allOpts...)
}
