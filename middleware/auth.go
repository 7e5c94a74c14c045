package middleware

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// CredentialsFunc returns the Authorization header value for an invocation.
// It is called once per invocation, so it may refresh short-lived tokens.
type CredentialsFunc func(ctx context.Context, req *protocol.Request) (string, error)

// CredentialsError is returned when a CredentialsFunc fails. No request is
// sent.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("middleware: credentials: %v", e.Err)
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// AuthOption configures the credentials middleware.
type AuthOption func(*authConfig)

type authConfig struct {
	logger      Logger
	skipMethods map[string]bool
	header      string
}

// WithAuthLogger sets the logger for credential failures.
func WithAuthLogger(l Logger) AuthOption {
	return func(c *authConfig) {
		c.logger = l
	}
}

// WithAuthSkipMethods lists methods that are sent without credentials.
func WithAuthSkipMethods(methods ...string) AuthOption {
	return func(c *authConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// WithAuthHeader sends credentials in header instead of Authorization.
func WithAuthHeader(header string) AuthOption {
	return func(c *authConfig) {
		c.header = header
	}
}

// Credentials returns middleware that attaches the value produced by fn as
// request metadata, sent by the transports as a header.
func Credentials(fn CredentialsFunc, opts ...AuthOption) Middleware {
	cfg := &authConfig{
		skipMethods: make(map[string]bool),
		header:      protocol.HeaderAuthorization,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			value, err := fn(ctx, req)
			if err != nil {
				if cfg.logger != nil {
					cfg.logger.Warn("credentials unavailable",
						F("method", req.Method),
						F("error", err.Error()),
					)
				}
				return nil, &CredentialsError{Err: err}
			}
			if value == "" {
				return next(ctx, req)
			}

			return next(protocol.SetRequestMeta(ctx, cfg.header, value), req)
		}
	}
}

// BearerToken returns middleware that sends "Bearer <token>".
func BearerToken(token string, opts ...AuthOption) Middleware {
	return Credentials(StaticCredentials("Bearer "+token), opts...)
}

// BasicAuth returns middleware that sends HTTP basic credentials.
func BasicAuth(user, password string, opts ...AuthOption) Middleware {
	encoded := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return Credentials(StaticCredentials("Basic "+encoded), opts...)
}

// APIKey returns middleware that sends key in header.
func APIKey(header, key string, opts ...AuthOption) Middleware {
	return Credentials(StaticCredentials(key), append([]AuthOption{WithAuthHeader(header)}, opts...)...)
}

// StaticCredentials returns a CredentialsFunc that always yields value.
func StaticCredentials(value string) CredentialsFunc {
	return func(context.Context, *protocol.Request) (string, error) {
		return value, nil
	}
}
