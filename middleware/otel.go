package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

const (
	instrumentationName = "github.com/felixgeelhaar/rpc-go"
)

// Attribute keys follow the OpenTelemetry RPC semantic conventions.
const (
	attrRPCSystem    = attribute.Key("rpc.system")
	attrRPCMethod    = attribute.Key("rpc.method")
	attrRPCService   = attribute.Key("rpc.service")
	attrRequestID    = attribute.Key("rpc.jsonrpc.request_id")
	attrErrorCode    = attribute.Key("rpc.jsonrpc.error_code")
	attrErrorMessage = attribute.Key("rpc.jsonrpc.error_message")
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagator     propagation.TextMapPropagator
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithPropagator sets the propagator that writes the span context into the
// outgoing request headers. The default is the global propagator.
func WithPropagator(p propagation.TextMapPropagator) OTelOption {
	return func(c *otelConfig) {
		c.propagator = p
	}
}

// WithOTelServiceName sets the rpc.service attribute.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipMethods specifies methods to skip for tracing.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that traces each invocation as a client span and
// records invocation counts, errors and latency.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		propagator:     otel.GetTextMapPropagator(),
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion("1.0.0"),
	)

	meter := cfg.meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion("1.0.0"),
	)

	requestCounter, _ := meter.Int64Counter(
		"rpc.client.requests",
		metric.WithDescription("Total number of JSON-RPC invocations"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"rpc.client.duration",
		metric.WithDescription("Duration of JSON-RPC invocations"),
		metric.WithUnit("ms"),
	)

	errorCounter, _ := meter.Int64Counter(
		"rpc.client.errors",
		metric.WithDescription("Total number of failed JSON-RPC invocations"),
		metric.WithUnit("{error}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attrRPCSystem.String("jsonrpc"),
				attrRPCMethod.String(req.Method),
			}
			if cfg.serviceName != "" {
				attrs = append(attrs, attrRPCService.String(cfg.serviceName))
			}

			ctx, span := tracer.Start(ctx, "jsonrpc "+req.Method,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if !req.IsNotification() {
				span.SetAttributes(attrRequestID.String(string(req.ID)))
			}
			ctx = injectTraceContext(ctx, cfg.propagator)

			startTime := time.Now()
			requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			resp, err := next(ctx, req)

			duration := float64(time.Since(startTime).Microseconds()) / 1000
			requestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				var rpcErr *protocol.Error
				if errors.As(err, &rpcErr) {
					span.SetAttributes(
						attrErrorCode.Int(rpcErr.Code),
						attrErrorMessage.String(rpcErr.Message),
					)
					errorCounter.Add(ctx, 1, metric.WithAttributes(
						append(attrs, attrErrorCode.Int(rpcErr.Code))...,
					))
				} else {
					errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
				}
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return resp, err
		}
	}
}

// injectTraceContext returns ctx with the propagator's fields added to a
// copy of the request metadata, so transports send them as headers.
func injectTraceContext(ctx context.Context, p propagation.TextMapPropagator) context.Context {
	prev := protocol.RequestMetaFromContext(ctx)
	meta := make(protocol.RequestMeta, len(prev)+2)
	for k, v := range prev {
		meta[k] = v
	}
	p.Inject(ctx, metaCarrier(meta))
	if len(meta) == len(prev) {
		return ctx
	}
	return protocol.ContextWithRequestMeta(ctx, meta)
}

// metaCarrier adapts request metadata to propagation.TextMapCarrier. Keys
// are stored as canonical header names.
type metaCarrier protocol.RequestMeta

func (c metaCarrier) Get(key string) string {
	return c[http.CanonicalHeaderKey(key)]
}

func (c metaCarrier) Set(key, value string) {
	c[http.CanonicalHeaderKey(key)] = value
}

func (c metaCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
