package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const defaultOTLPEndpoint = "http://localhost:4318"

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string
}

func NewTracingConfig() *TracingConfig {
	return &TracingConfig{
		Enabled:     utils.IsTracingEnabled(),
		ServiceName: utils.OTelServiceName(),
		Environment: GetAppEnv(),
		Endpoint:    utils.GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint),
	}
}

// otlpTarget is an OTLP/HTTP collector address split the way otlptracehttp wants it.
type otlpTarget struct {
	hostPort string
	path     string
	insecure bool
}

func (t otlpTarget) options() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(t.hostPort),
		otlptracehttp.WithURLPath(t.path),
	}
	if t.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// SetupTracing installs a global tracer provider and returns its shutdown
// func, or nil when tracing is disabled. Dialog submits and every request
// handled by otelgin are exported through it.
func SetupTracing(logger *log.Logger) (func(context.Context) error, error) {
	return NewTracingConfig().Install(logger)
}

func (tc *TracingConfig) Install(logger *log.Logger) (func(context.Context) error, error) {
	if !tc.Enabled {
		return nil, nil
	}

	target, err := parseOTLPEndpoint(tc.Endpoint)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx, target.options()...)
	if err != nil {
		return nil, fmt.Errorf("setup tracing exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(tc.attributes()...))
	if err != nil {
		return nil, fmt.Errorf("setup tracing resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("OpenTelemetry tracing enabled", "service", tc.ServiceName, "endpoint", tc.Endpoint)

	return tp.Shutdown, nil
}

func (tc *TracingConfig) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("service.name", tc.ServiceName)}
	if tc.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", tc.Environment))
	}
	return attrs
}

// parseOTLPEndpoint accepts http(s)://host:port[/path] or a bare host:port.
// The path defaults to /v1/traces.
func parseOTLPEndpoint(raw string) (otlpTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpTarget{}, fmt.Errorf("empty OTLP endpoint")
	}

	if !strings.Contains(raw, "://") {
		if strings.ContainsAny(raw, "/?#") {
			return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: use http://host:port/path when a path is needed", raw)
		}
		return otlpTarget{hostPort: raw, path: "/v1/traces", insecure: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return otlpTarget{}, fmt.Errorf("invalid OTLP endpoint %q: missing host", raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return otlpTarget{}, fmt.Errorf("unsupported OTLP endpoint scheme %q in %q", u.Scheme, raw)
	}

	path := u.EscapedPath()
	if path == "" || path == "/" {
		path = "/v1/traces"
	}

	return otlpTarget{hostPort: u.Host, path: path, insecure: scheme == "http"}, nil
}
