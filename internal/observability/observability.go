// Package observability wires process-wide logging: a console slog handler,
// optionally fanned out to an OpenTelemetry log exporter selected through the
// standard OTEL environment variables.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Console log formats accepted by Instrument.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// bridgeName identifies this instrumentation scope to the OTLP backend.
const bridgeName = "github.com/quipworks/quip-go"

var loggerProvider *sdklog.LoggerProvider

// Instrument installs the process-wide slog default: a text or JSON console
// handler on stderr at the given level. When OTEL_LOGS_EXPORTER selects an
// exporter (otlp|console), records are additionally bridged to it, filtered
// to the same level.
func Instrument(level slog.Level, format string) error {
	var console slog.Handler
	switch format {
	case FormatJSON:
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case FormatText, "":
		console = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	handler := console
	provider, err := newLoggerProvider(context.Background(), level)
	if err != nil {
		return err
	}
	if provider != nil {
		loggerProvider = provider
		bridge := otelslog.NewHandler(bridgeName, otelslog.WithLoggerProvider(provider))
		handler = fanoutHandler{console, bridge}
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// Shutdown flushes and stops the OTLP log pipeline, if one was configured.
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}

// newLoggerProvider builds the sdk/log provider for the exporter named by
// OTEL_LOGS_EXPORTER. Returns (nil, nil) when export is disabled.
func newLoggerProvider(ctx context.Context, level slog.Level) (*sdklog.LoggerProvider, error) {
	var exporter sdklog.Exporter
	var err error
	switch name := os.Getenv("OTEL_LOGS_EXPORTER"); name {
	case "", "none":
		return nil, nil
	case "otlp":
		protocol := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL")
		if p := os.Getenv("OTEL_EXPORTER_OTLP_LOGS_PROTOCOL"); p != "" {
			protocol = p
		}
		switch protocol {
		case "", "grpc":
			exporter, err = otlploggrpc.New(ctx)
		case "http/protobuf", "http/json":
			exporter, err = otlploghttp.New(ctx)
		default:
			return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
		}
	case "console":
		exporter, err = stdoutlog.New()
	default:
		return nil, fmt.Errorf("unsupported OTEL_LOGS_EXPORTER %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))
	return sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)), nil
}

// severity maps a slog level to the minimum OTLP severity to export.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}

// fanoutHandler forwards each record to every wrapped handler.
type fanoutHandler []slog.Handler

var _ slog.Handler = (fanoutHandler)(nil)

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, hh := range h {
		if hh.Enabled(ctx, record.Level) {
			if err := hh.Handle(ctx, record.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}
