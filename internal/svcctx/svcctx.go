// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with handlers.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/survaize/survaize/internal/convert"
	"github.com/survaize/survaize/internal/jobs"
	"github.com/survaize/survaize/internal/metrics"
)

// Services holds the core services that flow through context.
// Handlers extract what they need via the individual extractors.
type Services struct {
	Converter *convert.Converter
	Jobs      *jobs.Registry
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConverterFrom extracts the converter from context.
func ConverterFrom(ctx context.Context) *convert.Converter {
	if s := ServicesFrom(ctx); s != nil {
		return s.Converter
	}
	return nil
}

// JobsFrom extracts the job registry from context.
func JobsFrom(ctx context.Context) *jobs.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Jobs
	}
	return nil
}

// MetricsFrom extracts the metrics recorder from context.
func MetricsFrom(ctx context.Context) *metrics.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Metrics
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
