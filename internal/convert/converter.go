// Package convert ties the reader and writer boundaries together: pick a
// reader from the input file's extension, a writer from the requested output
// format, and pass progress straight through.
package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/survaize/survaize/internal/interpreter"
	"github.com/survaize/survaize/internal/model"
	"github.com/survaize/survaize/internal/reader"
	"github.com/survaize/survaize/internal/writer"
)

// Converter turns an input questionnaire file into one of the supported
// output formats. Both the CLI and the web server drive conversions through
// it.
type Converter struct {
	readers *reader.Factory
	writers *writer.Factory
	logger  *slog.Logger
}

// New creates a converter over the given format registries.
func New(readers *reader.Factory, writers *writer.Factory, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{readers: readers, writers: writers, logger: logger}
}

// Read interprets the input file into a questionnaire without writing
// anything. Progress may be nil.
func (c *Converter) Read(ctx context.Context, inputPath string, progress interpreter.ProgressFunc) (*model.Questionnaire, error) {
	r, err := c.readers.ForFile(inputPath)
	if err != nil {
		return nil, err
	}
	q, err := r.Read(ctx, inputPath, progress)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}
	return q, nil
}

// Convert reads the input file and writes it out in the requested format.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath, outputFormat string, progress interpreter.ProgressFunc) (*model.Questionnaire, error) {
	w, err := c.writers.Get(outputFormat)
	if err != nil {
		return nil, err
	}

	q, err := c.Read(ctx, inputPath, progress)
	if err != nil {
		return nil, err
	}

	c.logger.Info("writing output", "format", outputFormat, "path", outputPath)
	if err := w.Write(ctx, q, outputPath); err != nil {
		return nil, fmt.Errorf("write %s: %w", outputPath, err)
	}
	return q, nil
}

// InputFormats lists the readable formats.
func (c *Converter) InputFormats() []string { return c.readers.SupportedFormats() }

// OutputFormats lists the writable formats.
func (c *Converter) OutputFormats() []string { return c.writers.SupportedFormats() }
