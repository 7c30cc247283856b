// Package writer serializes questionnaires to output formats: plain JSON, a
// complete CSPro data entry application, and an XLSX codebook.
package writer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/survaize/survaize/internal/model"
)

// Writer serializes a questionnaire to an output path.
type Writer interface {
	Write(ctx context.Context, q *model.Questionnaire, outputPath string) error
}

// Factory hands out writers by output format.
type Factory struct {
	writers map[string]Writer
}

// NewFactory creates a factory over the given writers, keyed by format
// ("json", "cspro", "xlsx").
func NewFactory(writers map[string]Writer) *Factory {
	return &Factory{writers: writers}
}

// Get returns the writer for an output format.
func (f *Factory) Get(format string) (Writer, error) {
	w, ok := f.writers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s (supported: %s)",
			format, strings.Join(f.SupportedFormats(), ", "))
	}
	return w, nil
}

// SupportedFormats lists the registered output formats.
func (f *Factory) SupportedFormats() []string {
	formats := make([]string, 0, len(f.writers))
	for k := range f.writers {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}
