// Package reader loads questionnaires from source documents: scanned PDFs
// interpreted through the vision pipeline, or already-structured JSON.
package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/survaize/survaize/internal/interpreter"
	"github.com/survaize/survaize/internal/model"
)

// Reader extracts a questionnaire from a source document.
type Reader interface {
	Read(ctx context.Context, path string, progress interpreter.ProgressFunc) (*model.Questionnaire, error)
}

// Factory hands out readers by input format.
type Factory struct {
	readers map[string]Reader
}

// NewFactory creates a factory over the given readers, keyed by format
// ("pdf", "json").
func NewFactory(readers map[string]Reader) *Factory {
	return &Factory{readers: readers}
}

// Get returns the reader for an input format.
func (f *Factory) Get(format string) (Reader, error) {
	r, ok := f.readers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported input format: %s (supported: %s)",
			format, strings.Join(f.SupportedFormats(), ", "))
	}
	return r, nil
}

// ForFile returns the reader matching the file's extension.
func (f *Factory) ForFile(path string) (Reader, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot determine input format of %s", path)
	}
	return f.Get(ext)
}

// SupportedFormats lists the registered input formats.
func (f *Factory) SupportedFormats() []string {
	formats := make([]string, 0, len(f.readers))
	for k := range f.readers {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}
