package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/survaize/survaize/internal/interpreter"
	"github.com/survaize/survaize/internal/model"
)

// JSONReader loads an already-structured questionnaire from a JSON file.
type JSONReader struct{}

// NewJSONReader creates a JSON reader.
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Read parses and validates a questionnaire JSON file.
func (r *JSONReader) Read(ctx context.Context, path string, progress interpreter.ProgressFunc) (*model.Questionnaire, error) {
	if progress != nil {
		progress(0, "Reading JSON file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var q model.Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid questionnaire in %s: %w", path, err)
	}

	if progress != nil {
		progress(100, "Completed")
	}
	return &q, nil
}

// Verify interface
var _ Reader = (*JSONReader)(nil)
