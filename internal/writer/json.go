package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/survaize/survaize/internal/model"
)

// JSONWriter emits the questionnaire as indented JSON.
type JSONWriter struct {
	logger *slog.Logger
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(logger *slog.Logger) *JSONWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONWriter{logger: logger}
}

// Write serializes the questionnaire to outputPath.
func (w *JSONWriter) Write(ctx context.Context, q *model.Questionnaire, outputPath string) error {
	w.logger.Info("writing json output", "path", outputPath)

	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal questionnaire: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// Verify interface
var _ Writer = (*JSONWriter)(nil)
