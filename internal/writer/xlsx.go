package writer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/survaize/survaize/internal/model"
)

// XLSXWriter emits a codebook workbook: one sheet listing every question and
// its constraints, one sheet enumerating the value sets of select questions.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSX codebook writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Write generates the codebook at outputPath.
func (w *XLSXWriter) Write(ctx context.Context, q *model.Questionnaire, outputPath string) error {
	w.logger.Info("writing xlsx codebook", "path", outputPath)

	f := excelize.NewFile()
	defer f.Close()

	const questionsSheet = "Questions"
	const valuesSheet = "Value Sets"

	// The default sheet is renamed rather than left dangling.
	if err := f.SetSheetName(f.GetSheetName(0), questionsSheet); err != nil {
		return fmt.Errorf("create questions sheet: %w", err)
	}
	if _, err := f.NewSheet(valuesSheet); err != nil {
		return fmt.Errorf("create value sets sheet: %w", err)
	}

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := []string{"Section", "Number", "ID", "Type", "Text", "Instructions", "Universe", "Constraints", "ID Field"}
	for i, h := range headers {
		write(questionsSheet, i+1, 1, h)
	}

	idFields := make(map[string]struct{}, len(q.IDFields))
	for _, id := range q.IDFields {
		idFields[id] = struct{}{}
	}

	row := 2
	valueRow := 2
	for i, h := range []string{"Question ID", "Code", "Label"} {
		write(valuesSheet, i+1, 1, h)
	}

	for _, section := range q.Sections {
		for _, question := range section.Questions {
			base := question.Base()
			write(questionsSheet, 1, row, fmt.Sprintf("%s %s", section.Number, section.Title))
			write(questionsSheet, 2, row, base.Number)
			write(questionsSheet, 3, row, base.ID)
			write(questionsSheet, 4, row, string(question.Type()))
			write(questionsSheet, 5, row, base.Text)
			write(questionsSheet, 6, row, base.Instructions)
			write(questionsSheet, 7, row, base.Universe)
			write(questionsSheet, 8, row, constraintSummary(question))
			if _, ok := idFields[base.ID]; ok {
				write(questionsSheet, 9, row, "yes")
			}
			row++

			for _, opt := range questionOptions(question) {
				write(valuesSheet, 1, valueRow, base.ID)
				write(valuesSheet, 2, valueRow, opt.Code)
				write(valuesSheet, 3, valueRow, opt.Label)
				valueRow++
			}
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func questionOptions(question model.Question) []model.Option {
	switch q := question.(type) {
	case *model.SingleSelectQuestion:
		return q.Options
	case *model.MultiSelectQuestion:
		return q.Options
	}
	return nil
}

// constraintSummary renders a question's variant constraints as a short
// human-readable string.
func constraintSummary(question model.Question) string {
	var parts []string
	switch q := question.(type) {
	case *model.NumericQuestion:
		if q.MinValue != nil {
			parts = append(parts, fmt.Sprintf("min %v", *q.MinValue))
		}
		if q.MaxValue != nil {
			parts = append(parts, fmt.Sprintf("max %v", *q.MaxValue))
		}
		if q.DecimalPlaces != nil {
			parts = append(parts, fmt.Sprintf("%d decimals", *q.DecimalPlaces))
		}
	case *model.TextQuestion:
		if q.MaxLength != nil {
			parts = append(parts, fmt.Sprintf("max length %d", *q.MaxLength))
		}
	case *model.MultiSelectQuestion:
		if q.MinSelections != nil {
			parts = append(parts, fmt.Sprintf("min selections %d", *q.MinSelections))
		}
		if q.MaxSelections != nil {
			parts = append(parts, fmt.Sprintf("max selections %d", *q.MaxSelections))
		}
	case *model.DateQuestion:
		if q.MinDate != "" {
			parts = append(parts, "from "+q.MinDate)
		}
		if q.MaxDate != "" {
			parts = append(parts, "to "+q.MaxDate)
		}
	}
	return strings.Join(parts, ", ")
}

// Verify interface
var _ Writer = (*XLSXWriter)(nil)
