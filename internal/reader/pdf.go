package reader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/survaize/survaize/internal/interpreter"
	"github.com/survaize/survaize/internal/model"
	"github.com/survaize/survaize/internal/ocr"
)

// PDFReader renders PDF pages to images, runs OCR on each, and hands the
// result to the interpreter. Extraction and OCR cover the 0..10 progress
// range; interpretation is rescaled into 10..100.
type PDFReader struct {
	interp *interpreter.Interpreter
	ocr    ocr.Extractor
	logger *slog.Logger
}

// NewPDFReader creates a PDF reader.
func NewPDFReader(interp *interpreter.Interpreter, extractor ocr.Extractor, logger *slog.Logger) *PDFReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFReader{interp: interp, ocr: extractor, logger: logger}
}

// Read extracts and interprets the questionnaire in a PDF file.
func (r *PDFReader) Read(ctx context.Context, path string, progress interpreter.ProgressFunc) (*model.Questionnaire, error) {
	report := func(percent int, message string) {
		if progress != nil {
			progress(percent, message)
		}
	}

	report(0, "Extracting pages")
	pages, err := renderPages(ctx, path)
	if err != nil {
		return nil, err
	}
	report(1, fmt.Sprintf("Extracted %d pages", len(pages)))

	// Without an OCR sidecar the model works from the page images alone.
	texts := make([]string, len(pages))
	if r.ocr != nil {
		for i, page := range pages {
			report(10*i/len(pages), fmt.Sprintf("Extracting text from page %d/%d", i+1, len(pages)))
			text, err := r.ocr.ExtractText(ctx, page)
			if err != nil {
				return nil, fmt.Errorf("ocr page %d: %w", i+1, err)
			}
			texts[i] = text
		}
	}

	scanned := &interpreter.ScannedQuestionnaire{
		Pages:         pages,
		ExtractedText: texts,
		Source:        path,
	}

	report(10, "Interpreting questionnaire")
	q, usage, err := r.interp.Interpret(ctx, scanned, func(percent int, message string) {
		report(10+percent*90/100, message)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("interpreted pdf",
		"source", path,
		"pages", len(pages),
		"total_tokens", usage.TotalTokens())
	report(100, "Completed")
	return q, nil
}

// renderPages renders every page of a PDF to a 300 DPI PNG. Rendering shells
// out to pdftoppm (poppler-utils); pdfcpu supplies the page count.
func renderPages(ctx context.Context, path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%s has no pages", path)
	}

	maxWorkers := runtime.NumCPU()

	type result struct {
		page int
		data []byte
		err  error
	}

	results := make(chan result, pageCount)
	sem := make(chan struct{}, maxWorkers)

	for page := 1; page <= pageCount; page++ {
		sem <- struct{}{}
		go func(page int) {
			defer func() { <-sem }()
			data, err := renderPage(ctx, path, page)
			results <- result{page: page, data: data, err: err}
		}(page)
	}

	pages := make([][]byte, pageCount)
	for i := 0; i < pageCount; i++ {
		r := <-results
		if r.err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", r.page, r.err)
		}
		pages[r.page-1] = r.data
	}
	return pages, nil
}

func renderPage(ctx context.Context, pdfPath string, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "survaize-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")

	// -singlefile drops the page number suffix from the output name.
	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}

// Verify interface
var _ Reader = (*PDFReader)(nil)
