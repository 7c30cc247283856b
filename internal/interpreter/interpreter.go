// Package interpreter turns a scanned questionnaire into a structured
// document by invoking a vision model once per page and merging the per-page
// results. Pages are processed strictly sequentially: each page's prompt
// carries continuation context derived from the previous page's output.
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/survaize/survaize/internal/metrics"
	"github.com/survaize/survaize/internal/model"
	"github.com/survaize/survaize/internal/providers"
)

const DefaultMaxRetries = 10

// ProgressFunc receives (percent, message) updates. Percent is monotonically
// non-decreasing, 0..100. Invoked synchronously on the calling goroutine.
type ProgressFunc func(percent int, message string)

// Interpreter drives the page loop.
type Interpreter struct {
	client     providers.LLMClient
	model      string
	maxRetries int
	logger     *slog.Logger
	rec        *metrics.Recorder

	full    *shapeValidator[model.Questionnaire]
	partial *shapeValidator[model.PartialQuestionnaire]
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxRetries overrides the validation retry limit.
func WithMaxRetries(n int) Option {
	return func(it *Interpreter) {
		if n > 0 {
			it.maxRetries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(it *Interpreter) { it.logger = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(it *Interpreter) { it.rec = rec }
}

// New creates an Interpreter using the given client and model.
func New(client providers.LLMClient, modelName string, opts ...Option) (*Interpreter, error) {
	full, err := newShapeValidator[model.Questionnaire](model.QuestionnaireExtractionSchema)
	if err != nil {
		return nil, fmt.Errorf("questionnaire schema: %w", err)
	}
	partial, err := newShapeValidator[model.PartialQuestionnaire](model.PartialExtractionSchema)
	if err != nil {
		return nil, fmt.Errorf("partial schema: %w", err)
	}

	it := &Interpreter{
		client:     client,
		model:      modelName,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
		full:       full,
		partial:    partial,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// Interpret processes every page of the scanned document and returns the
// merged questionnaire plus total token usage across all calls, retries
// included.
func (it *Interpreter) Interpret(ctx context.Context, doc *ScannedQuestionnaire, progress ProgressFunc) (*model.Questionnaire, Usage, error) {
	var usage Usage
	start := time.Now()

	total := doc.NumPages()
	if len(doc.Pages) != len(doc.ExtractedText) {
		it.logger.Warn("page/text count mismatch, truncating",
			"pages", len(doc.Pages),
			"texts", len(doc.ExtractedText))
	}
	if total == 0 {
		return nil, usage, ErrEmptyDocument
	}

	var current *model.Questionnaire
	var frags []model.SectionFragment

	for i := 1; i <= total; i++ {
		if progress != nil {
			progress(100*(i-1)/total, fmt.Sprintf("Examining page %d/%d", i, total))
		}
		it.logger.Info("examining page", "page", i, "total", total, "source", doc.Source)

		page, text := doc.Pages[i-1], doc.ExtractedText[i-1]
		if i == 1 {
			q, err := it.processFirstPage(ctx, page, text, &usage)
			if err != nil {
				return nil, usage, err
			}
			frags = BuildContext(q.TrailingSections, q.Sections)
			current = q
		} else {
			partial, err := it.processSubsequentPage(ctx, page, text, i, frags, &usage)
			if err != nil {
				return nil, usage, err
			}
			frags = BuildContext(partial.TrailingSections, partial.Sections)
			merged := model.Merge(*current, *partial)
			current = &merged
		}
		it.rec.PageInterpreted()
	}

	if progress != nil {
		progress(100, "Completed")
	}
	it.rec.InterpretDuration(time.Since(start))
	it.rec.Tokens(usage.PromptTokens, usage.CompletionTokens)
	it.logger.Info("token usage",
		"prompt", usage.PromptTokens,
		"completion", usage.CompletionTokens,
		"total", usage.TotalTokens())
	return current, usage, nil
}

func (it *Interpreter) processFirstPage(ctx context.Context, page []byte, ocrText string, usage *Usage) (*model.Questionnaire, error) {
	seed := providers.Message{
		Role:    "user",
		Content: firstPagePrompt() + "\n\nOCR Text:\n" + ocrText,
		Images:  [][]byte{page},
	}
	q, err := validateWithRetries(ctx, it.client, it.model, seed, it.full, it.maxRetries, it.logger, it.rec, usage)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (it *Interpreter) processSubsequentPage(ctx context.Context, page []byte, ocrText string, pageNumber int, frags []model.SectionFragment, usage *Usage) (*model.PartialQuestionnaire, error) {
	if frags == nil {
		frags = []model.SectionFragment{}
	}
	contextJSON, err := json.MarshalIndent(frags, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal page context: %w", err)
	}
	seed := providers.Message{
		Role: "user",
		Content: subsequentPagePrompt(pageNumber) +
			"\n\nOCR Text:\n" + ocrText +
			"\n\nprevious_page_context:\n" + string(contextJSON),
		Images: [][]byte{page},
	}
	partial, err := validateWithRetries(ctx, it.client, it.model, seed, it.partial, it.maxRetries, it.logger, it.rec, usage)
	if err != nil {
		return nil, err
	}
	return &partial, nil
}
