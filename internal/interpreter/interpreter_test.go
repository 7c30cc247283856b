package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/survaize/survaize/internal/providers"
)

const firstPageJSON = `{
	"title": "Household Survey",
	"id_fields": ["cluster"],
	"sections": [
		{
			"id": "section_a", "number": "A", "title": "Identification", "occurrences": 1,
			"questions": [
				{"type": "numeric", "number": "A1", "id": "cluster", "text": "Cluster number", "min_value": 1, "max_value": 99}
			]
		}
	],
	"trailing_sections": [
		{"id": "section_a", "question_ids": ["cluster"]}
	]
}`

const secondPageJSON = `{
	"sections": [
		{
			"id": "section_b", "number": "B", "title": "Education", "occurrences": 1,
			"questions": [
				{"type": "single_select", "number": "B1", "id": "edu_level", "text": "Highest education", "options": [{"code": "1", "label": "None"}]}
			]
		}
	],
	"trailing_sections": []
}`

func newTestInterpreter(t *testing.T, client providers.LLMClient, opts ...Option) *Interpreter {
	t.Helper()
	it, err := New(client, "gpt-test", opts...)
	if err != nil {
		t.Fatalf("new interpreter: %v", err)
	}
	return it
}

func twoPageDoc() *ScannedQuestionnaire {
	return &ScannedQuestionnaire{
		Pages:         [][]byte{{0x1}, {0x2}},
		ExtractedText: []string{"page one text", "page two text"},
		Source:        "test.pdf",
	}
}

func TestInterpretTwoPages(t *testing.T) {
	mock := providers.NewMockClient(firstPageJSON, secondPageJSON)
	it := newTestInterpreter(t, mock)

	var events []int
	q, usage, err := it.Interpret(context.Background(), twoPageDoc(), func(percent int, message string) {
		events = append(events, percent)
	})
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}

	if q.Title != "Household Survey" {
		t.Fatalf("title: %s", q.Title)
	}
	if len(q.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(q.Sections))
	}
	if q.Sections[1].ID != "section_b" {
		t.Fatalf("expected section_b appended, got %s", q.Sections[1].ID)
	}

	// Exactly 3 progress events for a 2-page document: 0, 50, 100.
	want := []int{0, 50, 100}
	if len(events) != len(want) {
		t.Fatalf("expected %d progress events, got %v", len(want), events)
	}
	for i, p := range want {
		if events[i] != p {
			t.Fatalf("progress event %d: expected %d, got %d", i, p, events[i])
		}
	}

	if usage.TotalTokens() == 0 {
		t.Fatal("expected accumulated usage")
	}
	if mock.RequestCount() != 2 {
		t.Fatalf("expected 2 model calls, got %d", mock.RequestCount())
	}
}

func TestInterpretSubsequentPageCarriesContext(t *testing.T) {
	mock := providers.NewMockClient(firstPageJSON, secondPageJSON)
	it := newTestInterpreter(t, mock)

	if _, _, err := it.Interpret(context.Background(), twoPageDoc(), nil); err != nil {
		t.Fatalf("interpret: %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	second := reqs[1].Messages[0].Content
	if !strings.Contains(second, "previous_page_context") {
		t.Fatal("second page prompt missing context block")
	}
	// Page 1 declared cluster as trailing, so its fragment is forwarded.
	if !strings.Contains(second, `"cluster"`) {
		t.Fatal("trailing question not carried into context")
	}
}

func TestInterpretZeroPages(t *testing.T) {
	it := newTestInterpreter(t, providers.NewMockClient())
	_, _, err := it.Interpret(context.Background(), &ScannedQuestionnaire{}, nil)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestInterpretTruncatesMismatchedLists(t *testing.T) {
	mock := providers.NewMockClient(firstPageJSON)
	it := newTestInterpreter(t, mock)

	doc := &ScannedQuestionnaire{
		Pages:         [][]byte{{0x1}, {0x2}, {0x3}},
		ExtractedText: []string{"only one text"},
	}
	q, _, err := it.Interpret(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("expected truncation to 1 page, got %d calls", mock.RequestCount())
	}
	if len(q.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(q.Sections))
	}
}

func TestRetryLoopRecoversOnValidResponse(t *testing.T) {
	mock := providers.NewMockClient("not json at all", firstPageJSON)
	it := newTestInterpreter(t, mock)

	doc := &ScannedQuestionnaire{Pages: [][]byte{{0x1}}, ExtractedText: []string{"text"}}
	q, _, err := it.Interpret(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if q.Title != "Household Survey" {
		t.Fatalf("title: %s", q.Title)
	}
	if mock.RequestCount() != 2 {
		t.Fatalf("expected 2 attempts, got %d", mock.RequestCount())
	}

	// The retry conversation carries the bad output and a correction turn.
	second := mock.Requests()[1]
	if len(second.Messages) != 3 {
		t.Fatalf("expected 3 messages on retry, got %d", len(second.Messages))
	}
	if second.Messages[1].Role != "assistant" || second.Messages[1].Content != "not json at all" {
		t.Fatal("retry conversation missing the bad assistant turn")
	}
	if second.Messages[2].Role != "user" || !strings.Contains(second.Messages[2].Content, "validation errors") {
		t.Fatal("retry conversation missing the correction directive")
	}
}

func TestRetryLoopExhaustsAfterMaxRetries(t *testing.T) {
	mock := providers.NewMockClient("still not json")
	it := newTestInterpreter(t, mock, WithMaxRetries(3))

	doc := &ScannedQuestionnaire{Pages: [][]byte{{0x1}}, ExtractedText: []string{"text"}}
	_, _, err := it.Interpret(context.Background(), doc, nil)

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", exhausted.Attempts)
	}
	if exhausted.RawResponse != "still not json" {
		t.Fatalf("raw response not preserved: %q", exhausted.RawResponse)
	}
	if mock.RequestCount() != 3 {
		t.Fatalf("expected exactly 3 model calls, got %d", mock.RequestCount())
	}
}

func TestRefusalIsFatalWithoutRetry(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Refuse = true
	it := newTestInterpreter(t, mock)

	doc := &ScannedQuestionnaire{Pages: [][]byte{{0x1}}, ExtractedText: []string{"text"}}
	_, _, err := it.Interpret(context.Background(), doc, nil)

	var refusal *RefusalError
	if !errors.As(err, &refusal) {
		t.Fatalf("expected RefusalError, got %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Fatalf("refusal must not be retried, got %d calls", mock.RequestCount())
	}
}

func TestSchemaInvalidResponseIsRetried(t *testing.T) {
	// Valid JSON but wrong shape: exercises the schema check, not the parser.
	mock := providers.NewMockClient(`{"sections": "not an array"}`, firstPageJSON)
	it := newTestInterpreter(t, mock)

	doc := &ScannedQuestionnaire{Pages: [][]byte{{0x1}}, ExtractedText: []string{"text"}}
	if _, _, err := it.Interpret(context.Background(), doc, nil); err != nil {
		t.Fatalf("interpret: %v", err)
	}
	if mock.RequestCount() != 2 {
		t.Fatalf("expected 2 attempts, got %d", mock.RequestCount())
	}
}
