package convert

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/survaize/survaize/internal/model"
	"github.com/survaize/survaize/internal/reader"
	"github.com/survaize/survaize/internal/writer"
)

const fixtureJSON = `{
  "title": "Test Survey",
  "id_fields": ["hh"],
  "sections": [
    {
      "id": "s1",
      "number": "A",
      "title": "Section A",
      "occurrences": 1,
      "questions": [
        {"type": "numeric", "number": "A1", "id": "hh", "text": "Household"}
      ]
    }
  ]
}`

func newConverter() *Converter {
	readers := reader.NewFactory(map[string]reader.Reader{
		"json": reader.NewJSONReader(),
	})
	writers := writer.NewFactory(map[string]writer.Writer{
		"json": writer.NewJSONWriter(nil),
	})
	return New(readers, writers, nil)
}

func TestConvertJSONToJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "out.json")
	if err := os.WriteFile(in, []byte(fixtureJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	var percents []int
	q, err := newConverter().Convert(context.Background(), in, out, "json", func(percent int, message string) {
		percents = append(percents, percent)
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if q.Title != "Test Survey" {
		t.Fatalf("title = %q", q.Title)
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", percents)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var back model.Questionnaire
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output not valid questionnaire JSON: %v", err)
	}
}

func TestConvertUnsupportedFormats(t *testing.T) {
	c := newConverter()
	if _, err := c.Convert(context.Background(), "in.docx", "out.json", "json", nil); err == nil ||
		!strings.Contains(err.Error(), "unsupported input format") {
		t.Fatalf("expected unsupported input error, got %v", err)
	}
	if _, err := c.Convert(context.Background(), "in.json", "out.sav", "spss", nil); err == nil ||
		!strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected unsupported output error, got %v", err)
	}
}

func TestFormatListings(t *testing.T) {
	c := newConverter()
	if got := c.InputFormats(); len(got) != 1 || got[0] != "json" {
		t.Fatalf("input formats: %v", got)
	}
	if got := c.OutputFormats(); len(got) != 1 || got[0] != "json" {
		t.Fatalf("output formats: %v", got)
	}
}
