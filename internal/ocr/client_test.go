package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tesseract" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		var options map[string]any
		if err := json.Unmarshal([]byte(r.FormValue("options")), &options); err != nil {
			t.Errorf("options not JSON: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			file.Close()
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"exit":   map[string]any{"code": 0},
				"stdout": "SECTION A: IDENTIFICATION",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	text, err := c.ExtractText(context.Background(), []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "SECTION A: IDENTIFICATION" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextTesseractFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"exit":   map[string]any{"code": 1},
				"stderr": "could not read image",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 2})
	if _, err := c.ExtractText(context.Background(), []byte{0x1}); err == nil {
		t.Fatal("expected error on non-zero tesseract exit")
	}
}

func TestExtractTextRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"exit":   map[string]any{"code": 0},
				"stdout": "recovered",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3})
	text, err := c.ExtractText(context.Background(), []byte{0x1})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("unexpected text: %q", text)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}
