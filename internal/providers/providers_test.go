package providers

import (
	"context"
	"testing"
	"time"
)

func TestMockClientResponseQueue(t *testing.T) {
	c := NewMockClient("first", "second")
	ctx := context.Background()

	r1, err := c.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("chat 1: %v", err)
	}
	if r1.Content != "first" {
		t.Fatalf("expected first response, got %q", r1.Content)
	}

	r2, err := c.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("chat 2: %v", err)
	}
	if r2.Content != "second" {
		t.Fatalf("expected second response, got %q", r2.Content)
	}

	// Queue exhausted: last response repeats.
	r3, err := c.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("chat 3: %v", err)
	}
	if r3.Content != "second" {
		t.Fatalf("expected repeated last response, got %q", r3.Content)
	}

	if c.RequestCount() != 3 {
		t.Fatalf("expected 3 requests, got %d", c.RequestCount())
	}
}

func TestMockClientRefusal(t *testing.T) {
	c := NewMockClient()
	c.Refuse = true

	result, err := c.Chat(context.Background(), &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if result.Refusal == "" {
		t.Fatal("expected refusal to be set")
	}
	if result.Content != "" {
		t.Fatalf("refusal result should have no content, got %q", result.Content)
	}
}

func TestMockClientContextCancellation(t *testing.T) {
	c := NewMockClient()
	c.Latency = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Chat(ctx, &ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewOpenAIClientConfig(t *testing.T) {
	if _, err := NewOpenAIClient(OpenAIConfig{}); err == nil {
		t.Fatal("expected error for missing api key")
	}

	if _, err := NewOpenAIClient(OpenAIConfig{APIKey: "k", Endpoint: "https://example.openai.azure.com"}); err == nil {
		t.Fatal("expected error for azure endpoint without api version")
	}

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("openai config: %v", err)
	}
	if c.Name() != OpenAIClientName {
		t.Fatalf("expected openai, got %s", c.Name())
	}

	c, err = NewOpenAIClient(OpenAIConfig{APIKey: "k", Endpoint: "https://example.openai.azure.com", APIVersion: "2024-10-21"})
	if err != nil {
		t.Fatalf("azure config: %v", err)
	}
	if c.Name() != AzureClientName {
		t.Fatalf("expected azure, got %s", c.Name())
	}
}

func TestBuildResponseFormat(t *testing.T) {
	if _, err := buildResponseFormat(&ResponseFormat{Type: "xml"}); err == nil {
		t.Fatal("expected error for unsupported type")
	}

	format, err := buildResponseFormat(&ResponseFormat{
		Type:       "json_schema",
		JSONSchema: []byte(`{"name":"extraction","strict":true,"schema":{"type":"object"}}`),
	})
	if err != nil {
		t.Fatalf("json_schema format: %v", err)
	}
	if format.OfJSONSchema == nil {
		t.Fatal("expected json schema variant")
	}
	if format.OfJSONSchema.JSONSchema.Name != "extraction" {
		t.Fatalf("schema name not preserved: %s", format.OfJSONSchema.JSONSchema.Name)
	}

	format, err = buildResponseFormat(&ResponseFormat{Type: "json_object"})
	if err != nil {
		t.Fatalf("json_object format: %v", err)
	}
	if format.OfJSONObject == nil {
		t.Fatal("expected json object variant")
	}
}

func TestBuildMessagesWithImages(t *testing.T) {
	msgs := buildMessages([]Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "read this page", Images: [][]byte{{0x89, 0x50, 0x4e, 0x47}}},
		{Role: "assistant", Content: "ok"},
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
}
