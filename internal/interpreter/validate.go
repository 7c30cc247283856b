package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/survaize/survaize/internal/metrics"
	"github.com/survaize/survaize/internal/providers"
)

// Usage accumulates token counts across model calls, retries included.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Add accumulates one call's token counts.
func (u *Usage) Add(prompt, completion int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
}

// TotalTokens returns the combined token count.
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// shapeValidator validates raw model output against one extraction shape and
// decodes it into the typed model.
type shapeValidator[T any] struct {
	schema *jsonschema.Schema
	format *providers.ResponseFormat
}

// newShapeValidator compiles the wrapper's inner schema and keeps the
// json_schema member as the response format sent to the provider.
func newShapeValidator[T any](wrapper map[string]any) (*shapeValidator[T], error) {
	inner, err := json.Marshal(wrapper["json_schema"].(map[string]any)["schema"])
	if err != nil {
		return nil, fmt.Errorf("serialize schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(inner)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	formatRaw, err := json.Marshal(wrapper["json_schema"])
	if err != nil {
		return nil, fmt.Errorf("serialize response format: %w", err)
	}
	return &shapeValidator[T]{
		schema: schema,
		format: &providers.ResponseFormat{Type: "json_schema", JSONSchema: formatRaw},
	}, nil
}

// decode parses model output tolerantly, checks it against the schema, then
// unmarshals into the target type.
func (v *shapeValidator[T]) decode(content string) (T, error) {
	var out T
	raw, err := parseModelJSON(content)
	if err != nil {
		return out, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("decode for validation: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return out, fmt.Errorf("response does not match schema: %w", err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

const correctionDirective = `Your previous response had validation errors:

Error: %v

Fix the JSON structure to conform to the schema. Ensure all required fields are present and correctly typed. Return only the corrected JSON.`

// validateWithRetries runs the bounded conversational retry loop: call the
// model, decode, and on failure append the bad output plus a correction
// directive and try again. A refusal aborts immediately; transport errors
// propagate unchanged.
func validateWithRetries[T any](
	ctx context.Context,
	client providers.LLMClient,
	model string,
	seed providers.Message,
	v *shapeValidator[T],
	maxRetries int,
	logger *slog.Logger,
	rec *metrics.Recorder,
	usage *Usage,
) (T, error) {
	var zero T
	messages := []providers.Message{seed}

	var lastErr error
	var lastRaw string
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := client.Chat(ctx, &providers.ChatRequest{
			Messages:       messages,
			Model:          model,
			ResponseFormat: v.format,
		})
		if err != nil {
			rec.LLMRequest(client.Name(), "error")
			return zero, err
		}
		usage.Add(result.PromptTokens, result.CompletionTokens)

		if result.Content == "" {
			rec.LLMRequest(client.Name(), "refusal")
			return zero, &RefusalError{Provider: client.Name(), Message: result.Refusal}
		}
		rec.LLMRequest(client.Name(), "ok")

		messages = append(messages, providers.Message{Role: "assistant", Content: result.Content})

		out, err := v.decode(result.Content)
		if err == nil {
			return out, nil
		}
		lastErr, lastRaw = err, result.Content

		if attempt >= maxRetries {
			break
		}
		rec.ValidationRetry()
		logger.Info("validation failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err)
		messages = append(messages, providers.Message{
			Role:    "user",
			Content: fmt.Sprintf(correctionDirective, err),
		})
	}

	logger.Error("validation retries exhausted",
		"attempts", maxRetries,
		"error", lastErr)
	return zero, &ExhaustedError{Attempts: maxRetries, LastErr: lastErr, RawResponse: lastRaw}
}

// parseModelJSON parses JSON from model output, recovering from markdown code
// fences and surrounding prose.
func parseModelJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, fmt.Errorf("response is not valid JSON")
}

func stripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONCandidate slices out the outermost {...} or [...] region when the
// model wrapped its JSON in prose.
func extractJSONCandidate(content string) string {
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return ""
	}
	closeChar := "}"
	if content[start] == '[' {
		closeChar = "]"
	}
	end := strings.LastIndex(content, closeChar)
	if end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
