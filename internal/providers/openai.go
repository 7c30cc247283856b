package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIClientName = "openai"
	AzureClientName  = "azure"

	defaultModel   = "gpt-4o"
	defaultTimeout = 120 * time.Second
)

// OpenAIConfig configures an OpenAI or Azure OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional override for OpenAI-compatible endpoints
	Model   string

	// Azure-specific. When Endpoint is set the client talks to Azure OpenAI.
	Endpoint   string
	APIVersion string

	MaxRetries int
	Timeout    time.Duration
}

// OpenAIClient is an LLMClient backed by the OpenAI (or Azure OpenAI) API.
type OpenAIClient struct {
	client  openai.Client
	name    string
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client for the OpenAI or Azure OpenAI API.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	name := OpenAIClientName
	var opts []option.RequestOption
	if cfg.Endpoint != "" {
		if cfg.APIVersion == "" {
			return nil, fmt.Errorf("openai: azure endpoint requires an api version")
		}
		name = AzureClientName
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	} else {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		name:    name,
		model:   model,
		timeout: timeout,
	}, nil
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: buildMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.ResponseFormat != nil {
		format, err := buildResponseFormat(req.ResponseFormat)
		if err != nil {
			return nil, err
		}
		params.ResponseFormat = format
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s chat completion: no choices returned", c.name)
	}

	choice := resp.Choices[0]
	return &ChatResult{
		Content:          choice.Message.Content,
		Refusal:          choice.Message.Refusal,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
		Provider:         c.name,
		ModelUsed:        resp.Model,
		RequestID:        req.RequestID,
	}, nil
}

// buildMessages converts internal messages to API params. User messages with
// attached images become multi-part content with inline data URLs.
func buildMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			if len(m.Images) == 0 {
				out = append(out, openai.UserMessage(m.Content))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Images)+1)
			if m.Content != "" {
				parts = append(parts, openai.TextContentPart(m.Content))
			}
			for _, img := range m.Images {
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
				}))
			}
			out = append(out, openai.UserMessage(parts))
		}
	}
	return out
}

func buildResponseFormat(rf *ResponseFormat) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	var format openai.ChatCompletionNewParamsResponseFormatUnion
	switch rf.Type {
	case "json_object":
		format.OfJSONObject = &shared.ResponseFormatJSONObjectParam{}
	case "json_schema":
		var wrapper struct {
			Name   string `json:"name"`
			Strict bool   `json:"strict"`
			Schema any    `json:"schema"`
		}
		if err := json.Unmarshal(rf.JSONSchema, &wrapper); err != nil {
			return format, fmt.Errorf("parse json_schema response format: %w", err)
		}
		format.OfJSONSchema = &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   wrapper.Name,
				Strict: openai.Bool(wrapper.Strict),
				Schema: wrapper.Schema,
			},
		}
	default:
		return format, fmt.Errorf("unsupported response format type %q", rf.Type)
	}
	return format, nil
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
