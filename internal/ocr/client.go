package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// Extractor turns a page image into text.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Client talks to a tesseract-server instance.
type Client struct {
	baseURL    string
	languages  []string
	httpClient *http.Client
	maxRetries uint
}

// ClientConfig configures an OCR client.
type ClientConfig struct {
	BaseURL    string
	Languages  []string // tesseract language codes, default ["eng"]
	Timeout    time.Duration
	MaxRetries uint
}

// NewClient creates an OCR client.
func NewClient(cfg ClientConfig) *Client {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		languages:  cfg.Languages,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}
}

type tesseractResponse struct {
	Data struct {
		Exit struct {
			Code int `json:"code"`
		} `json:"exit"`
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
	} `json:"data"`
}

// ExtractText runs OCR on a single page image.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = c.extract(ctx, image)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries),
		retry.Delay(time.Second),
	)
	return text, err
}

func (c *Client) extract(ctx context.Context, image []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	options, err := json.Marshal(map[string]any{"languages": c.languages})
	if err != nil {
		return "", fmt.Errorf("marshal ocr options: %w", err)
	}
	if err := mw.WriteField("options", string(options)); err != nil {
		return "", fmt.Errorf("write options field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", "page.png")
	if err != nil {
		return "", fmt.Errorf("create file field: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/tesseract", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr server returned %d: %s", resp.StatusCode, raw)
	}

	var parsed tesseractResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if parsed.Data.Exit.Code != 0 {
		return "", fmt.Errorf("tesseract exited with %d: %s", parsed.Data.Exit.Code, parsed.Data.Stderr)
	}
	return parsed.Data.Stdout, nil
}

// Verify interface
var _ Extractor = (*Client)(nil)
