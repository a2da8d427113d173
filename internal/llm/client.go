package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds structuring-service client settings. Model and
// Temperature are passed through to the service, not interpreted here.
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float32
	MaxTextLength int
}

// Client talks to an OpenAI-compatible chat-completions endpoint (Groq
// in production) and returns the model's JSON payload untouched.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = 6000
	}
	return &Client{cfg: cfg, httpClient: httpClient, log: logger}
}

// ExtractDocument implements DocumentExtractor. The returned bytes are
// the untrusted document; no shape checking happens here.
func (c *Client) ExtractDocument(ctx context.Context, text string) (json.RawMessage, error) {
	start := time.Now()
	truncated := TruncateText(text, c.cfg.MaxTextLength)

	c.log.Info("llm.extract.start",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
		"truncated", len(truncated) != len(text),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": BuildPrompt(truncated)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if status == 0 {
			// transport failure; keep the original error chain so
			// callers can distinguish network problems
			return nil, fmt.Errorf("structuring service request: %w", err)
		}
		return nil, &ServiceError{StatusCode: status, Detail: serviceDetail(err, raw)}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error", "error", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "raw_bytes", len(raw))
		return nil, fmt.Errorf("no choices in completion response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.extract.ok",
		"content_bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return json.RawMessage(content), nil
}

func serviceDetail(err error, raw []byte) string {
	if len(raw) > 0 {
		const maxDetail = 512
		s := string(raw)
		if len(s) > maxDetail {
			s = s[:maxDetail] + "...(truncated)"
		}
		return s
	}
	return err.Error()
}
