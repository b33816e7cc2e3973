package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/Veraticus/gastos/internal/common"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements the Client interface for the Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

// newGeminiClient creates a Gemini client bound to an API key.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

// Generate sends the prompt and any inline attachment in a single user turn.
func (c *geminiClient) Generate(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Attachment != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Attachment.MIMEType,
				Data:     req.Attachment.Data,
			},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// classifyGeminiError marks client-side API failures as final so the retry
// loop does not repeat a request that cannot succeed.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	return statusError(apiErr.Code, apiErr.Message)
}

// statusError maps an HTTP status to a retry decision. 429 and 5xx are
// retried; other 4xx are not.
func statusError(code int, body string) error {
	err := fmt.Errorf("API error (status %d): %s", code, body)
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case code >= 500:
		return &common.RetryableError{Err: err, Retryable: true}
	case code >= 400:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}
