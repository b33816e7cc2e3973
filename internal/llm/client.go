package llm

import (
	"context"
	"time"

	"github.com/Veraticus/gastos/internal/service"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the settings for building an extraction service.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per minute, 0 disables limiting
	Retry     service.RetryOptions
}

// Client defines the interface for LLM providers.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one prompt for the model. Attachment carries a binary
// statement (PDF or image) for providers that accept inline data.
type Request struct {
	Attachment *service.Document
	Prompt     string
}
