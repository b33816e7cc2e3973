package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
)

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return newGeminiClient(ctx, cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q: %w", cfg.Provider, common.ErrInvalidConfig)
	}
}

// New builds a ready extraction service for cfg.
func New(ctx context.Context, cfg Config) (*Extractor, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewExtractor(client, cfg), nil
}
