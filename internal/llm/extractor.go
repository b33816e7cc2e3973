package llm

import (
	"context"
	"errors"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/service"
)

// Extractor implements service.Extractor on top of a provider Client.
type Extractor struct {
	client  Client
	limiter *rateLimiter
	retry   service.RetryOptions
}

// NewExtractor wraps a client with rate limiting and the retry policy.
// A zero retry policy uses common.DefaultExtractionRetry.
func NewExtractor(client Client, cfg Config) *Extractor {
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = common.DefaultExtractionRetry()
	}
	return &Extractor{
		client:  client,
		limiter: newRateLimiter(cfg.RateLimit),
		retry:   retry,
	}
}

// Extract asks the model for the expense rows in doc. Every attempt runs in
// sequence; the final failure is reported as an ExternalCallError.
func (e *Extractor) Extract(ctx context.Context, doc service.Document, categories []string) ([]service.ExtractedRecord, error) {
	req := Request{}
	if isTextDocument(doc) {
		req.Prompt = buildPrompt(categories, string(doc.Data))
	} else {
		req.Prompt = buildPrompt(categories, "")
		req.Attachment = &doc
	}

	var records []service.ExtractedRecord
	err := common.WithRetry(ctx, func() error {
		if err := e.limiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		text, err := e.client.Generate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return &common.RetryableError{Err: err, Retryable: false}
			}
			return err
		}

		parsed, err := parseRecords(text)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		records = parsed
		return nil
	}, e.retry)
	if err != nil {
		common.LogError(err, "Document extraction failed", common.Fields{"document": doc.Name})
		return nil, &common.ExternalCallError{Op: "extract " + doc.Name, Err: unwrapFinal(err)}
	}

	common.LogInfo("Document extracted", common.Fields{"document": doc.Name, "records": len(records)})
	return records, nil
}

// unwrapFinal drops the retry envelope of a non-retryable failure so the
// user sees the provider's message.
func unwrapFinal(err error) error {
	var re *common.RetryableError
	if errors.As(err, &re) && !re.Retryable {
		return re.Err
	}
	return err
}
