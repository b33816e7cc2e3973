// Package service defines the interfaces of the collaborators the core consumes.
package service

import (
	"context"
	"encoding/json"
	"time"
)

// KVStore is the durable key-value store. The whole application state is
// persisted as one value.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FileHandle is a live binding to a user-chosen file. The core only performs
// full-content reads and full-content overwrites.
type FileHandle interface {
	Name() string
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, content string) error
}

// Document is a raw statement handed to the extraction service.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ExtractedRecord is one best-effort row produced by the extraction service.
type ExtractedRecord struct {
	Date     string    `json:"date"`
	Concept  string    `json:"concept"`
	Amount   RawAmount `json:"amount"`
	Category string    `json:"category"`
	Memo     string    `json:"description,omitempty"`
}

// RawAmount keeps an amount exactly as the source wrote it. It decodes from
// a JSON number or a JSON string, so both 55.2 and "55,20" survive.
type RawAmount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *RawAmount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = RawAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = RawAmount(n.String())
	return nil
}

// Extractor turns a statement document into expense rows.
type Extractor interface {
	Extract(ctx context.Context, doc Document, categories []string) ([]ExtractedRecord, error)
}

// IDGenerator produces transaction identifiers unique within one store.
type IDGenerator interface {
	NewID() string
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
