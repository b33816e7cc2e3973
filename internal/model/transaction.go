// Package model defines the domain types shared by every component.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical transaction date format.
const DateLayout = "2006-01-02"

// Transaction is a validated, normalized expense record.
type Transaction struct {
	Amount      decimal.Decimal
	ID          string
	Date        string // YYYY-MM-DD
	Concept     string // Merchant or short bank description
	Category    string
	Description string // Free-text note
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// transactionJSON is the persisted shape. Amount is a bare JSON number and
// the id may be a string or, in blobs written by older versions, a number.
type transactionJSON struct {
	ID          json.RawMessage `json:"id"`
	Date        string          `json:"date"`
	Concept     string          `json:"concept"`
	Amount      json.Number     `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// MarshalJSON implements json.Marshaler.
func (t Transaction) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(t.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(transactionJSON{
		ID:          id,
		Date:        t.Date,
		Concept:     t.Concept,
		Amount:      json.Number(t.Amount.String()),
		Category:    t.Category,
		Description: t.Description,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	amount, err := decodeAmount(raw["amount"])
	if err != nil {
		return fmt.Errorf("transaction amount: %w", err)
	}

	*t = Transaction{
		ID:          decodeString(raw["id"]),
		Date:        decodeString(raw["date"]),
		Concept:     decodeString(raw["concept"]),
		Amount:      amount,
		Category:    decodeString(raw["category"]),
		Description: decodeString(raw["description"]),
	}
	return nil
}

func decodeString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func decodeAmount(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		if strings.TrimSpace(val) == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(strings.TrimSpace(val))
	default:
		return decimal.Zero, fmt.Errorf("unexpected amount type %T", v)
	}
}
