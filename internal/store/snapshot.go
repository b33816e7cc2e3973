package store

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/gastos/internal/model"
)

// StateKey is the key holding the whole persisted state.
const StateKey = "financeApp_data"

// SlotSnapshot is the persisted part of one user slot. FileHandle is always
// written as null; file bindings never survive a restart.
type SlotSnapshot struct {
	FileHandle   *struct{}           `json:"fileHandle"`
	Transactions []model.Transaction `json:"transactions"`
}

// FilterSnapshot is the persisted comparison filter.
type FilterSnapshot struct {
	Categories []string `json:"categories"`
}

// Snapshot is the persisted state blob. Blobs written before multi-user
// support have no users key and only carry transactions, categories and
// apiKey.
type Snapshot struct {
	Users            map[model.UserID]SlotSnapshot `json:"users"`
	ComparisonFilter *FilterSnapshot               `json:"comparisonFilter,omitempty"`
	CurrentUser      model.UserID                  `json:"currentUser"`
	APIKey           string                        `json:"apiKey"`
	Transactions     []model.Transaction           `json:"transactions"`
	Categories       []string                      `json:"categories"`
}

// Legacy reports whether the blob predates multi-user support.
func (s Snapshot) Legacy() bool {
	return s.Users == nil
}

// DecodeSnapshot parses a persisted blob.
func DecodeSnapshot(data string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", StateKey, err)
	}
	return s, nil
}

// Encode serializes the snapshot in the current format.
func (s Snapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", StateKey, err)
	}
	return string(data), nil
}

// migrateLegacy moves legacy top-level transactions into user1.
func migrateLegacy(s Snapshot) Snapshot {
	txs := orEmpty(s.Transactions)
	return Snapshot{
		CurrentUser: model.User1,
		Users: map[model.UserID]SlotSnapshot{
			model.User1: {Transactions: txs},
			model.User2: {Transactions: []model.Transaction{}},
		},
		Transactions: txs,
		Categories:   s.Categories,
		APIKey:       s.APIKey,
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
