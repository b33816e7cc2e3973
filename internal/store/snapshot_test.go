package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/testutil"
)

func TestDecodeSnapshot_Legacy(t *testing.T) {
	snap, err := DecodeSnapshot(`{"transactions":[{"id":1,"date":"2024-01-01","concept":"Pan","amount":1.5,"category":"Comida","description":""}],"categories":["Comida"],"apiKey":"k"}`)
	require.NoError(t, err)
	assert.True(t, snap.Legacy())

	migrated := migrateLegacy(snap)
	assert.False(t, migrated.Legacy())
	assert.Equal(t, model.User1, migrated.CurrentUser)
	require.Len(t, migrated.Users[model.User1].Transactions, 1)
	assert.Equal(t, "1", migrated.Users[model.User1].Transactions[0].ID)
	assert.NotNil(t, migrated.Users[model.User2].Transactions)
	assert.Empty(t, migrated.Users[model.User2].Transactions)
	assert.Equal(t, "k", migrated.APIKey)
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	_, err := DecodeSnapshot("{not json")
	assert.Error(t, err)
}

func TestSnapshot_EncodeShape(t *testing.T) {
	s := New(&testutil.SequenceIDs{})
	s.Working().Merge([]model.Transaction{testutil.Tx("a", "2024-01-01", "Pan", "1.5", "Comida")}, s.Categories())

	data, err := s.Snapshot().Encode()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))

	assert.Equal(t, "user1", raw["currentUser"])
	users := raw["users"].(map[string]any)
	u1 := users["user1"].(map[string]any)
	assert.Contains(t, u1, "fileHandle")
	assert.Nil(t, u1["fileHandle"])
	assert.Len(t, u1["transactions"], 1)
	assert.Equal(t, []any{}, users["user2"].(map[string]any)["transactions"])
	assert.Len(t, raw["transactions"], 1)
	assert.Equal(t, 1.5, raw["transactions"].([]any)[0].(map[string]any)["amount"])
	assert.Contains(t, raw, "comparisonFilter")
}
