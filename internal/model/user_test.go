package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
)

func TestParseUserID(t *testing.T) {
	u, err := ParseUserID("user2")
	require.NoError(t, err)
	assert.Equal(t, User2, u)
	assert.Equal(t, "User 2", u.Label())

	_, err = ParseUserID("user3")
	assert.ErrorIs(t, err, common.ErrUnknownUser)
}
