package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoticeFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		severity Severity
		contains string
	}{
		{name: "nil", err: nil, severity: SeverityInfo},
		{
			name:     "mirror write",
			err:      fmt.Errorf("commit: %w", &PersistenceError{Target: "gastos.csv", Err: errors.New("denied")}),
			severity: SeverityWarning,
			contains: "gastos.csv",
		},
		{
			name:     "schema",
			err:      &SchemaError{Reason: "missing header", Missing: []string{"Fecha"}},
			severity: SeverityError,
			contains: "Fecha",
		},
		{
			name:     "extraction",
			err:      &ExternalCallError{Op: "extract a.pdf", Err: errors.New("quota")},
			severity: SeverityError,
			contains: "quota",
		},
		{
			name:     "user error",
			err:      NewUserError("Pick a user", ErrUnknownUser),
			severity: SeverityError,
			contains: "Pick a user",
		},
		{name: "empty staging", err: ErrEmptyStaging, severity: SeverityWarning, contains: "no new transactions"},
		{name: "other", err: errors.New("boom"), severity: SeverityError, contains: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NoticeFor(tt.err)
			assert.Equal(t, tt.severity, n.Severity)
			assert.Contains(t, n.Message, tt.contains)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Field: "amount", Value: "abc", Reason: "not a number", Row: 4}
	assert.Equal(t, `row 4: invalid amount "abc": not a number`, err.Error())

	err.Row = 0
	assert.Equal(t, `invalid amount "abc": not a number`, err.Error())
}
