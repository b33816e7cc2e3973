package testutil

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/model"
)

// Tx builds a transaction fixture. Amount is parsed as a decimal literal and
// panics on invalid input, which only happens in broken tests.
func Tx(id, date, concept, amount, category string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     date,
		Concept:  concept,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
	}
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
