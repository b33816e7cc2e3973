package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/model"
)

// Comparison holds the totals of both users over a category filter.
type Comparison struct {
	PerCategoryA map[string]decimal.Decimal
	PerCategoryB map[string]decimal.Decimal
	TotalA       decimal.Decimal
	TotalB       decimal.Decimal
	Diff         decimal.Decimal // TotalA - TotalB
}

// Compare totals a and b over the categories in filter only. An empty filter
// yields zero totals.
func Compare(a, b []model.Transaction, filter []string) Comparison {
	c := Comparison{
		PerCategoryA: make(map[string]decimal.Decimal),
		PerCategoryB: make(map[string]decimal.Decimal),
		TotalA:       decimal.Zero,
		TotalB:       decimal.Zero,
	}
	for _, t := range a {
		if slices.Contains(filter, t.Category) {
			c.PerCategoryA[t.Category] = c.PerCategoryA[t.Category].Add(t.Amount)
			c.TotalA = c.TotalA.Add(t.Amount)
		}
	}
	for _, t := range b {
		if slices.Contains(filter, t.Category) {
			c.PerCategoryB[t.Category] = c.PerCategoryB[t.Category].Add(t.Amount)
			c.TotalB = c.TotalB.Add(t.Amount)
		}
	}
	c.Diff = c.TotalA.Sub(c.TotalB)
	return c
}

// Payer reports which user spends more. ok is false when both spend the same.
func Payer(c Comparison) (user model.UserID, ok bool) {
	switch c.Diff.Sign() {
	case 1:
		return model.User1, true
	case -1:
		return model.User2, true
	default:
		return "", false
	}
}
