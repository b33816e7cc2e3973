// Package aggregate computes read-only summaries over transactions. Every
// function is pure and leaves its input untouched.
package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/model"
)

// NoCategory is reported by TopCategory when there is nothing to rank.
const NoCategory = "-"

// CategoryAmount is a category with its total.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// CategoryTotals sums amounts per category.
func CategoryTotals(txs []model.Transaction) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// Total sums every amount.
func Total(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

// TopExpenses returns the n largest transactions, largest first. Equal
// amounts keep their input order.
func TopExpenses(txs []model.Transaction, n int) []model.Transaction {
	if n <= 0 {
		return nil
	}
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopCategory returns the category with the largest total, or NoCategory.
// Ties go to the category that sorts first.
func TopCategory(txs []model.Transaction) CategoryAmount {
	best := CategoryAmount{Category: NoCategory, Amount: decimal.Zero}
	for _, c := range SortedTotals(CategoryTotals(txs)) {
		if c.Amount.GreaterThan(best.Amount) {
			best = c
		}
	}
	return best
}

// SortedTotals orders category totals by amount descending, then name.
func SortedTotals(totals map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for c, a := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: a})
	}
	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// MonthlySeries sums amounts per month (YYYY-MM) and category.
func MonthlySeries(txs []model.Transaction) map[string]map[string]decimal.Decimal {
	series := make(map[string]map[string]decimal.Decimal)
	for _, t := range txs {
		m := t.Month()
		if series[m] == nil {
			series[m] = make(map[string]decimal.Decimal)
		}
		series[m][t.Category] = series[m][t.Category].Add(t.Amount)
	}
	return series
}

// Months lists the distinct months present, newest first.
func Months(txs []model.Transaction) []string {
	var months []string
	for _, t := range txs {
		if m := t.Month(); !slices.Contains(months, m) {
			months = append(months, m)
		}
	}
	slices.SortFunc(months, func(a, b string) int { return cmp.Compare(b, a) })
	return months
}

// FilterMonth keeps the transactions of one YYYY-MM month.
func FilterMonth(txs []model.Transaction, month string) []model.Transaction {
	var out []model.Transaction
	for _, t := range txs {
		if t.Month() == month {
			out = append(out, t)
		}
	}
	return out
}

// FilterCategory keeps the transactions of one category.
func FilterCategory(txs []model.Transaction, category string) []model.Transaction {
	var out []model.Transaction
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// DateRangeLabel describes the months spanned by txs: "YYYY-MM" when the
// earliest and latest dates share a month, "YYYY-MM – YYYY-MM" otherwise,
// and "" for no transactions.
func DateRangeLabel(txs []model.Transaction) string {
	first, last, ok := monthBounds(txs)
	if !ok {
		return ""
	}
	if first == last {
		return first
	}
	return first + " – " + last
}

// RangeLabel is DateRangeLabel with Spanish month names, e.g.
// "Enero 2024 – Marzo 2024".
func RangeLabel(txs []model.Transaction) string {
	first, last, ok := monthBounds(txs)
	if !ok {
		return ""
	}
	if first == last {
		return MonthLabel(first)
	}
	return MonthLabel(first) + " – " + MonthLabel(last)
}

func monthBounds(txs []model.Transaction) (string, string, bool) {
	if len(txs) == 0 {
		return "", "", false
	}
	lo, hi := txs[0].Date, txs[0].Date
	for _, t := range txs[1:] {
		lo = min(lo, t.Date)
		hi = max(hi, t.Date)
	}
	return monthOf(lo), monthOf(hi), true
}

func monthOf(date string) string {
	return model.Transaction{Date: date}.Month()
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of month 1-12, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthLabel formats "2024-03" as "Marzo 2024". Malformed input is returned
// unchanged.
func MonthLabel(ym string) string {
	if len(ym) != 7 || ym[4] != '-' {
		return ym
	}
	m, err := strconv.Atoi(ym[5:])
	if err != nil || MonthName(m) == "" {
		return ym
	}
	return fmt.Sprintf("%s %s", MonthName(m), ym[:4])
}
