// Package ledger keeps the committed transactions of one user and decides
// which staged rows are duplicates of them.
package ledger

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/staging"
)

// CommitResult counts the outcome of a merge.
type CommitResult struct {
	Accepted   int
	Duplicates int
	Invalid    int
}

// Ledger is an ordered list of committed transactions, sorted by date
// descending. The zero value is an empty ledger.
type Ledger struct {
	txs []model.Transaction
}

// New creates a ledger from txs, sorting a copy.
func New(txs []model.Transaction) *Ledger {
	l := &Ledger{}
	l.Replace(txs)
	return l
}

// Validate checks the committed-row invariant: a calendar date, a positive
// amount, a non-blank concept and a category from categories.
func Validate(t model.Transaction, categories *model.CategorySet) error {
	if _, err := time.Parse(model.DateLayout, t.Date); err != nil {
		return &common.ParseError{Field: "date", Value: t.Date, Reason: "not YYYY-MM-DD"}
	}
	if !t.Amount.IsPositive() {
		return &common.ParseError{Field: "amount", Value: t.Amount.String(), Reason: "not a positive expense"}
	}
	if strings.TrimSpace(t.Concept) == "" {
		return &common.ParseError{Field: "concept", Value: t.Concept, Reason: "empty"}
	}
	if !categories.Contains(t.Category) {
		return &common.ParseError{Field: "category", Value: t.Category, Reason: "not a known category"}
	}
	return nil
}

// Merge appends every staged row that is valid against categories and not a
// duplicate of an entry present before the call. Staged rows are not
// compared with each other.
func (l *Ledger) Merge(staged []model.Transaction, categories *model.CategorySet) CommitResult {
	existing := len(l.txs)
	var res CommitResult

	for _, s := range staged {
		if err := Validate(s, categories); err != nil {
			slog.Debug("Rejected staged row", "id", s.ID, "error", err)
			res.Invalid++
			continue
		}
		if slices.ContainsFunc(l.txs[:existing], func(e model.Transaction) bool {
			return IsDuplicate(s, e)
		}) {
			res.Duplicates++
			continue
		}
		l.txs = append(l.txs, s)
		res.Accepted++
	}

	if res.Accepted > 0 {
		l.sort()
	}
	return res
}

// Update applies an edit to the entry with the given id and re-sorts. The
// entry is left untouched when the edited row is invalid. A changed category
// must be in categories.
func (l *Ledger) Update(id string, e staging.Edit, categories *model.CategorySet) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	updated := staging.Apply(l.txs[i], e)
	// A label that has left the set since the row was committed is kept
	// until the category itself is edited.
	check := categories
	if updated.Category == l.txs[i].Category && !categories.Contains(updated.Category) {
		check = model.NewCategorySet([]string{updated.Category})
	}
	if err := Validate(updated, check); err != nil {
		return err
	}
	l.txs[i] = updated
	l.sort()
	return nil
}

// Remove deletes the entry with the given id.
func (l *Ledger) Remove(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	l.txs = slices.Delete(l.txs, i, i+1)
	return nil
}

// Get returns the entry with the given id.
func (l *Ledger) Get(id string) (model.Transaction, bool) {
	i := l.index(id)
	if i < 0 {
		return model.Transaction{}, false
	}
	return l.txs[i], true
}

// Clear removes every entry.
func (l *Ledger) Clear() {
	l.txs = nil
}

// Replace swaps the contents for a sorted copy of txs.
func (l *Ledger) Replace(txs []model.Transaction) {
	l.txs = slices.Clone(txs)
	l.sort()
}

// Transactions returns a copy of the entries, newest first.
func (l *Ledger) Transactions() []model.Transaction {
	return slices.Clone(l.txs)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.txs)
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.txs, func(t model.Transaction) bool { return t.ID == id })
}

// sort orders by date descending. Dates are canonical so string order is
// chronological; ties keep insertion order.
func (l *Ledger) sort() {
	slices.SortStableFunc(l.txs, func(a, b model.Transaction) int {
		return strings.Compare(b.Date, a.Date)
	})
}
