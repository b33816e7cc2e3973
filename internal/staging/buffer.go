// Package staging holds the candidate transactions of the latest ingestion
// while the user reviews them.
package staging

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
)

// NewRowConcept is the placeholder concept of manually inserted rows.
const NewRowConcept = "Nuevo gasto"

// Buffer is an ordered, editable list of candidate transactions. It is not
// safe for concurrent use; the owning App serializes access.
type Buffer struct {
	ids  service.IDGenerator
	rows []model.Transaction
}

// NewBuffer creates an empty buffer. ids supplies identifiers for inserted rows.
func NewBuffer(ids service.IDGenerator) *Buffer {
	return &Buffer{ids: ids}
}

// Stage replaces the buffer contents with a copy of txs.
func (b *Buffer) Stage(txs []model.Transaction) {
	b.rows = slices.Clone(txs)
}

// Apply edits one row in place.
func (b *Buffer) Apply(row int, e Edit) error {
	if err := b.check(row); err != nil {
		return err
	}
	b.rows[row] = Apply(b.rows[row], e)
	return nil
}

// InsertRow appends a placeholder row and returns its index.
func (b *Buffer) InsertRow(today, firstCategory string) int {
	b.rows = append(b.rows, model.Transaction{
		ID:       b.ids.NewID(),
		Date:     today,
		Concept:  NewRowConcept,
		Amount:   decimal.Zero,
		Category: firstCategory,
	})
	return len(b.rows) - 1
}

// RemoveRow deletes one row.
func (b *Buffer) RemoveRow(row int) error {
	if err := b.check(row); err != nil {
		return err
	}
	b.rows = slices.Delete(b.rows, row, row+1)
	return nil
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.rows = nil
}

// Len returns the number of staged rows.
func (b *Buffer) Len() int {
	return len(b.rows)
}

// Rows returns a copy of the staged rows.
func (b *Buffer) Rows() []model.Transaction {
	return slices.Clone(b.rows)
}

// Row returns one staged row.
func (b *Buffer) Row(i int) (model.Transaction, error) {
	if err := b.check(i); err != nil {
		return model.Transaction{}, err
	}
	return b.rows[i], nil
}

func (b *Buffer) check(row int) error {
	if row < 0 || row >= len(b.rows) {
		return fmt.Errorf("%w: %d (have %d rows)", common.ErrRowOutOfRange, row, len(b.rows))
	}
	return nil
}
