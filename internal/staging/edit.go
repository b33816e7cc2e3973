package staging

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
)

// Edit changes one field of a transaction. The concrete types below are the
// only implementations.
type Edit interface {
	Field() string
	isEdit()
}

// SetDate replaces the date.
type SetDate struct{ Value string }

// SetConcept replaces the concept.
type SetConcept struct{ Value string }

// SetAmount replaces the amount.
type SetAmount struct{ Value decimal.Decimal }

// SetCategory replaces the category.
type SetCategory struct{ Value string }

// SetDescription replaces the description.
type SetDescription struct{ Value string }

func (SetDate) isEdit()        {}
func (SetConcept) isEdit()     {}
func (SetAmount) isEdit()      {}
func (SetCategory) isEdit()    {}
func (SetDescription) isEdit() {}

// Field names the edited field.
func (SetDate) Field() string        { return FieldDate }
func (SetConcept) Field() string     { return FieldConcept }
func (SetAmount) Field() string      { return FieldAmount }
func (SetCategory) Field() string    { return FieldCategory }
func (SetDescription) Field() string { return FieldDescription }

// Editable field names, in column order.
const (
	FieldDate        = "date"
	FieldConcept     = "concept"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
)

// Fields lists the editable fields in column order.
func Fields() []string {
	return []string{FieldDate, FieldConcept, FieldAmount, FieldCategory, FieldDescription}
}

// Apply returns t with the edit applied. Values are stored as given; the
// ledger validates rows when they are committed.
func Apply(t model.Transaction, e Edit) model.Transaction {
	switch e := e.(type) {
	case SetDate:
		t.Date = e.Value
	case SetConcept:
		t.Concept = e.Value
	case SetAmount:
		t.Amount = e.Value
	case SetCategory:
		t.Category = e.Value
	case SetDescription:
		t.Description = e.Value
	}
	return t
}

// ParseEdit builds an edit from a field name and user input. Amounts must be
// numeric but may be zero or negative.
func ParseEdit(field, value string) (Edit, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldDate, "fecha":
		return SetDate{Value: strings.TrimSpace(value)}, nil
	case FieldConcept, "concepto":
		return SetConcept{Value: value}, nil
	case FieldAmount, "cantidad":
		s := strings.TrimSpace(value)
		if !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, &common.ParseError{Field: FieldAmount, Value: value, Reason: "not a number"}
		}
		return SetAmount{Value: d}, nil
	case FieldCategory, "categoria":
		return SetCategory{Value: strings.TrimSpace(value)}, nil
	case FieldDescription, "descripcion":
		return SetDescription{Value: value}, nil
	default:
		return nil, common.NewUserError(
			fmt.Sprintf("Unknown field %q (expected one of %s)", field, strings.Join(Fields(), ", ")),
			common.ErrNotFound)
	}
}
