// Package ingest turns heterogeneous raw input into canonical transactions.
//
// Every source (CSV exports, rows extracted from statements, the persisted
// ledger mirror, OFX statements) goes through the same Normalizer so that
// the ledger only ever sees validated records. Ingestion is best-effort: a
// malformed row is dropped and counted, it never aborts the batch.
package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
)

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// RawRecord holds the unvalidated text of one input row.
type RawRecord struct {
	Date        string
	Concept     string
	Amount      string
	Category    string
	Description string
}

// Result is the outcome of one ingestion. Skipped counts dropped rows and
// Errors explains each of them.
type Result struct {
	Transactions []model.Transaction
	Errors       []error
	Skipped      int
}

func (r *Result) add(t model.Transaction) {
	r.Transactions = append(r.Transactions, t)
}

func (r *Result) skip(err error) {
	r.Skipped++
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

// NewID implements service.IDGenerator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Normalizer validates raw records against the current category set.
type Normalizer struct {
	categories *model.CategorySet
	ids        service.IDGenerator
}

// NewNormalizer creates a normalizer. The category set is read on every
// call, so later additions are honoured.
func NewNormalizer(categories *model.CategorySet, ids service.IDGenerator) *Normalizer {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Normalizer{categories: categories, ids: ids}
}

// NewID exposes the injected generator for rows created outside ingestion.
func (n *Normalizer) NewID() string {
	return n.ids.NewID()
}

// Normalize validates one record. A *common.ParseError means the row must be
// dropped.
func (n *Normalizer) Normalize(raw RawRecord) (model.Transaction, error) {
	return n.normalize(raw, n.categories.Coerce)
}

// normalizeKeepingCategory is Normalize for rows already committed once:
// their category label is kept even when it has left the set since.
func (n *Normalizer) normalizeKeepingCategory(raw RawRecord) (model.Transaction, error) {
	return n.normalize(raw, func(label string) string {
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
		return model.FallbackCategory
	})
}

func (n *Normalizer) normalize(raw RawRecord, category func(string) string) (model.Transaction, error) {
	date, err := NormalizeDate(raw.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := NormalizeAmount(raw.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:          n.ids.NewID(),
		Date:        date,
		Concept:     clean(raw.Concept),
		Amount:      amount,
		Category:    category(clean(raw.Category)),
		Description: clean(raw.Description),
	}, nil
}

// NormalizeDate resolves a raw date to YYYY-MM-DD. Accepted forms are the
// canonical one, DD/MM/YYYY, and anything the generic parser understands.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if s == "" {
		return "", &common.ParseError{Field: "date", Value: raw, Reason: "empty"}
	}

	if isoDatePattern.MatchString(s) {
		if _, err := time.Parse(model.DateLayout, s); err != nil {
			return "", &common.ParseError{Field: "date", Value: raw, Reason: "not a calendar date"}
		}
		return s, nil
	}

	if m := dmyDatePattern.FindStringSubmatch(s); m != nil {
		d, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3])
		if err != nil {
			return "", &common.ParseError{Field: "date", Value: raw, Reason: "not a calendar date"}
		}
		return d.Format(model.DateLayout), nil
	}

	d, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", &common.ParseError{Field: "date", Value: raw, Reason: "unrecognised format"}
	}
	return d.UTC().Format(model.DateLayout), nil
}

// NormalizeAmount parses a positive decimal. A comma is the decimal
// separator when the value has no dot.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	s, err := ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !s.IsPositive() {
		return decimal.Zero, &common.ParseError{Field: "amount", Value: raw, Reason: "not a positive expense"}
	}
	return s, nil
}

// ParseDecimal parses an amount without the positivity rule.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if s == "" {
		return decimal.Zero, &common.ParseError{Field: "amount", Value: raw, Reason: "empty"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &common.ParseError{Field: "amount", Value: raw, Reason: "not a number"}
	}
	return d, nil
}

// clean trims whitespace and one pair of wrapping quotes, undoing the
// doubled-quote escaping used inside quoted CSV fields.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return strings.TrimSpace(s)
}
