package ledger

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/model"
)

// amountTolerance is the largest amount difference still treated as equal.
var amountTolerance = decimal.RequireFromString("0.01")

const (
	nearDuplicateDays     = 3
	nearDuplicateDistance = 0.3
)

// IsDuplicate reports whether two transactions describe the same expense:
// same date, amounts within one cent, and concepts equal ignoring case and
// surrounding space. Category and description do not take part.
func IsDuplicate(a, b model.Transaction) bool {
	if a.Date != b.Date {
		return false
	}
	if a.Amount.Sub(b.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.Concept), strings.TrimSpace(b.Concept))
}

// Hint pairs a staged transaction with a ledger entry that looks alike
// without being an exact duplicate.
type Hint struct {
	Staged   model.Transaction
	Existing model.Transaction
	Distance float64
}

// NearDuplicates finds staged rows resembling ledger entries: equal amount,
// dates at most three days apart and similar concepts. Exact duplicates are
// excluded since the merge already drops them.
func NearDuplicates(staged, existing []model.Transaction) []Hint {
	var hints []Hint
	for _, s := range staged {
		sd, err := time.Parse(model.DateLayout, s.Date)
		if err != nil {
			continue
		}
		for _, e := range existing {
			if IsDuplicate(s, e) {
				continue
			}
			if s.Amount.Sub(e.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
				continue
			}
			ed, err := time.Parse(model.DateLayout, e.Date)
			if err != nil {
				continue
			}
			days := sd.Sub(ed).Hours() / 24
			if days < -nearDuplicateDays || days > nearDuplicateDays {
				continue
			}
			dist := conceptDistance(s.Concept, e.Concept)
			if dist < nearDuplicateDistance {
				hints = append(hints, Hint{Staged: s, Existing: e, Distance: dist})
			}
		}
	}
	return hints
}

// conceptDistance is the Levenshtein distance normalized by the longer
// concept, in [0, 1].
func conceptDistance(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
