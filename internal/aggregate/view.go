package aggregate

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
)

// Mode selects the period a View covers.
type Mode string

const (
	// ModeGlobal covers every transaction.
	ModeGlobal Mode = "global"
	// ModeMonthly covers a single month.
	ModeMonthly Mode = "monthly"
)

// DefaultTop is the number of top expenses in a View.
const DefaultTop = 10

// ParseMode validates a mode name. Empty means global.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeGlobal:
		return ModeGlobal, nil
	case ModeMonthly:
		return ModeMonthly, nil
	default:
		return "", fmt.Errorf("%w: unknown report mode %q", common.ErrInvalidConfig, s)
	}
}

// Query describes the requested View.
type Query struct {
	Mode  Mode
	Month string // YYYY-MM; empty picks the newest month in monthly mode
	Top   int
}

// View is everything the dashboard shows for one user.
type View struct {
	Totals      map[string]decimal.Decimal
	Series      map[string]map[string]decimal.Decimal
	Mode        Mode
	Month       string
	Label       string
	TopCategory CategoryAmount
	Total       decimal.Decimal
	Months      []string
	Top         []model.Transaction
	Comparison  Comparison
	Count       int
}

// Inputs are the ledgers a View is computed from.
type Inputs struct {
	Active []model.Transaction
	User1  []model.Transaction
	User2  []model.Transaction
	Filter []string
}

// BuildView computes a View. The comparison always spans both full ledgers.
func BuildView(in Inputs, q Query) (View, error) {
	mode, err := ParseMode(string(q.Mode))
	if err != nil {
		return View{}, err
	}
	top := q.Top
	if top <= 0 {
		top = DefaultTop
	}

	v := View{
		Mode:       mode,
		Months:     Months(in.Active),
		Series:     MonthlySeries(in.Active),
		Comparison: Compare(in.User1, in.User2, in.Filter),
	}

	subset := in.Active
	switch mode {
	case ModeMonthly:
		v.Month = q.Month
		if v.Month == "" && len(v.Months) > 0 {
			v.Month = v.Months[0]
		}
		if v.Month != "" && !slices.Contains(v.Months, v.Month) {
			return View{}, common.NewUserError(
				fmt.Sprintf("No transactions in %s", v.Month), common.ErrNotFound)
		}
		subset = FilterMonth(in.Active, v.Month)
		v.Label = MonthLabel(v.Month)
	default:
		v.Label = RangeLabel(in.Active)
	}

	v.Count = len(subset)
	v.Total = Total(subset)
	v.Totals = CategoryTotals(subset)
	v.TopCategory = TopCategory(subset)
	v.Top = TopExpenses(subset, top)
	return v, nil
}
