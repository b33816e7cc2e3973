package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/testutil"
)

func sample() []model.Transaction {
	return []model.Transaction{
		testutil.Tx("1", "2024-03-02", "Cine", "10", "A"),
		testutil.Tx("2", "2024-03-01", "Pan", "3", "B"),
		testutil.Tx("3", "2024-02-15", "Teatro", "5", "A"),
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(testutil.Dec(want)), "want %s, got %s", want, got)
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals(sample())
	require.Len(t, totals, 2)
	assertDec(t, "15", totals["A"])
	assertDec(t, "3", totals["B"])

	assert.Empty(t, CategoryTotals(nil))
}

func TestTotalAndTopCategory(t *testing.T) {
	assertDec(t, "18", Total(sample()))
	assertDec(t, "0", Total(nil))

	top := TopCategory(sample())
	assert.Equal(t, "A", top.Category)
	assertDec(t, "15", top.Amount)

	assert.Equal(t, NoCategory, TopCategory(nil).Category)
}

func TestTopExpenses(t *testing.T) {
	txs := []model.Transaction{
		testutil.Tx("a", "2024-01-01", "x", "5", "A"),
		testutil.Tx("b", "2024-01-02", "y", "9", "A"),
		testutil.Tx("c", "2024-01-03", "z", "5", "A"),
		testutil.Tx("d", "2024-01-04", "w", "1", "A"),
	}

	top := TopExpenses(txs, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{top[0].ID, top[1].ID, top[2].ID})
	assert.Equal(t, "a", txs[0].ID, "input must not be reordered")

	assert.Len(t, TopExpenses(txs, 10), 4)
	assert.Empty(t, TopExpenses(txs, 0))
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(sample())
	require.Len(t, series, 2)
	assertDec(t, "10", series["2024-03"]["A"])
	assertDec(t, "3", series["2024-03"]["B"])
	assertDec(t, "5", series["2024-02"]["A"])
}

func TestMonthsAndFilters(t *testing.T) {
	assert.Equal(t, []string{"2024-03", "2024-02"}, Months(sample()))
	assert.Len(t, FilterMonth(sample(), "2024-03"), 2)
	assert.Empty(t, FilterMonth(sample(), "2023-01"))
	assert.Len(t, FilterCategory(sample(), "A"), 2)
}

func TestDateRangeLabel(t *testing.T) {
	assert.Equal(t, "", DateRangeLabel(nil))
	assert.Equal(t, "2024-03", DateRangeLabel(FilterMonth(sample(), "2024-03")))
	assert.Equal(t, "2024-02 – 2024-03", DateRangeLabel(sample()))

	assert.Equal(t, "Febrero 2024 – Marzo 2024", RangeLabel(sample()))
	assert.Equal(t, "", RangeLabel(nil))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Enero 2024", MonthLabel("2024-01"))
	assert.Equal(t, "Diciembre 2023", MonthLabel("2023-12"))
	assert.Equal(t, "2024-13", MonthLabel("2024-13"))
	assert.Equal(t, "", MonthName(0))
}

func TestCompare(t *testing.T) {
	a := sample()
	b := []model.Transaction{
		testutil.Tx("4", "2024-03-05", "Cine", "20", "A"),
		testutil.Tx("5", "2024-03-06", "Luz", "40", "C"),
	}

	c := Compare(a, b, []string{"A"})
	assertDec(t, "15", c.TotalA)
	assertDec(t, "20", c.TotalB)
	assertDec(t, "-5", c.Diff)
	assertDec(t, "15", c.PerCategoryA["A"])
	assert.NotContains(t, c.PerCategoryA, "B")
	assert.NotContains(t, c.PerCategoryB, "C")

	user, ok := Payer(c)
	require.True(t, ok)
	assert.Equal(t, model.User2, user)
}

func TestCompare_EmptyFilter(t *testing.T) {
	c := Compare(sample(), sample(), nil)
	assertDec(t, "0", c.TotalA)
	assertDec(t, "0", c.TotalB)
	assertDec(t, "0", c.Diff)
	assert.Empty(t, c.PerCategoryA)

	_, ok := Payer(c)
	assert.False(t, ok)
}

func TestBuildView(t *testing.T) {
	in := Inputs{Active: sample(), User1: sample(), Filter: []string{"A", "B"}}

	t.Run("global", func(t *testing.T) {
		v, err := BuildView(in, Query{})
		require.NoError(t, err)
		assert.Equal(t, ModeGlobal, v.Mode)
		assert.Equal(t, 3, v.Count)
		assertDec(t, "18", v.Total)
		assert.Equal(t, "A", v.TopCategory.Category)
		assert.Len(t, v.Top, 3)
		assert.Equal(t, "Febrero 2024 – Marzo 2024", v.Label)
		assertDec(t, "18", v.Comparison.Diff)
	})

	t.Run("monthly defaults to newest", func(t *testing.T) {
		v, err := BuildView(in, Query{Mode: ModeMonthly, Top: 1})
		require.NoError(t, err)
		assert.Equal(t, "2024-03", v.Month)
		assert.Equal(t, "Marzo 2024", v.Label)
		assertDec(t, "13", v.Total)
		require.Len(t, v.Top, 1)
		assert.Equal(t, "1", v.Top[0].ID)
	})

	t.Run("unknown month", func(t *testing.T) {
		_, err := BuildView(in, Query{Mode: ModeMonthly, Month: "2020-01"})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := BuildView(in, Query{Mode: "weekly"})
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("empty ledger", func(t *testing.T) {
		v, err := BuildView(Inputs{}, Query{Mode: ModeMonthly})
		require.NoError(t, err)
		assert.Zero(t, v.Count)
		assert.Equal(t, NoCategory, v.TopCategory.Category)
	})
}
