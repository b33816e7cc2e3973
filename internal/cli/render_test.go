package cli

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/gastos/internal/aggregate"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/ledger"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/store"
	"github.com/Veraticus/gastos/internal/testutil"
)

func sampleTxs() []model.Transaction {
	return []model.Transaction{
		testutil.Tx("a1b2c3d4e5f6", "2024-02-03", "Mercadona", "55.20", "Supermercado"),
		testutil.Tx("tx-2", "2024-01-15", "Iberdrola", "40", "Luz"),
	}
}

func TestRenderStagedAndLedger(t *testing.T) {
	staged := RenderStaged(sampleTxs())
	assert.Contains(t, staged, "Mercadona")
	assert.Contains(t, staged, "55.20 €")
	assert.Contains(t, staged, "Fecha")

	ledgerOut := RenderLedger(sampleTxs())
	assert.Contains(t, ledgerOut, "a1b2c3d4")
	assert.NotContains(t, ledgerOut, "a1b2c3d4e5f6")
	assert.Contains(t, ledgerOut, "tx-2")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(decimal.Zero, testutil.Dec("10"), 10))
	assert.Equal(t, "", bar(testutil.Dec("1"), decimal.Zero, 10))
	assert.Equal(t, "█████", bar(testutil.Dec("5"), testutil.Dec("10"), 10))
	assert.Equal(t, "█", bar(testutil.Dec("0.01"), testutil.Dec("10"), 10))
}

func TestRenderView(t *testing.T) {
	v, err := aggregate.BuildView(aggregate.Inputs{Active: sampleTxs()}, aggregate.Query{})
	assert.NoError(t, err)

	out := RenderView(model.User1, v)
	assert.Contains(t, out, "User 1")
	assert.Contains(t, out, "95.20 €")
	assert.Contains(t, out, "Supermercado")
	assert.Contains(t, out, "Mayores gastos")
}

func TestRenderTrends(t *testing.T) {
	txs := sampleTxs()
	out := RenderTrends(aggregate.MonthlySeries(txs), aggregate.Months(txs), "Luz")
	assert.Contains(t, out, "Enero 2024")
	assert.Contains(t, out, "Febrero 2024")
	assert.Contains(t, out, "40.00 €")
	assert.Contains(t, out, "0.00 €")
}

func TestRenderComparison(t *testing.T) {
	a := []model.Transaction{testutil.Tx("1", "2024-01-01", "Luz", "50", "Luz")}
	b := []model.Transaction{testutil.Tx("2", "2024-01-01", "Luz", "20", "Luz")}
	filter := []string{"Luz"}

	out := RenderComparison(aggregate.Compare(a, b, filter), filter)
	assert.Contains(t, out, "User 1 spends 30.00 € more")

	empty := RenderComparison(aggregate.Compare(a, b, nil), nil)
	assert.Contains(t, empty, "No categories selected")
}

func TestRenderIngestAndCommit(t *testing.T) {
	txs := sampleTxs()
	out := RenderIngest("enero.csv", store.IngestReport{
		Notice: common.Info("2 transactions staged"),
		Errors: []error{errors.New("row 3: invalid amount")},
		Hints:  []ledger.Hint{{Staged: txs[0], Existing: txs[1]}},
	})
	assert.Contains(t, out, "2 transactions staged")
	assert.Contains(t, out, "enero.csv")
	assert.Contains(t, out, "row 3: invalid amount")
	assert.Contains(t, out, "looks like")

	commit := RenderCommit(store.CommitReport{
		Notice:    common.Warning("Saved locally only"),
		MirrorErr: &common.PersistenceError{Target: "ana.csv", Err: errors.New("read-only")},
	})
	assert.Contains(t, commit, "Saved locally only")
	assert.Contains(t, commit, "read-only")
}
