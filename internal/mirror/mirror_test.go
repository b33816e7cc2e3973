package mirror

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/ingest"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/testutil"
)

func TestRender(t *testing.T) {
	txs := []model.Transaction{
		testutil.Tx("1", "2024-01-05", `Bar "El Sol"`, "3.50", "Ocio"),
		testutil.Tx("2", "2024-01-04", "Mercadona, S.A.", "55.2", "Supermercado"),
	}
	txs[0].Description = "cafe, tostada"

	want := "Fecha,Concepto,Cantidad,Categoria,Descripcion\n" +
		`2024-01-05,"Bar ""El Sol""",3.5,Ocio,"cafe, tostada"` + "\n" +
		`2024-01-04,"Mercadona, S.A.",55.2,Supermercado,""`
	assert.Equal(t, want, Render(txs))
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, Header, Render(nil))
}

func TestRender_ParsesBack(t *testing.T) {
	txs := []model.Transaction{
		testutil.Tx("1", "2024-01-05", `Bar "El Sol"`, "3.50", "Ocio"),
		testutil.Tx("2", "2024-01-04", "Mercadona, S.A.", "55.2", "Supermercado"),
	}
	txs[1].Description = "semanal"

	n := ingest.NewNormalizer(model.DefaultCategorySet(), &testutil.SequenceIDs{})
	res := n.ParseMirror(Render(txs))
	require.Len(t, res.Transactions, 2)
	for i, got := range res.Transactions {
		assert.Equal(t, txs[i].Date, got.Date)
		assert.Equal(t, txs[i].Concept, got.Concept)
		assert.True(t, txs[i].Amount.Equal(got.Amount))
		assert.Equal(t, txs[i].Category, got.Category)
		assert.Equal(t, txs[i].Description, got.Description)
	}
}

func TestFile_ReadWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gastos.csv")

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	content, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, f.Write(ctx, "a\nb"))
	content, err = f.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", content)

	require.NoError(t, f.Write(ctx, "c"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))
}

func TestFile_WriteFailure(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "missing-dir", "gastos.csv"))
	require.NoError(t, err)
	assert.Error(t, f.Write(context.Background(), "x"))
}
