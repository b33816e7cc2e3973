package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/testutil"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(model.DefaultCategorySet(), &testutil.SequenceIDs{})
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "canonical", raw: "2023-12-25", want: "2023-12-25"},
		{name: "quoted canonical", raw: `"2023-12-25"`, want: "2023-12-25"},
		{name: "day first", raw: "25/12/2023", want: "2023-12-25"},
		{name: "day first single digits", raw: "5/3/2024", want: "2024-03-05"},
		{name: "generic fallback", raw: "Dec 25, 2023", want: "2023-12-25"},
		{name: "generic with time", raw: "2024-01-15T10:30:00Z", want: "2024-01-15"},
		{name: "impossible calendar date", raw: "2023-02-30", wantErr: true},
		{name: "impossible day first", raw: "31/02/2024", wantErr: true},
		{name: "garbage", raw: "yesterday-ish", wantErr: true},
		{name: "empty", raw: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.raw)
			if tt.wantErr {
				var pe *common.ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "date", pe.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "dot decimal", raw: "55.20", want: "55.2"},
		{name: "comma decimal", raw: "55,20", want: "55.2"},
		{name: "quoted", raw: `"12,5"`, want: "12.5"},
		{name: "dot wins over comma", raw: "1,234.50", wantErr: true},
		{name: "integer", raw: "7", want: "7"},
		{name: "negative", raw: "-3.00", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.raw)
			if tt.wantErr {
				var pe *common.ParseError
				require.ErrorAs(t, err, &pe)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(testutil.Dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	t.Run("unknown category falls back", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: " Bar ", Amount: "3", Category: "Bebidas"})
		require.NoError(t, err)
		assert.Equal(t, model.FallbackCategory, tx.Category)
		assert.Equal(t, "Bar", tx.Concept)
		assert.Equal(t, "", tx.Description)
	})

	t.Run("known category kept", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: "Luz", Amount: "40", Category: "Luz"})
		require.NoError(t, err)
		assert.Equal(t, "Luz", tx.Category)
	})

	t.Run("empty concept allowed", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: `""`, Amount: "1"})
		require.NoError(t, err)
		assert.Equal(t, "", tx.Concept)
	})

	t.Run("quoted concept unescaped", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: `"Bar ""El Sol"""`, Amount: "1"})
		require.NoError(t, err)
		assert.Equal(t, `Bar "El Sol"`, tx.Concept)
	})

	t.Run("fresh ids", func(t *testing.T) {
		a, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: "a", Amount: "1"})
		require.NoError(t, err)
		b, err := n.Normalize(RawRecord{Date: "2024-01-02", Concept: "a", Amount: "1"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	first, err := n.Normalize(RawRecord{
		Date:        "25/12/2023",
		Concept:     `"Mercadona, S.A."`,
		Amount:      "55,20",
		Category:    "Supermercado",
		Description: "compra semanal",
	})
	require.NoError(t, err)

	second, err := n.Normalize(RawRecord{
		Date:        first.Date,
		Concept:     first.Concept,
		Amount:      first.Amount.String(),
		Category:    first.Category,
		Description: first.Description,
	})
	require.NoError(t, err)

	assert.Equal(t, first.Date, second.Date)
	assert.Equal(t, first.Concept, second.Concept)
	assert.True(t, first.Amount.Equal(second.Amount))
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Description, second.Description)
}

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.NewID(), g.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
