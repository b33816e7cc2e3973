package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/testutil"
)

func TestBuffer_StageReplaces(t *testing.T) {
	b := NewBuffer(&testutil.SequenceIDs{})
	b.Stage([]model.Transaction{testutil.Tx("a", "2024-01-01", "Pan", "1", "Comida")})

	input := []model.Transaction{
		testutil.Tx("b", "2024-01-02", "Luz", "40", "Luz"),
		testutil.Tx("c", "2024-01-03", "Agua", "20", "Agua"),
	}
	b.Stage(input)
	input[0].Concept = "mutated"

	require.Equal(t, 2, b.Len())
	row, err := b.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Luz", row.Concept)
}

func TestBuffer_Apply(t *testing.T) {
	b := NewBuffer(&testutil.SequenceIDs{})
	b.Stage([]model.Transaction{testutil.Tx("a", "2024-01-01", "Pan", "1", "Comida")})

	edits := []Edit{
		SetDate{Value: "not-a-date"},
		SetConcept{Value: "Panaderia"},
		SetAmount{Value: testutil.Dec("-2")},
		SetCategory{Value: "Inventada"},
		SetDescription{Value: "nota"},
	}
	for _, e := range edits {
		require.NoError(t, b.Apply(0, e))
	}

	row, err := b.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "a", row.ID)
	assert.Equal(t, "not-a-date", row.Date)
	assert.Equal(t, "Panaderia", row.Concept)
	assert.True(t, row.Amount.Equal(testutil.Dec("-2")))
	assert.Equal(t, "Inventada", row.Category)
	assert.Equal(t, "nota", row.Description)
}

func TestBuffer_OutOfRange(t *testing.T) {
	b := NewBuffer(&testutil.SequenceIDs{})

	assert.ErrorIs(t, b.Apply(0, SetConcept{Value: "x"}), common.ErrRowOutOfRange)
	assert.ErrorIs(t, b.RemoveRow(-1), common.ErrRowOutOfRange)
	_, err := b.Row(3)
	assert.ErrorIs(t, err, common.ErrRowOutOfRange)
}

func TestBuffer_InsertAndRemove(t *testing.T) {
	b := NewBuffer(&testutil.SequenceIDs{})
	b.Stage([]model.Transaction{testutil.Tx("a", "2024-01-01", "Pan", "1", "Comida")})

	idx := b.InsertRow("2024-05-01", "Comida")
	assert.Equal(t, 1, idx)

	row, err := b.Row(idx)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", row.ID)
	assert.Equal(t, "2024-05-01", row.Date)
	assert.Equal(t, NewRowConcept, row.Concept)
	assert.True(t, row.Amount.IsZero())
	assert.Equal(t, "Comida", row.Category)
	assert.Equal(t, "", row.Description)

	require.NoError(t, b.RemoveRow(0))
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "tx-1", b.Rows()[0].ID)

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Rows())
}

func TestParseEdit(t *testing.T) {
	tests := []struct {
		field   string
		value   string
		want    Edit
		wantErr bool
	}{
		{field: "date", value: " 2024-01-01 ", want: SetDate{Value: "2024-01-01"}},
		{field: "Concepto", value: "Bar", want: SetConcept{Value: "Bar"}},
		{field: "category", value: "Luz", want: SetCategory{Value: "Luz"}},
		{field: "description", value: "n", want: SetDescription{Value: "n"}},
		{field: "amount", value: "x", wantErr: true},
		{field: "colour", value: "red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			got, err := ParseEdit(tt.field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEdit_Amount(t *testing.T) {
	for in, want := range map[string]string{"12,5": "12.5", "0": "0", "-3": "-3"} {
		e, err := ParseEdit("amount", in)
		require.NoError(t, err)
		amount, ok := e.(SetAmount)
		require.True(t, ok)
		assert.True(t, amount.Value.Equal(testutil.Dec(want)), in)
		assert.Equal(t, FieldAmount, e.Field())
	}
}
