package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/service"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare array", raw: `[{"a":1}]`, want: `[{"a":1}]`},
		{name: "json fence", raw: "```json\n[1,2]\n```", want: "[1,2]"},
		{name: "plain fence", raw: "```\n[]\n```", want: "[]"},
		{name: "chatter around", raw: "Aquí tienes:\n[1]\nEspero que ayude", want: "[1]"},
		{name: "whitespace", raw: "  \n[ ]\n ", want: "[ ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw))
		})
	}
}

func TestParseRecords(t *testing.T) {
	records, err := parseRecords(`[
		{"date":"2023-10-25","concept":"Mercadona","amount":55.20,"category":"Supermercado"},
		{"date":"25/10/2023","concept":"Bar","amount":"3,50","category":"Ocio"}
	]`)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, service.RawAmount("55.20"), records[0].Amount)
	assert.Equal(t, service.RawAmount("3,50"), records[1].Amount)

	_, err = parseRecords("")
	require.Error(t, err)

	_, err = parseRecords(`{"date":"2023-10-25"}`)
	require.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	long := strings.Repeat("á", maxPromptText+50)
	prompt := buildPrompt([]string{"Luz", "Otros"}, long)

	assert.Contains(t, prompt, "Luz, Otros")
	assert.Contains(t, prompt, "usa 'Otros'")
	assert.Contains(t, prompt, "TEXTO A ANALIZAR")
	assert.Equal(t, maxPromptText, strings.Count(prompt, "á"))
}

func TestIsTextDocument(t *testing.T) {
	assert.True(t, isTextDocument(service.Document{MIMEType: "text/csv"}))
	assert.True(t, isTextDocument(service.Document{MIMEType: "application/json"}))
	assert.True(t, isTextDocument(service.Document{Data: []byte("hola")}))
	assert.False(t, isTextDocument(service.Document{Data: []byte{0xff, 0xfe, 0xfd}}))
	assert.False(t, isTextDocument(service.Document{MIMEType: "image/png"}))
}
