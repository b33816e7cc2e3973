package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
)

// maxPromptText caps the statement text sent inline with the prompt.
const maxPromptText = 10000

const promptTemplate = `Actúa como un experto contable. Analiza el siguiente extracto bancario.
Tu tarea es identificar cada transacción de gasto. Ignora ingresos o saldos.

Lista de Categorías permitidas: %s.

Para cada gasto, extrae:
- fecha (Formato YYYY-MM-DD)
- concepto (Nombre del comercio o descripción corta del banco)
- cantidad (Número positivo decimal. Usa punto para decimales)
- categoria (Elige la más adecuada de la lista. Si duda, usa '%s')

Devuelve SOLAMENTE un array JSON válido, sin markdown, sin explicaciones.
Formato: [{"date": "2023-10-25", "concept": "Mercadona", "amount": 55.20, "category": "Supermercado"}, ...]
`

// buildPrompt renders the extraction instructions. When text is non-empty
// it is appended, truncated to maxPromptText runes.
func buildPrompt(categories []string, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptTemplate, strings.Join(categories, ", "), model.FallbackCategory)
	if text != "" {
		b.WriteString("\nTEXTO A ANALIZAR:\n")
		b.WriteString(truncateRunes(text, maxPromptText))
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// isTextDocument reports whether the document can be sent as prompt text
// rather than as an inline attachment.
func isTextDocument(doc service.Document) bool {
	mime := strings.ToLower(doc.MIMEType)
	switch {
	case strings.HasPrefix(mime, "text/"),
		mime == "application/csv",
		mime == "application/json":
		return true
	case mime == "":
		return utf8.Valid(doc.Data)
	default:
		return false
	}
}

// cleanModelJSON strips markdown fences and any chatter around the JSON
// array the model was asked to return.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// parseRecords decodes the model reply into extracted rows.
func parseRecords(raw string) ([]service.ExtractedRecord, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	var records []service.ExtractedRecord
	if err := json.Unmarshal([]byte(clean), &records); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	return records, nil
}
