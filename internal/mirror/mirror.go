// Package mirror renders a ledger in the delimited-text format users keep in
// their own files, and binds those files as service.FileHandle values.
package mirror

import (
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// Header is the first line of every mirror file.
const Header = "Fecha,Concepto,Cantidad,Categoria,Descripcion"

// Render writes the full mirror text for txs: the header, then one row per
// transaction joined by "\n" with no trailing newline. Concept and
// description are quoted with internal quotes doubled.
func Render(txs []model.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, t := range txs {
		b.WriteByte('\n')
		b.WriteString(t.Date)
		b.WriteByte(',')
		b.WriteString(quote(t.Concept))
		b.WriteByte(',')
		b.WriteString(t.Amount.String())
		b.WriteByte(',')
		b.WriteString(t.Category)
		b.WriteByte(',')
		b.WriteString(quote(t.Description))
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
