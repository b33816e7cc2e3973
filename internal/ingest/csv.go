package ingest

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/service"
)

// Header synonyms, matched as case-insensitive substrings.
var (
	dateHeaders        = []string{"fecha", "date"}
	conceptHeaders     = []string{"concepto", "concept", "description"}
	amountHeaders      = []string{"cantidad", "amount"}
	categoryHeaders    = []string{"categoria", "category"}
	descriptionHeaders = []string{"descripcion", "notes"}
)

// columns maps canonical fields to header positions; -1 means absent.
type columns struct {
	date, concept, amount, category, description int
}

func (c columns) required() int {
	return max(c.date, c.concept, c.amount) + 1
}

// ParseCSV reads a delimited-text export with a header row. A missing date,
// concept or amount column is a *common.SchemaError and yields nothing.
func (n *Normalizer) ParseCSV(text string) (Result, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return Result{}, &common.SchemaError{Reason: "the CSV is empty or only contains a header"}
	}

	cols, err := detectColumns(lines[0])
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, line := range lines[1:] {
		row := i + 2
		values := SplitFields(line)
		if len(values) < cols.required() {
			res.skip(&common.ParseError{Row: row, Field: "row", Value: line, Reason: "not enough fields"})
			continue
		}

		t, err := n.Normalize(RawRecord{
			Date:        values[cols.date],
			Concept:     values[cols.concept],
			Amount:      values[cols.amount],
			Category:    field(values, cols.category),
			Description: field(values, cols.description),
		})
		if err != nil {
			res.skip(withRow(err, row))
			continue
		}
		res.add(t)
	}

	slog.Debug("Parsed CSV",
		"rows", len(lines)-1,
		"accepted", len(res.Transactions),
		"skipped", res.Skipped)

	return res, nil
}

// FromExtracted maps rows returned by the extraction service.
func (n *Normalizer) FromExtracted(records []service.ExtractedRecord) Result {
	var res Result
	for i, r := range records {
		t, err := n.Normalize(RawRecord{
			Date:        r.Date,
			Concept:     r.Concept,
			Amount:      string(r.Amount),
			Category:    r.Category,
			Description: r.Memo,
		})
		if err != nil {
			res.skip(withRow(err, i+1))
			continue
		}
		res.add(t)
	}
	return res
}

// ParseMirror reads the persisted ledger format: a header line followed by
// positional date, concept, amount, category, description columns. Category
// labels are kept as written, so a label removed from the set survives a
// reconnect and the next rewrite of the file.
func (n *Normalizer) ParseMirror(text string) Result {
	var res Result
	lines := splitLines(text)
	if len(lines) < 2 {
		return res
	}

	for i, line := range lines[1:] {
		row := i + 2
		values := SplitFields(line)
		if len(values) < 5 {
			res.skip(&common.ParseError{Row: row, Field: "row", Value: line, Reason: "expected 5 fields"})
			continue
		}
		t, err := n.normalizeKeepingCategory(RawRecord{
			Date:        values[0],
			Concept:     values[1],
			Amount:      values[2],
			Category:    values[3],
			Description: values[4],
		})
		if err != nil {
			res.skip(withRow(err, row))
			continue
		}
		res.add(t)
	}
	return res
}

func detectColumns(header string) (columns, error) {
	names := SplitFields(header)
	for i := range names {
		names[i] = strings.ToLower(clean(names[i]))
	}

	cols := columns{
		date:        findColumn(names, dateHeaders),
		concept:     findColumn(names, conceptHeaders),
		amount:      findColumn(names, amountHeaders),
		category:    findColumn(names, categoryHeaders),
		description: findColumn(names, descriptionHeaders),
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.concept < 0 {
		missing = append(missing, "concept")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, &common.SchemaError{
			Reason:  "the CSV must contain date, concept and amount columns",
			Missing: missing,
		}
	}
	return cols, nil
}

func findColumn(names, synonyms []string) int {
	for i, name := range names {
		for _, syn := range synonyms {
			if strings.Contains(name, syn) {
				return i
			}
		}
	}
	return -1
}

// SplitFields splits a line on commas that are outside double-quoted spans.
// Quotes are kept so callers can tell quoted from bare values.
func SplitFields(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(fields, b.String())
}

func splitLines(text string) []string {
	raw := strings.Split(strings.TrimSpace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func field(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

func withRow(err error, row int) error {
	if pe, ok := err.(*common.ParseError); ok {
		cp := *pe
		cp.Row = row
		return &cp
	}
	return err
}
