package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/aggregate"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/store"
)

const barWidth = 30

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

// RenderStaged renders the staging buffer with row numbers starting at 1.
func RenderStaged(txs []model.Transaction) string {
	t := newTable("#", "Fecha", "Concepto", "Cantidad", "Categoría", "Descripción")
	for i, tx := range txs {
		t.Row(strconv.Itoa(i+1), tx.Date, tx.Concept, FormatAmount(tx.Amount), tx.Category, tx.Description)
	}
	return t.String()
}

// RenderLedger renders committed transactions with their ids.
func RenderLedger(txs []model.Transaction) string {
	t := newTable("ID", "Fecha", "Concepto", "Cantidad", "Categoría", "Descripción")
	for _, tx := range txs {
		t.Row(shortID(tx.ID), tx.Date, tx.Concept, FormatAmount(tx.Amount), tx.Category, tx.Description)
	}
	return t.String()
}

// shortID keeps ids readable in tables. Commands accept any unique prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// bar draws a horizontal bar proportional to v/maxV.
func bar(v, maxV decimal.Decimal, width int) string {
	if maxV.Sign() <= 0 || v.Sign() <= 0 {
		return ""
	}
	n := int(v.Div(maxV).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// RenderView renders the dashboard for one user.
func RenderView(user model.UserID, v aggregate.View) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("%s · %s", user.Label(), v.Label)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s   %s %d   %s %s (%s)\n\n",
		BoldStyle.Render("Total:"), FormatAmount(v.Total),
		BoldStyle.Render("Movimientos:"), v.Count,
		BoldStyle.Render("Top:"), v.TopCategory.Category, FormatAmount(v.TopCategory.Amount))

	sorted := aggregate.SortedTotals(v.Totals)
	if len(sorted) > 0 {
		b.WriteString(BoldStyle.Render(ChartIcon + " Por categoría"))
		b.WriteString("\n")
		maxV := sorted[0].Amount
		for _, ca := range sorted {
			fmt.Fprintf(&b, "  %-14s %12s  %s\n",
				ca.Category, FormatAmount(ca.Amount),
				lipgloss.NewStyle().Foreground(PrimaryColor).Render(bar(ca.Amount, maxV, barWidth)))
		}
		b.WriteString("\n")
	}

	if len(v.Top) > 0 {
		b.WriteString(BoldStyle.Render("Mayores gastos"))
		b.WriteString("\n")
		t := newTable("Fecha", "Concepto", "Categoría", "Cantidad")
		for _, tx := range v.Top {
			t.Row(tx.Date, tx.Concept, tx.Category, FormatAmount(tx.Amount))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	return b.String()
}

// RenderTrends renders monthly totals, oldest first. A non-empty category
// restricts the series to that category.
func RenderTrends(series map[string]map[string]decimal.Decimal, months []string, category string) string {
	ordered := slices.Clone(months)
	slices.Sort(ordered)

	values := make([]decimal.Decimal, len(ordered))
	maxV := decimal.Zero
	for i, m := range ordered {
		sum := decimal.Zero
		for cat, amt := range series[m] {
			if category == "" || cat == category {
				sum = sum.Add(amt)
			}
		}
		values[i] = sum
		if sum.GreaterThan(maxV) {
			maxV = sum
		}
	}

	var b strings.Builder
	title := "Evolución mensual"
	if category != "" {
		title += " · " + category
	}
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")
	for i, m := range ordered {
		fmt.Fprintf(&b, "  %-16s %12s  %s\n",
			aggregate.MonthLabel(m), FormatAmount(values[i]),
			lipgloss.NewStyle().Foreground(PrimaryColor).Render(bar(values[i], maxV, barWidth)))
	}
	return b.String()
}

// RenderComparison renders both users side by side over the filter.
func RenderComparison(c aggregate.Comparison, filter []string) string {
	var b strings.Builder
	b.WriteString(FormatTitle(UsersIcon + " Comparativa"))
	b.WriteString("\n")

	if len(filter) == 0 {
		b.WriteString(SubtleStyle.Render("No categories selected"))
		b.WriteString("\n")
		return b.String()
	}

	u1 := lipgloss.NewStyle().Foreground(UserColors[0])
	u2 := lipgloss.NewStyle().Foreground(UserColors[1])

	t := newTable("Categoría", model.User1.Label(), model.User2.Label())
	for _, cat := range filter {
		t.Row(cat, u1.Render(FormatAmount(c.PerCategoryA[cat])), u2.Render(FormatAmount(c.PerCategoryB[cat])))
	}
	t.Row(BoldStyle.Render("Total"), u1.Render(FormatAmount(c.TotalA)), u2.Render(FormatAmount(c.TotalB)))
	b.WriteString(t.String())
	b.WriteString("\n")

	if user, ok := aggregate.Payer(c); ok {
		fmt.Fprintf(&b, "%s spends %s more\n", user.Label(), FormatAmount(c.Diff.Abs()))
	} else {
		b.WriteString("Both spend the same\n")
	}
	return b.String()
}

// RenderIngest summarizes one ingested source.
func RenderIngest(name string, r store.IngestReport) string {
	var b strings.Builder
	b.WriteString(FormatNotice(r.Notice))
	if name != "" {
		b.WriteString(SubtleStyle.Render(" (" + name + ")"))
	}
	b.WriteString("\n")
	for _, err := range r.Errors {
		b.WriteString("  " + SubtleStyle.Render(err.Error()) + "\n")
	}
	for _, h := range r.Hints {
		fmt.Fprintf(&b, "  %s\n", FormatWarning(fmt.Sprintf(
			"%q on %s looks like %q on %s", h.Staged.Concept, h.Staged.Date, h.Existing.Concept, h.Existing.Date)))
	}
	return b.String()
}

// RenderCommit summarizes a commit.
func RenderCommit(r store.CommitReport) string {
	out := FormatNotice(r.Notice)
	if r.MirrorErr != nil {
		out += "\n  " + SubtleStyle.Render(r.MirrorErr.Error())
	}
	return out
}
