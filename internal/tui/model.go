// Package tui implements the interactive review of staged expenses.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/staging"
	"github.com/Veraticus/gastos/internal/store"
	"github.com/Veraticus/gastos/internal/tui/themes"
)

// Reviewer is the part of the application the review screen drives.
type Reviewer interface {
	Staged() []model.Transaction
	EditStaged(row int, e staging.Edit) error
	InsertStagedRow() int
	RemoveStagedRow(row int) error
	DiscardStaged()
	CommitStaged(ctx context.Context) (store.CommitReport, error)
}

// Result is how a review session ended.
type Result struct {
	Err       error
	Report    store.CommitReport
	Committed bool
}

var columns = []struct {
	title string
	field string
	width int
}{
	{title: "Fecha", field: staging.FieldDate, width: 12},
	{title: "Concepto", field: staging.FieldConcept, width: 26},
	{title: "Cantidad", field: staging.FieldAmount, width: 10},
	{title: "Categoría", field: staging.FieldCategory, width: 14},
	{title: "Descripción", field: staging.FieldDescription, width: 22},
}

// Model holds the review screen state.
type Model struct {
	ctx      context.Context
	app      Reviewer
	theme    themes.Theme
	keymap   KeyMap
	config   Config
	notice   common.Notice
	result   Result
	rows     []model.Transaction
	table    table.Model
	input    textinput.Model
	help     help.Model
	col      int
	width    int
	height   int
	editing  bool
	quitting bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, app Reviewer, cfg Config) Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.title, Width: c.width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(tableHeight(cfg.Height)),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	styles.Cell = cfg.Theme.Cell
	t.SetStyles(styles)

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 200

	m := Model{
		ctx:    ctx,
		app:    app,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		config: cfg,
		table:  t,
		input:  input,
		help:   help.New(),
		width:  cfg.Width,
		height: cfg.Height,
	}
	m.refresh()
	return m
}

func tableHeight(total int) int {
	h := total - 8
	if h < 3 {
		h = 3
	}
	return h
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(tableHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case committedMsg:
		return m.handleCommitted(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.app.DiscardStaged()
			m.quitting = true
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.app.DiscardStaged()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Commit):
		return m, m.commit()

	case key.Matches(msg, m.keymap.Left):
		if m.col > 0 {
			m.col--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Right):
		if m.col < len(columns)-1 {
			m.col++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Add):
		row := m.app.InsertStagedRow()
		m.refresh()
		m.table.SetCursor(row)
		m.col = 0
		m.notice = common.Info("Row %d added", row+1)
		return m, nil

	case key.Matches(msg, m.keymap.Delete):
		if len(m.rows) == 0 {
			return m, nil
		}
		row := m.table.Cursor()
		if err := m.app.RemoveStagedRow(row); err != nil {
			m.notice = common.NoticeFor(err)
			return m, nil
		}
		m.refresh()
		m.notice = common.Info("Row %d removed", row+1)
		return m, nil

	case key.Matches(msg, m.keymap.Edit):
		if len(m.rows) == 0 {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(cellValue(m.rows[m.table.Cursor()], columns[m.col].field))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Cancel):
		m.stopEditing()
		return m, nil

	case key.Matches(msg, m.keymap.Confirm):
		row := m.table.Cursor()
		field := columns[m.col].field
		edit, err := staging.ParseEdit(field, m.input.Value())
		if err == nil {
			err = m.app.EditStaged(row, edit)
		}
		if err != nil {
			m.notice = common.NoticeFor(err)
			return m, nil
		}
		m.stopEditing()
		m.refresh()
		m.notice = common.Info("Row %d updated", row+1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) commit() tea.Cmd {
	ctx, app := m.ctx, m.app
	return func() tea.Msg {
		report, err := app.CommitStaged(ctx)
		return committedMsg{report: report, err: err}
	}
}

func (m Model) handleCommitted(msg committedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, common.ErrEmptyStaging) {
		m.notice = msg.report.Notice
		return m, nil
	}
	m.result = Result{Report: msg.report, Err: msg.err, Committed: msg.err == nil}
	m.quitting = true
	return m, tea.Quit
}

// refresh reloads the staged rows into the table.
func (m *Model) refresh() {
	m.rows = m.app.Staged()
	rows := make([]table.Row, len(m.rows))
	for i, tx := range m.rows {
		row := make(table.Row, len(columns))
		for j, c := range columns {
			row[j] = cellValue(tx, c.field)
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func cellValue(tx model.Transaction, field string) string {
	switch field {
	case staging.FieldDate:
		return tx.Date
	case staging.FieldConcept:
		return tx.Concept
	case staging.FieldAmount:
		return tx.Amount.String()
	case staging.FieldCategory:
		return tx.Category
	case staging.FieldDescription:
		return tx.Description
	default:
		return ""
	}
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.config.Title))
	b.WriteString(m.theme.Subtle.Render(fmt.Sprintf("  %d rows", len(m.rows))))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.theme.Subtle.Render("Nothing staged. Press a to add a row."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.theme.Box.Render(m.table.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFieldBar())
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if s := m.renderNotice(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderFieldBar() string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		if i == m.col {
			parts[i] = m.theme.FocusedField.Render(c.title)
		} else {
			parts[i] = m.theme.Subtle.Render(c.title)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderNotice() string {
	if m.notice.Message == "" {
		return ""
	}
	switch m.notice.Severity {
	case common.SeverityError:
		return m.theme.StatusError.Render(m.notice.Message)
	case common.SeverityWarning:
		return m.theme.StatusWarning.Render(m.notice.Message)
	default:
		return m.theme.StatusInfo.Render(m.notice.Message)
	}
}

// Run shows the review screen until the user saves or discards the staged
// rows. Discarding clears the staging buffer.
func Run(ctx context.Context, app Reviewer, opts ...Option) (Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := tea.NewProgram(newModel(ctx, app, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("review screen failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m.result, nil
}
