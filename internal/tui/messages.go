package tui

import "github.com/Veraticus/gastos/internal/store"

// committedMsg carries the outcome of a commit back into the update loop.
type committedMsg struct {
	err    error
	report store.CommitReport
}
