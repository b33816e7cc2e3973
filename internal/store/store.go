// Package store holds both users' ledgers and the state shared between them,
// and exposes the App facade used by the command-line front end.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/ingest"
	"github.com/Veraticus/gastos/internal/ledger"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
)

// Slot is one user's ledger and optional mirror file binding.
type Slot struct {
	Ledger *ledger.Ledger
	File   service.FileHandle
}

// Store keeps both slots resident. The active slot's ledger is mirrored into
// a working ledger that receives commits; it is copied back into the slot on
// every switch and snapshot. Store is not safe for concurrent use.
type Store struct {
	slots      map[model.UserID]*Slot
	working    *ledger.Ledger
	categories *model.CategorySet
	normalizer *ingest.Normalizer
	ids        service.IDGenerator
	active     model.UserID
	apiKey     string
	filter     []string
}

// New creates an empty store with the default categories. ids supplies
// identifiers for rows read from mirror files.
func New(ids service.IDGenerator) *Store {
	s := &Store{ids: ids}
	s.Reset()
	return s
}

// Reset drops every ledger, binding and setting.
func (s *Store) Reset() {
	s.categories = model.DefaultCategorySet()
	s.normalizer = ingest.NewNormalizer(s.categories, s.ids)
	s.slots = map[model.UserID]*Slot{
		model.User1: {Ledger: ledger.New(nil)},
		model.User2: {Ledger: ledger.New(nil)},
	}
	s.active = model.User1
	s.working = ledger.New(nil)
	s.apiKey = ""
	s.filter = s.categories.Labels()
}

// Active returns the active user.
func (s *Store) Active() model.UserID {
	return s.active
}

// Working returns the active user's ledger.
func (s *Store) Working() *ledger.Ledger {
	return s.working
}

// Ledger returns the ledger of id. For the active user this is the working
// ledger.
func (s *Store) Ledger(id model.UserID) (*ledger.Ledger, error) {
	if id == s.active {
		return s.working, nil
	}
	slot, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	return slot.Ledger, nil
}

// Binding returns the file bound to id, or nil.
func (s *Store) Binding(id model.UserID) (service.FileHandle, error) {
	slot, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	return slot.File, nil
}

// Categories returns the category set shared by both users.
func (s *Store) Categories() *model.CategorySet {
	return s.categories
}

// Normalizer returns the normalizer bound to the category set.
func (s *Store) Normalizer() *ingest.Normalizer {
	return s.normalizer
}

// SwitchUser makes id the active user. The outgoing working ledger is saved
// into its slot first. Switching to the active user does nothing.
func (s *Store) SwitchUser(id model.UserID) error {
	incoming, err := s.slot(id)
	if err != nil {
		return err
	}
	if id == s.active {
		return nil
	}

	s.syncWorking()
	s.active = id
	s.working = ledger.New(incoming.Ledger.Transactions())

	common.LogDebug("Switched user", common.Fields{"user": id, "transactions": s.working.Len()})
	return nil
}

// ConnectExternalFile binds handle to id and, when the file is not blank,
// replaces the slot's ledger with its content. It returns the parse result
// of the file.
func (s *Store) ConnectExternalFile(ctx context.Context, id model.UserID, handle service.FileHandle) (ingest.Result, error) {
	slot, err := s.slot(id)
	if err != nil {
		return ingest.Result{}, err
	}

	content, err := handle.Read(ctx)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("read %s: %w", handle.Name(), err)
	}
	slot.File = handle

	if strings.TrimSpace(content) == "" {
		return ingest.Result{}, nil
	}

	res := s.normalizer.ParseMirror(content)
	slot.Ledger.Replace(res.Transactions)
	if id == s.active {
		s.working = ledger.New(res.Transactions)
	}

	slog.Info("Loaded mirror file",
		"user", id,
		"file", handle.Name(),
		"transactions", len(res.Transactions),
		"skipped", res.Skipped)
	return res, nil
}

// BindExternalFile attaches handle to id without reading it. Used to
// restore a binding whose content already matches the ledger.
func (s *Store) BindExternalFile(id model.UserID, handle service.FileHandle) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	slot.File = handle
	return nil
}

// DisconnectExternalFile removes the binding of id. The ledger is kept.
func (s *Store) DisconnectExternalFile(id model.UserID) error {
	slot, err := s.slot(id)
	if err != nil {
		return err
	}
	slot.File = nil
	return nil
}

// ComparisonFilter returns the categories used by comparisons.
func (s *Store) ComparisonFilter() []string {
	return slices.Clone(s.filter)
}

// SetComparisonFilter replaces the comparison categories. Labels outside the
// category set are rejected.
func (s *Store) SetComparisonFilter(labels []string) error {
	for _, l := range labels {
		if !s.categories.Contains(l) {
			return fmt.Errorf("comparison filter: %w", model.ErrCategoryNotFound)
		}
	}
	s.filter = slices.Clone(labels)
	return nil
}

// APIKey returns the stored extraction service key.
func (s *Store) APIKey() string {
	return s.apiKey
}

// SetAPIKey stores the extraction service key.
func (s *Store) SetAPIKey(key string) {
	s.apiKey = key
}

// Snapshot captures the persisted state.
func (s *Store) Snapshot() Snapshot {
	s.syncWorking()
	users := make(map[model.UserID]SlotSnapshot, len(s.slots))
	for id, slot := range s.slots {
		users[id] = SlotSnapshot{Transactions: orEmpty(slot.Ledger.Transactions())}
	}
	return Snapshot{
		CurrentUser:      s.active,
		Users:            users,
		Transactions:     orEmpty(s.working.Transactions()),
		Categories:       s.categories.Labels(),
		APIKey:           s.apiKey,
		ComparisonFilter: &FilterSnapshot{Categories: orEmpty(slices.Clone(s.filter))},
	}
}

// Restore replaces the state with a decoded snapshot in the current format.
// Default categories are merged in, an unknown current user falls back to
// user1 and an empty comparison filter selects every category.
func (s *Store) Restore(snap Snapshot) {
	labels := snap.Categories
	if len(labels) == 0 {
		labels = model.DefaultCategories()
	}
	*s.categories = *model.NewCategorySet(labels)
	s.categories.Merge(model.DefaultCategories())

	for _, id := range model.Users() {
		s.slots[id].Ledger.Replace(snap.Users[id].Transactions)
	}

	s.active = model.User1
	if id, err := model.ParseUserID(string(snap.CurrentUser)); err == nil {
		s.active = id
	}
	s.working = ledger.New(s.slots[s.active].Ledger.Transactions())
	s.apiKey = snap.APIKey

	s.filter = nil
	if snap.ComparisonFilter != nil {
		s.filter = slices.Clone(snap.ComparisonFilter.Categories)
	}
	if len(s.filter) == 0 {
		s.filter = s.categories.Labels()
	}
}

func (s *Store) syncWorking() {
	s.slots[s.active].Ledger.Replace(s.working.Transactions())
}

func (s *Store) slot(id model.UserID) (*Slot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", common.ErrUnknownUser, id)
	}
	return slot, nil
}
