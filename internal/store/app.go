package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/gastos/internal/aggregate"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/ingest"
	"github.com/Veraticus/gastos/internal/ledger"
	"github.com/Veraticus/gastos/internal/mirror"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/ofx"
	"github.com/Veraticus/gastos/internal/service"
	"github.com/Veraticus/gastos/internal/staging"
)

// Kind names an ingestion source format.
type Kind string

// Supported source kinds.
const (
	KindCSV      Kind = "csv"
	KindDocument Kind = "document"
	KindOFX      Kind = "ofx"
	KindLedger   Kind = "ledger"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindCSV, KindDocument, KindOFX, KindLedger:
		return k, nil
	default:
		return "", common.NewUserError(
			fmt.Sprintf("Unknown source kind %q (expected csv, document, ofx or ledger)", s),
			common.ErrInvalidConfig)
	}
}

// Source is one input handed to Ingest.
type Source struct {
	Kind     Kind
	Name     string
	MIMEType string
	Data     []byte
}

// IngestReport describes a staged ingestion.
type IngestReport struct {
	Errors  []error
	Hints   []ledger.Hint
	Notice  common.Notice
	Staged  int
	Skipped int
}

// CommitReport describes a commit. MirrorErr is set when the durable state
// was saved but the bound mirror file could not be written.
type CommitReport struct {
	MirrorErr error
	Notice    common.Notice
	ledger.CommitResult
	Mirrored bool
}

// Options configures an App.
type Options struct {
	KV        service.KVStore
	Extractor service.Extractor
	IDs       service.IDGenerator
	Now       func() time.Time
}

// App is the facade over the store, the staging buffer and the
// collaborators. One mutex serializes every operation, so a user switch
// never interleaves with a commit and an extraction holds the lock through
// all of its retries.
type App struct {
	kv        service.KVStore
	extractor service.Extractor
	now       func() time.Time
	store     *Store
	staged    *staging.Buffer
	ofx       *ofx.Reader
	mu        sync.Mutex
}

// NewApp creates an App and loads the persisted state.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	if opts.KV == nil {
		return nil, fmt.Errorf("%w: key-value store", common.ErrMissingConfig)
	}
	if opts.IDs == nil {
		opts.IDs = ingest.UUIDGenerator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &App{
		kv:        opts.KV,
		extractor: opts.Extractor,
		now:       opts.Now,
		store:     New(opts.IDs),
		staged:    staging.NewBuffer(opts.IDs),
		ofx:       ofx.NewReader(),
	}
	if err := a.load(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// SetExtractor replaces the extraction service, e.g. after the API key
// changes.
func (a *App) SetExtractor(e service.Extractor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extractor = e
}

func (a *App) load(ctx context.Context) error {
	data, ok, err := a.kv.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !ok || strings.TrimSpace(data) == "" {
		return nil
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}

	if snap.Legacy() {
		slog.Info("Migrating data to multi-user format", "transactions", len(snap.Transactions))
		a.store.Restore(migrateLegacy(snap))
		return a.save(ctx)
	}

	a.store.Restore(snap)
	slog.Debug("Loaded state",
		"user", a.store.Active(),
		"transactions", a.store.Working().Len(),
		"categories", a.store.Categories().Len())
	return nil
}

func (a *App) save(ctx context.Context) error {
	data, err := a.store.Snapshot().Encode()
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, StateKey, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Ingest parses src and, on success, replaces the staging buffer with the
// result. Schema and extraction failures leave the buffer untouched.
func (a *App) Ingest(ctx context.Context, src Source) (IngestReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.parse(ctx, src)
	if err != nil {
		return IngestReport{Notice: common.NoticeFor(err)}, err
	}

	a.staged.Stage(res.Transactions)
	report := IngestReport{
		Staged:  len(res.Transactions),
		Skipped: res.Skipped,
		Errors:  res.Errors,
		Hints:   ledger.NearDuplicates(res.Transactions, a.store.Working().Transactions()),
	}
	report.Notice = common.Info("Loaded %d expenses from %s", report.Staged, src.Name)
	if report.Staged == 0 {
		report.Notice = common.Warning("No expenses found in %s", src.Name)
	}

	slog.Info("Staged transactions",
		"source", src.Name,
		"kind", src.Kind,
		"staged", report.Staged,
		"skipped", report.Skipped,
		"hints", len(report.Hints))
	return report, nil
}

func (a *App) parse(ctx context.Context, src Source) (ingest.Result, error) {
	n := a.store.Normalizer()
	switch src.Kind {
	case KindCSV:
		return n.ParseCSV(string(src.Data))
	case KindLedger:
		return n.ParseMirror(string(src.Data)), nil
	case KindOFX:
		records, err := a.ofx.Read(ctx, strings.NewReader(string(src.Data)))
		if err != nil {
			return ingest.Result{}, err
		}
		return n.FromExtracted(records), nil
	case KindDocument:
		if a.extractor == nil {
			return ingest.Result{}, common.NewUserError(
				"No extraction service configured; set an API key first", common.ErrMissingConfig)
		}
		records, err := a.extractor.Extract(ctx, service.Document{
			Name:     src.Name,
			MIMEType: src.MIMEType,
			Data:     src.Data,
		}, a.store.Categories().Labels())
		if err != nil {
			var callErr *common.ExternalCallError
			if !errors.As(err, &callErr) {
				err = &common.ExternalCallError{Op: "extract " + src.Name, Err: err}
			}
			return ingest.Result{}, err
		}
		return n.FromExtracted(records), nil
	default:
		_, err := ParseKind(string(src.Kind))
		return ingest.Result{}, err
	}
}

// Staged returns a copy of the staging buffer.
func (a *App) Staged() []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staged.Rows()
}

// EditStaged edits one staged row.
func (a *App) EditStaged(row int, e staging.Edit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staged.Apply(row, e)
}

// InsertStagedRow appends a placeholder row dated today and returns its index.
func (a *App) InsertStagedRow() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staged.InsertRow(a.now().Format(model.DateLayout), a.store.Categories().First())
}

// RemoveStagedRow deletes one staged row.
func (a *App) RemoveStagedRow(row int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staged.RemoveRow(row)
}

// DiscardStaged empties the staging buffer.
func (a *App) DiscardStaged() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.staged.Clear()
}

// CommitStaged merges the staging buffer into the active user's ledger,
// saves the state and rewrites the bound mirror file. Rows whose category is
// not in the category set count as invalid. When the state cannot be saved
// the ledger and the buffer are restored and the error is returned. A mirror
// write failure is reported in CommitReport.MirrorErr and is not returned as
// an error; otherwise the buffer is cleared.
func (a *App) CommitStaged(ctx context.Context) (CommitReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.staged.Len() == 0 {
		return CommitReport{Notice: common.NoticeFor(common.ErrEmptyStaging)}, common.ErrEmptyStaging
	}

	rows := a.staged.Rows()
	working := a.store.Working()
	before := working.Transactions()

	report := CommitReport{CommitResult: working.Merge(rows, a.store.Categories())}
	slog.Info("Committed staged transactions",
		"user", a.store.Active(),
		"accepted", report.Accepted,
		"duplicates", report.Duplicates,
		"invalid", report.Invalid)

	if report.Accepted == 0 {
		a.staged.Clear()
		report.Notice = common.Warning("No new expenses saved: %d duplicates, %d invalid",
			report.Duplicates, report.Invalid)
		return report, nil
	}

	mirrored, err := a.persistOrRestore(ctx, a.store.Active(), working, before)
	if err != nil {
		var persistErr *common.PersistenceError
		if !errors.As(err, &persistErr) {
			return CommitReport{Notice: common.NoticeFor(err)}, err
		}
		a.staged.Clear()
		report.MirrorErr = err
		report.Notice = common.NoticeFor(err)
		return report, nil
	}

	a.staged.Clear()
	report.Mirrored = mirrored
	report.Notice = common.Info("Saved %d expenses (%d duplicates skipped)", report.Accepted, report.Duplicates)
	return report, nil
}

// persist saves the state and rewrites the mirror file bound to id. It
// reports whether a mirror was written; a failed mirror write returns a
// *common.PersistenceError after the state has been saved.
func (a *App) persist(ctx context.Context, id model.UserID) (bool, error) {
	if err := a.save(ctx); err != nil {
		return false, err
	}

	file, err := a.store.Binding(id)
	if err != nil || file == nil {
		return false, err
	}
	l, err := a.store.Ledger(id)
	if err != nil {
		return false, err
	}

	if err := file.Write(ctx, mirror.Render(l.Transactions())); err != nil {
		slog.Warn("Mirror write failed; state saved locally only", "file", file.Name(), "error", err)
		return false, &common.PersistenceError{Target: file.Name(), Err: err}
	}
	slog.Debug("Rewrote mirror file", "file", file.Name(), "transactions", l.Len())
	return true, nil
}

// persistOrRestore persists like persist and, when the state itself could
// not be saved, puts l back to before so memory matches what is stored.
func (a *App) persistOrRestore(ctx context.Context, id model.UserID, l *ledger.Ledger, before []model.Transaction) (bool, error) {
	mirrored, err := a.persist(ctx, id)
	if err != nil {
		var persistErr *common.PersistenceError
		if !errors.As(err, &persistErr) {
			l.Replace(before)
		}
	}
	return mirrored, err
}

// SwitchUser makes id the active user and saves the choice.
func (a *App) SwitchUser(ctx context.Context, id model.UserID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.store.Active()
	if err := a.store.SwitchUser(id); err != nil {
		return err
	}
	if prev == id {
		return nil
	}
	return a.save(ctx)
}

// ActiveUser returns the active user.
func (a *App) ActiveUser() model.UserID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Active()
}

// ConnectExternalFile binds handle to id, replacing the user's ledger with
// the file content when it is not blank, and saves.
func (a *App) ConnectExternalFile(ctx context.Context, id model.UserID, handle service.FileHandle) (ingest.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.store.ConnectExternalFile(ctx, id, handle)
	if err != nil {
		return res, err
	}
	return res, a.save(ctx)
}

// BindExternalFile re-attaches a mirror file to id at session start. The
// ledger is left as persisted; the next save rewrites the file.
func (a *App) BindExternalFile(id model.UserID, handle service.FileHandle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.BindExternalFile(id, handle)
}

// DisconnectExternalFile removes the file binding of id.
func (a *App) DisconnectExternalFile(id model.UserID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DisconnectExternalFile(id)
}

// Binding returns the file bound to id, or nil.
func (a *App) Binding(id model.UserID) (service.FileHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Binding(id)
}

// Transactions returns the ledger of id, newest first.
func (a *App) Transactions(id model.UserID) ([]model.Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, err := a.store.Ledger(id)
	if err != nil {
		return nil, err
	}
	return l.Transactions(), nil
}

// GetAggregates computes the dashboard view of the active user. The
// comparison covers both users over the saved comparison filter.
func (a *App) GetAggregates(q aggregate.Query) (aggregate.View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	u1, err := a.store.Ledger(model.User1)
	if err != nil {
		return aggregate.View{}, err
	}
	u2, err := a.store.Ledger(model.User2)
	if err != nil {
		return aggregate.View{}, err
	}
	return aggregate.BuildView(aggregate.Inputs{
		Active: a.store.Working().Transactions(),
		User1:  u1.Transactions(),
		User2:  u2.Transactions(),
		Filter: a.store.ComparisonFilter(),
	}, q)
}

// ExportLedgerAsText renders the active user's ledger in the mirror format.
func (a *App) ExportLedgerAsText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return mirror.Render(a.store.Working().Transactions())
}

// UpdateTransaction edits a committed transaction of the active user. The
// edited row must still be valid, including a category from the set.
func (a *App) UpdateTransaction(ctx context.Context, id string, e staging.Edit) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	working := a.store.Working()
	before := working.Transactions()
	if err := working.Update(id, e, a.store.Categories()); err != nil {
		return err
	}
	_, err := a.persistOrRestore(ctx, a.store.Active(), working, before)
	return err
}

// DeleteTransaction removes a committed transaction of the active user.
func (a *App) DeleteTransaction(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	working := a.store.Working()
	before := working.Transactions()
	if err := working.Remove(id); err != nil {
		return err
	}
	_, err := a.persistOrRestore(ctx, a.store.Active(), working, before)
	return err
}

// ClearLedger removes every transaction of user id.
func (a *App) ClearLedger(ctx context.Context, id model.UserID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.store.Ledger(id)
	if err != nil {
		return err
	}
	before := l.Transactions()
	l.Clear()
	_, err = a.persistOrRestore(ctx, id, l, before)
	return err
}

// Categories returns the category labels in display order.
func (a *App) Categories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Categories().Labels()
}

// AddCategory adds a category. It reports false when the label is blank or
// already present.
func (a *App) AddCategory(ctx context.Context, label string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.store.Categories().Add(label) {
		return false, nil
	}
	return true, a.save(ctx)
}

// RemoveCategory removes a category. Transactions keep their label.
func (a *App) RemoveCategory(ctx context.Context, label string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Categories().Remove(label); err != nil {
		return err
	}
	return a.save(ctx)
}

// ComparisonFilter returns the categories used by comparisons.
func (a *App) ComparisonFilter() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.ComparisonFilter()
}

// SetComparisonFilter replaces the comparison categories and saves.
func (a *App) SetComparisonFilter(ctx context.Context, labels []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.SetComparisonFilter(labels); err != nil {
		return err
	}
	return a.save(ctx)
}

// APIKey returns the stored extraction service key.
func (a *App) APIKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.APIKey()
}

// SetAPIKey stores a non-empty extraction service key.
func (a *App) SetAPIKey(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key = strings.TrimSpace(key)
	if key == "" {
		return common.NewUserError("The API key cannot be empty", common.ErrInvalidConfig)
	}
	a.store.SetAPIKey(key)
	return a.save(ctx)
}

// ClearAll deletes the persisted state and resets to defaults. File
// bindings and the staging buffer are dropped too.
func (a *App) ClearAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.kv.Delete(ctx, StateKey); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	a.store.Reset()
	a.staged.Clear()
	slog.Info("Cleared all data")
	return nil
}
