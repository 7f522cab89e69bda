// Package ledger owns the user's Ledger and keeps it in step with its
// persisted Document.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/store"
)

// Store records transactions into a Ledger and saves it after every change.
type Store struct {
	mu sync.Mutex

	doc    store.Document
	ledger *domain.Ledger

	now func() time.Time
	log *slog.Logger

	// why the saved ledger could not be used, if it couldn't
	loadErr error

	// the document has content we failed to read, copy it before overwriting
	needsBackup bool
}

type Option func(*Store)

// WithClock sets where transaction timestamps come from.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Open loads the ledger saved in doc.
//
// Open does not fail: a missing document gives an empty ledger, and so does one
// that can't be read or parsed, in which case LoadError says why.
func Open(ctx context.Context, doc store.Document, opts ...Option) *Store {
	s := &Store{
		doc:    doc,
		ledger: domain.NewLedger(),
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "ledger")

	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.doc.Read(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("no saved ledger, starting empty")
		return
	}
	if err != nil {
		s.fail(fmt.Errorf("%w: read ledger: %w", domain.ErrStorageUnavailable, err))
		return
	}

	res, err := decode(data, s.now().Location())
	if err != nil {
		s.fail(fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err))
		return
	}

	for _, skipped := range res.skipped {
		s.log.Warn("skipping transaction log entry", "error", skipped)
	}
	if len(res.skipped) > 0 {
		s.needsBackup = true
	}
	if res.mismatch {
		s.log.Warn("saved totals do not match the transaction log, using totals from the log")
	}
	if res.legacy {
		s.log.Info("ledger was saved in an older format, it will be upgraded on the next save")
	}

	s.ledger = res.ledger
	s.log.Debug("ledger loaded", "transactions", len(s.ledger.Transactions))
}

func (s *Store) fail(err error) {
	s.loadErr = err
	s.needsBackup = true
	s.log.Warn("saved ledger unusable, starting empty", "error", err)
}

// LoadError is why the saved ledger was not used, or nil.
func (s *Store) LoadError() error {
	return s.loadErr
}

// RecordIncome appends an income transaction and saves the ledger.
//
// If saving fails the transaction is still recorded in memory and returned,
// along with an error wrapping domain.ErrStorageUnavailable.
func (s *Store) RecordIncome(ctx context.Context, req domain.IncomeRequest) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := domain.NewIncome(s.now(), req)
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, s.append(ctx, tx)
}

// RecordExpense appends an expense transaction and saves the ledger. Errors
// are as for RecordIncome.
func (s *Store) RecordExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := domain.NewExpense(s.now(), req)
	if err != nil {
		return domain.Transaction{}, err
	}
	return tx, s.append(ctx, tx)
}

func (s *Store) append(ctx context.Context, tx domain.Transaction) error {
	if err := s.ledger.Append(tx); err != nil {
		return err
	}
	s.log.Info(
		"transaction recorded",
		"id", tx.ID,
		"kind", string(tx.Kind),
		"amount", tx.Amount.String(),
		"label", tx.Label,
	)
	return s.save(ctx)
}

// Reset empties the ledger and saves it. There is no undo.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	s.log.Info("ledger cleared")
	return s.save(ctx)
}

// Save writes the ledger as it is now.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if s.needsBackup {
		if b, ok := s.doc.(store.Backuper); ok {
			target, err := b.Backup(ctx)
			if err != nil {
				s.log.Warn("could not back up unreadable ledger", "error", err)
			} else {
				s.log.Warn("unreadable ledger backed up before overwrite", "backup", target)
			}
		}
		s.needsBackup = false
	}

	data, err := encode(s.ledger)
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", domain.ErrStorageUnavailable, err)
	}
	if err := s.doc.Write(ctx, data); err != nil {
		s.log.Error("failed to save ledger", "error", err)
		return fmt.Errorf("%w: write ledger: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// IsOverBudget reports if total expenses exceed total income.
func (s *Store) IsOverBudget() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.IsOverBudget()
}

// Ledger returns a copy of the current ledger.
func (s *Store) Ledger() *domain.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone()
}

// KnownSplitNames is everyone ever named on a split expense.
func (s *Store) KnownSplitNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ledger.KnownSplitNames...)
}

func (s *Store) Close() error {
	return s.doc.Close()
}
