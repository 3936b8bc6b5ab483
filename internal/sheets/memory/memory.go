// Package memory is an in-memory stand-in for the spreadsheet backend,
// used in tests and for local runs without credentials.
package memory

import (
	"context"
	"sync"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	wallets []string
	cats    []core.Category
	refunds []string
	rows    [][]string
	appends int
}

var (
	_ ports.RecordAppender = (*Store)(nil)
	_ ports.WalletReader   = (*Store)(nil)
	_ ports.CategoryReader = (*Store)(nil)
	_ ports.RefundReader   = (*Store)(nil)
	_ ports.RowScanner     = (*Store)(nil)
)

func New(wallets []string, cats []core.Category, refunds []string) *Store {
	return &Store{wallets: wallets, cats: cats, refunds: refunds}
}

// Append stores the record the way the data sheet would: a row of strings
// with the date in DD/MM/YYYY.
func (s *Store) Append(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, []string{
		r.Date.Display(),
		r.Description,
		r.Amount.Format(),
		r.Currency,
		r.Category,
		r.Wallet,
		r.RefundTo,
	})
	s.appends++
	return nil
}

func (s *Store) Wallets(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.wallets...), nil
}

func (s *Store) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) RefundTargets(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refunds...), nil
}

func (s *Store) Rows(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// SeedRow injects a raw data row, malformed ones included.
func (s *Store) SeedRow(row []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
}

// AppendCount reports how many times Append committed a row.
func (s *Store) AppendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}
