package repository

import (
	"context"
	"sync"

	"github.com/hilthontt/doctrack/internal/infrastructure/spreadsheet"
)

// tableStore owns one spreadsheet file. Every read-modify-write cycle runs
// under mu so concurrent requests can't overwrite each other's rows.
type tableStore struct {
	path string
	mu   *sync.Mutex
}

func newTableStore(path string) *tableStore {
	return &tableStore{path: path, mu: &sync.Mutex{}}
}

func (s *tableStore) Load(ctx context.Context) (*spreadsheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return spreadsheet.Read(s.path)
}

func (s *tableStore) Save(ctx context.Context, t *spreadsheet.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return spreadsheet.Write(s.path, t)
}

// Update loads the table, hands it to fn and writes it back. Nothing is
// written when fn returns an error.
func (s *tableStore) Update(ctx context.Context, fn func(t *spreadsheet.Table) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := spreadsheet.Read(s.path)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}

	return spreadsheet.Write(s.path, t)
}
