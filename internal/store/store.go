package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/statikfintechllc/personal-pennies/internal/analytics"
	"github.com/statikfintechllc/personal-pennies/internal/journal"
)

// Store is the journal's persistence boundary. Trades and the account
// configuration are the durable inputs; the analytics result is a
// derived artifact that is overwritten on every run.
type Store interface {
	Trades() ([]journal.Trade, error)
	SaveTrades(trades []journal.Trade) error

	Account() (journal.AccountConfig, error)
	SaveAccount(acct journal.AccountConfig) error

	Result() (*analytics.Result, error)
	SaveResult(res *analytics.Result) error
}

const (
	tradesFile  = "trades.json"
	accountFile = "account.json"
	resultFile  = "analytics.json"
)

// FileStore keeps each record set in its own pretty-printed JSON file
// under one directory. Good enough for a personal journal; anything
// heavier can slot in behind the Store interface.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Trades() ([]journal.Trade, error) {
	var trades []journal.Trade
	if err := s.read(tradesFile, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (s *FileStore) SaveTrades(trades []journal.Trade) error {
	return s.write(tradesFile, trades)
}

func (s *FileStore) Account() (journal.AccountConfig, error) {
	var acct journal.AccountConfig
	if err := s.read(accountFile, &acct); err != nil {
		return journal.AccountConfig{}, err
	}
	return acct, nil
}

func (s *FileStore) SaveAccount(acct journal.AccountConfig) error {
	return s.write(accountFile, acct)
}

func (s *FileStore) Result() (*analytics.Result, error) {
	var res analytics.Result
	found, err := s.readExisting(resultFile, &res)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &res, nil
}

func (s *FileStore) SaveResult(res *analytics.Result) error {
	return s.write(resultFile, res)
}

// read unmarshals a record file, treating a missing file as the zero
// value: a fresh journal simply has nothing stored yet.
func (s *FileStore) read(name string, v any) error {
	_, err := s.readExisting(name, v)
	return err
}

func (s *FileStore) readExisting(name string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return true, nil
}

func (s *FileStore) write(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}
