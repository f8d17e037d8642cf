// Package filestore implements the persistence contract on JSON documents,
// one file per collection. All access is serialized through a single mutex;
// writes go to a temp file and are renamed into place so a crash never leaves
// a half-written collection.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"coworkpos-backend/internal/domain"
)

const (
	fileUsers        = "users.json"
	fileProducts     = "products.json"
	fileSessions     = "coworking_sessions.json"
	fileCashSessions = "cash_sessions.json"
	fileSales        = "sales.json"
	fileExpenses     = "expenses.json"
	fileReports      = "cash_cut_reports.json"
)

type Store struct {
	dir string

	mu           sync.Mutex
	users        []domain.User
	products     []domain.Product
	sessions     []domain.CoworkingSession
	cashSessions []domain.CashSession
	sales        []domain.Sale
	expenses     []domain.Expense
	reports      []domain.CashCutReport
}

// New loads all collections from dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{dir: dir}
	for file, target := range map[string]any{
		fileUsers:        &s.users,
		fileProducts:     &s.products,
		fileSessions:     &s.sessions,
		fileCashSessions: &s.cashSessions,
		fileSales:        &s.sales,
		fileExpenses:     &s.expenses,
		fileReports:      &s.reports,
	} {
		if err := s.load(file, target); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load(name string, target any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// persist must be called with the mutex held.
func (s *Store) persist(name string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistence, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", domain.ErrPersistence, name, err)
	}
	return nil
}
