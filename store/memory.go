package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MemoryStore keeps bills in memory and can snapshot them to a JSON file.
// It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	bills map[string]*Bill
	path  string
}

// NewMemoryStore creates an empty store with no snapshot file.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bills: make(map[string]*Bill)}
}

// Open loads the snapshot at path. A missing file yields an empty store that
// Save will create.
func Open(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	var bills []*Bill
	if err := json.Unmarshal(data, &bills); err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", path, err)
	}
	for _, b := range bills {
		s.bills[b.Period] = b
	}
	return s, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, bills []*Bill, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(bills))
	for _, b := range bills {
		if b.Period == "" {
			return fmt.Errorf("bill from %s has no period", b.Source)
		}
		if seen[b.Period] {
			return &DuplicatePeriodError{Period: b.Period, Source: b.Source}
		}
		seen[b.Period] = true

		if _, exists := s.bills[b.Period]; exists && !replace {
			return &DuplicatePeriodError{Period: b.Period, Source: b.Source}
		}
	}

	for _, b := range bills {
		billCopy := *b
		s.bills[b.Period] = &billCopy
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, period string) (*Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bills[period]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, period)
	}
	billCopy := *b
	return &billCopy, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]*Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	periods := maps.Keys(s.bills)
	slices.Sort(periods)

	bills := make([]*Bill, len(periods))
	for i, p := range periods {
		billCopy := *s.bills[p]
		bills[i] = &billCopy
	}
	return bills, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bills[period]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, period)
	}
	delete(s.bills, period)
	return nil
}

// Save writes the snapshot file given to Open. The file is replaced
// atomically.
func (s *MemoryStore) Save() error {
	if s.path == "" {
		return errors.New("store has no snapshot file")
	}

	bills, _ := s.List(context.Background())
	data, err := json.MarshalIndent(bills, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".billtext-store-*")
	if err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write store: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

var _ Store = (*MemoryStore)(nil)
