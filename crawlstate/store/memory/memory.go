// Package memory provides a map backed state.Store used by tests and dry
// runs.
package memory

import (
	"fmt"
	"sync"

	"github.com/mycok/uCrawl/crawlstate/state"
)

// Static and compile-time check to ensure Store implements state.Store.
var _ state.Store = (*Store)(nil)

type key struct {
	location string
	kind     state.Kind
}

// Store keeps crawl state in memory.
type Store struct {
	mu   sync.RWMutex
	sets map[key][]string
}

// NewStore returns an empty in-memory state store.
func NewStore() *Store {
	return &Store{sets: make(map[key][]string)}
}

// Load returns a copy of the set saved for kind under location.
func (s *Store) Load(location string, kind state.Kind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.sets[key{location, kind}]...), nil
}

// Save replaces the set saved for kind under location.
func (s *Store) Save(location string, kind state.Kind, urls []string) error {
	if err := kind.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[key{location, kind}] = append([]string(nil), urls...)

	return nil
}
