// Package file persists crawl state as line-delimited text files inside
// the index directory.
package file

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mycok/uCrawl/crawlstate/state"
)

// Static and compile-time check to ensure Store implements state.Store.
var _ state.Store = (*Store)(nil)

// Store keeps each URL set in <location>/<kind>.txt, one URL per line.
type Store struct{}

// NewStore returns a file backed state store.
func NewStore() *Store {
	return &Store{}
}

// Path returns the file holding the given set.
func Path(location string, kind state.Kind) string {
	return filepath.Join(location, string(kind)+".txt")
}

// Load returns the URLs stored for kind under location, skipping blank
// lines. A missing file is reported as an empty set.
func (s *Store) Load(location string, kind state.Kind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	f, err := os.Open(Path(location, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	return urls, nil
}

// Save overwrites the file for kind under location with urls. The file is
// written to a temporary sibling first and renamed into place.
func (s *Store) Save(location string, kind state.Kind, urls []string) error {
	if err := kind.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if err := os.MkdirAll(location, 0o755); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	tmp, err := os.CreateTemp(location, string(kind)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := bufio.NewWriter(tmp)
	for _, u := range urls {
		_, _ = w.WriteString(u)
		_ = w.WriteByte('\n')
	}

	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	if err = os.Rename(tmp.Name(), Path(location, kind)); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}

	return nil
}
