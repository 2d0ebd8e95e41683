// Package state defines how the URL sets of a crawl survive between runs.
package state

import "errors"

// Kind identifies one of the persisted URL sets.
type Kind string

const (
	// Visited holds every URL fetched so far.
	Visited Kind = "visited"

	// Excluded holds robots.txt exclusion prefixes.
	Excluded Kind = "excluded"
)

// ErrUnknownKind is returned for a Kind other than Visited or Excluded.
var ErrUnknownKind = errors.New("unknown state kind")

// Store is implemented by objects that persist the URL sets of a crawl,
// keyed by index location.
type Store interface {
	// Load returns the persisted set. A set that was never saved yields an
	// empty result and no error.
	Load(location string, kind Kind) ([]string, error)

	// Save replaces the persisted set with urls.
	Save(location string, kind Kind, urls []string) error
}

// Validate returns ErrUnknownKind if k is not a known kind.
func (k Kind) Validate() error {
	switch k {
	case Visited, Excluded:
		return nil
	default:
		return ErrUnknownKind
	}
}
