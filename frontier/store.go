package frontier

import (
	"sort"
	"sync"

	"github.com/mycok/uCrawl/urlnorm"
)

// Store is a frontier whose collections are each guarded by their own
// lock. No operation holds more than one of those locks at a time, so
// concurrent workers and the scheduler may interleave freely between
// steps of a multi-collection operation.
type Store struct {
	tentativeMu sync.Mutex
	tentative   []Item

	nextMu sync.Mutex
	next   []Item

	visitedMu    sync.RWMutex
	visited      map[string]struct{}
	visitedHosts map[string]struct{}
	// Visited question URLs keyed by host/id.
	visitedQuestions map[string][]string

	excludedMu sync.RWMutex
	excluded   map[string]struct{}

	robotsMu      sync.Mutex
	robotsChecked map[string]struct{}

	attemptedMu sync.Mutex
	attempted   map[string]struct{}
}

// NewStore returns an empty frontier.
func NewStore() *Store {
	return &Store{
		visited:          make(map[string]struct{}),
		visitedHosts:     make(map[string]struct{}),
		visitedQuestions: make(map[string][]string),
		excluded:         make(map[string]struct{}),
		robotsChecked:    make(map[string]struct{}),
		attempted:        make(map[string]struct{}),
	}
}

// AddTentative appends freshly discovered links to the tentative list.
func (s *Store) AddTentative(items ...Item) {
	if len(items) == 0 {
		return
	}

	s.tentativeMu.Lock()
	s.tentative = append(s.tentative, items...)
	s.tentativeMu.Unlock()
}

// DrainTentative empties the tentative list and returns its contents.
func (s *Store) DrainTentative() []Item {
	s.tentativeMu.Lock()
	defer s.tentativeMu.Unlock()

	drained := s.tentative
	s.tentative = nil

	return drained
}

// TentativeLen returns the number of links awaiting a merge.
func (s *Store) TentativeLen() int {
	s.tentativeMu.Lock()
	defer s.tentativeMu.Unlock()

	return len(s.tentative)
}

// SetNext replaces the ready list.
func (s *Store) SetNext(items []Item) {
	s.nextMu.Lock()
	s.next = append([]Item(nil), items...)
	s.nextMu.Unlock()
}

// Next returns a snapshot of the ready list.
func (s *Store) Next() []Item {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()

	return append([]Item(nil), s.next...)
}

// NextLen returns the number of links ready to be claimed.
func (s *Store) NextLen() int {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()

	return len(s.next)
}

// FirstForHost returns the first ready item whose host equals host.
func (s *Store) FirstForHost(host string) (Item, bool) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()

	for _, item := range s.next {
		if urlnorm.Host(item.URL) == host {
			return item, true
		}
	}

	return Item{}, false
}

// RemoveNext removes the ready entry for item's URL. The depth is ignored
// since a merge may have lowered it after the item was handed out.
func (s *Store) RemoveNext(item Item) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()

	for i, candidate := range s.next {
		if candidate.URL == item.URL {
			s.next = append(s.next[:i], s.next[i+1:]...)
			return
		}
	}
}

// MarkVisited adds u to the visited set. Visited is monotonic for the
// duration of a run.
func (s *Store) MarkVisited(u string) {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()

	s.markVisitedLocked(u)
}

// LoadVisited seeds the visited set, typically from a previous run.
func (s *Store) LoadVisited(urls []string) {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()

	for _, u := range urls {
		s.markVisitedLocked(u)
	}
}

func (s *Store) markVisitedLocked(u string) {
	if _, found := s.visited[u]; found {
		return
	}

	s.visited[u] = struct{}{}

	if key := urlnorm.HostKey(u); key != "" {
		s.visitedHosts[key] = struct{}{}
	}

	if key, ok := urlnorm.QuestionKey(u); ok {
		s.visitedQuestions[key] = append(s.visitedQuestions[key], u)
	}
}

// IsVisited reports whether u has been visited. Question pages also match
// any visited variant of the same question.
func (s *Store) IsVisited(u string) bool {
	s.visitedMu.RLock()
	defer s.visitedMu.RUnlock()

	if _, found := s.visited[u]; found {
		return true
	}

	key, ok := urlnorm.QuestionKey(u)
	if !ok {
		return false
	}

	for _, candidate := range s.visitedQuestions[key] {
		if urlnorm.SameQuestion(u, candidate) {
			return true
		}
	}

	return false
}

// IsVisitedHost reports whether any visited URL shares u's scheme and host.
func (s *Store) IsVisitedHost(u string) bool {
	key := urlnorm.HostKey(u)
	if key == "" {
		return false
	}

	s.visitedMu.RLock()
	defer s.visitedMu.RUnlock()

	_, found := s.visitedHosts[key]
	return found
}

// Visited returns the visited set in lexical order.
func (s *Store) Visited() []string {
	s.visitedMu.RLock()
	defer s.visitedMu.RUnlock()

	return sortedKeys(s.visited)
}

// VisitedLen returns the size of the visited set.
func (s *Store) VisitedLen() int {
	s.visitedMu.RLock()
	defer s.visitedMu.RUnlock()

	return len(s.visited)
}

// AddExclusions records exclusion prefixes. Exclusions are irrevocable.
func (s *Store) AddExclusions(prefixes ...string) {
	if len(prefixes) == 0 {
		return
	}

	s.excludedMu.Lock()
	defer s.excludedMu.Unlock()

	for _, prefix := range prefixes {
		if prefix != "" {
			s.excluded[prefix] = struct{}{}
		}
	}
}

// IsExcluded reports whether u is covered by a recorded exclusion prefix.
func (s *Store) IsExcluded(u string) bool {
	s.excludedMu.RLock()
	defer s.excludedMu.RUnlock()

	return IsExcludedBy(u, s.excluded)
}

// IsExcludedExact reports whether u itself was recorded as an exclusion
// prefix.
func (s *Store) IsExcludedExact(u string) bool {
	s.excludedMu.RLock()
	defer s.excludedMu.RUnlock()

	_, found := s.excluded[u]
	return found
}

// Excluded returns the exclusion prefixes in lexical order.
func (s *Store) Excluded() []string {
	s.excludedMu.RLock()
	defer s.excludedMu.RUnlock()

	return sortedKeys(s.excluded)
}

// ExcludedLen returns the number of exclusion prefixes.
func (s *Store) ExcludedLen() int {
	s.excludedMu.RLock()
	defer s.excludedMu.RUnlock()

	return len(s.excluded)
}

// MarkRobotsChecked records that the robots rules of u's host have been
// requested and reports whether this call was the first one to do so.
func (s *Store) MarkRobotsChecked(u string) bool {
	key := urlnorm.HostKey(u)

	s.robotsMu.Lock()
	defer s.robotsMu.Unlock()

	if _, found := s.robotsChecked[key]; found {
		return false
	}
	s.robotsChecked[key] = struct{}{}

	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// MarkAttempted records that u was handed to a fetch in this run. It
// reports false if u had already been attempted.
func (s *Store) MarkAttempted(u string) bool {
	s.attemptedMu.Lock()
	defer s.attemptedMu.Unlock()

	if _, found := s.attempted[u]; found {
		return false
	}
	s.attempted[u] = struct{}{}

	return true
}

// IsAttempted reports whether u was already handed to a fetch in this run.
func (s *Store) IsAttempted(u string) bool {
	s.attemptedMu.Lock()
	defer s.attemptedMu.Unlock()

	_, found := s.attempted[u]
	return found
}
