package frontier

// MergeTentative moves the tentative list into the ready list. Drained
// links pass the valid hook, are deduplicated by lowest depth and stripped
// of excluded links, then unioned with the ready list, deduplicated again
// and finally stripped of visited or already attempted links. Each step takes at most one
// collection lock. It returns the number of links that passed validation.
func (s *Store) MergeTentative(valid func(string) bool) int {
	drained := s.DrainTentative()

	ready := make([]Item, 0, len(drained))
	for _, item := range drained {
		if valid == nil || valid(item.URL) {
			ready = append(ready, item)
		}
	}
	accepted := len(ready)

	ready = DedupeByLowestDepth(ready)

	s.excludedMu.RLock()
	ready = RemoveExcluded(ready, s.excluded)
	s.excludedMu.RUnlock()

	s.nextMu.Lock()
	s.next = DedupeByLowestDepth(append(s.next, ready...))
	snapshot := append([]Item(nil), s.next...)
	s.nextMu.Unlock()

	visited := make(map[string]struct{})
	for _, item := range snapshot {
		if s.IsVisited(item.URL) || s.IsAttempted(item.URL) {
			visited[item.URL] = struct{}{}
		}
	}

	if len(visited) != 0 {
		s.nextMu.Lock()
		s.next = RemoveIfPresent(s.next, visited)
		s.nextMu.Unlock()
	}

	return accepted
}
