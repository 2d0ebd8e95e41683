// Package frontier holds the crawl work-set: links waiting to be merged,
// links ready to be claimed by workers, links already visited and the
// prefix rules that exclude links from being fetched at all.
package frontier

import "strings"

// Item is a URL paired with the number of hops that separate it from the
// seed it was discovered from.
type Item struct {
	URL   string
	Depth int
}

// DedupeByLowestDepth collapses items sharing a URL into a single entry
// carrying the smallest depth. First-seen order is preserved.
func DedupeByLowestDepth(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}

	pos := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))

	for _, item := range items {
		if at, seen := pos[item.URL]; seen {
			if item.Depth < out[at].Depth {
				out[at].Depth = item.Depth
			}

			continue
		}

		pos[item.URL] = len(out)
		out = append(out, item)
	}

	return out
}

// RemoveIfPresent returns the items of list whose URL does not appear in
// present.
func RemoveIfPresent(list []Item, present map[string]struct{}) []Item {
	out := make([]Item, 0, len(list))
	for _, item := range list {
		if _, found := present[item.URL]; !found {
			out = append(out, item)
		}
	}

	return out
}

// RemoveExcluded returns the items of list that are not covered by any of
// the exclusion prefixes.
func RemoveExcluded(list []Item, exclusions map[string]struct{}) []Item {
	out := make([]Item, 0, len(list))
	for _, item := range list {
		if !IsExcludedBy(item.URL, exclusions) {
			out = append(out, item)
		}
	}

	return out
}

// IsExcludedBy reports whether u equals one of the exclusion prefixes or
// starts with a prefix followed by a "/". Only whole path segments match:
// "http://h/private" excludes "http://h/private/x" but not
// "http://h/privateer".
func IsExcludedBy(u string, exclusions map[string]struct{}) bool {
	if len(exclusions) == 0 {
		return false
	}

	if _, found := exclusions[u]; found {
		return true
	}

	// Every prefix e with u[len(e)] == '/' is a candidate.
	for i := strings.IndexByte(u, '/'); i != -1; {
		if _, found := exclusions[u[:i]]; found {
			return true
		}

		next := strings.IndexByte(u[i+1:], '/')
		if next == -1 {
			break
		}
		i += next + 1
	}

	return false
}
