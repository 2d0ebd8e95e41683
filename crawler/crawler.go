/*
	crawler package implements a polite, depth-bounded web crawler. Starting
	from a list of seed URLs it:
		1. Normalizes the seeds and drops the ones already visited or excluded.
		2. Fetches the first seed synchronously so the text index can be
		   created before any concurrent writer exists.
		3. Binds every host to a single worker, so a host is never fetched by
		   two workers at once, and lets each worker pause between passes.
		4. Periodically merges newly discovered links into the ready list,
		   dropping duplicates, excluded and already visited links.
		5. Stops when no link is waiting and no worker is busy, then persists
		   the visited and excluded sets for the next run.
*/

package crawler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mycok/uCrawl/crawlstate/state"
	"github.com/mycok/uCrawl/urlnorm"
)

// Summary reports what a run added to the persisted state.
type Summary struct {
	// URLs visited during the run that were not visited before it.
	NewlyVisited []string

	// Exclusion prefixes discovered during the run.
	NewlyExcluded []string
}

// Stats is a point-in-time view of a run.
type Stats struct {
	Crawling    bool
	Tentative   int
	Next        int
	Visited     int
	Excluded    int
	Workers     int
	BusyWorkers int
}

// Crawler executes crawl runs. Runs on the same Crawler are serialized.
type Crawler struct {
	cfg      Config
	crawling atomic.Bool

	mu      sync.Mutex
	current *run
}

// New configures and returns a pointer to a fully configured crawler.
func New(cfg Config) (*Crawler, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("crawler: config validation failed: %w", err)
	}

	return &Crawler{cfg: cfg}, nil
}

// Crawl crawls outward from seeds, following links up to maxDepth hops and
// indexing every fetched page into the index at indexLocation. Unless
// resetIndex is set, the visited and excluded sets of the previous run at
// the same location are honoured and the index is appended to.
//
// An empty set of usable seeds is not an error: Crawl logs it and returns a
// zero Summary.
func (c *Crawler) Crawl(
	ctx context.Context, seeds []string, maxDepth int, indexLocation string, resetIndex bool,
) (Summary, error) {
	if maxDepth < 0 {
		return Summary{}, fmt.Errorf("crawler: %w", ErrInvalidDepth)
	}

	if !c.crawling.CompareAndSwap(false, true) {
		return Summary{}, fmt.Errorf("crawler: %w", ErrAlreadyCrawling)
	}
	defer c.crawling.Store(false)

	if indexLocation == "" {
		indexLocation = DefaultIndexLocation
	}

	r := newRun(&c.cfg, maxDepth, indexLocation, resetIndex)

	c.mu.Lock()
	c.current = r
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.current = nil
		c.mu.Unlock()
	}()

	return r.execute(ctx, seeds)
}

// IsCrawling reports whether a run is in progress.
func (c *Crawler) IsCrawling() bool {
	return c.crawling.Load()
}

// Stats returns the state of the current run, if any.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	r := c.current
	c.mu.Unlock()

	if r == nil {
		return Stats{Crawling: c.IsCrawling()}
	}

	stats := r.stats()
	stats.Crawling = c.IsCrawling()

	return stats
}

// VisitedPages returns the persisted visited set of indexLocation in
// lexical order.
func (c *Crawler) VisitedPages(indexLocation string) ([]string, error) {
	return c.persisted(indexLocation, state.Visited)
}

// ExcludedPages returns the persisted exclusion prefixes of indexLocation
// in lexical order.
func (c *Crawler) ExcludedPages(indexLocation string) ([]string, error) {
	return c.persisted(indexLocation, state.Excluded)
}

func (c *Crawler) persisted(indexLocation string, kind state.Kind) ([]string, error) {
	if indexLocation == "" {
		indexLocation = DefaultIndexLocation
	}

	urls, err := c.cfg.StateStore.Load(indexLocation, kind)
	if err != nil {
		return nil, fmt.Errorf("crawler: %w", err)
	}

	if kind == state.Visited {
		for i, u := range urls {
			urls[i] = urlnorm.NormalizePartial(u)
		}
	}

	return dedupeSorted(urls), nil
}

func dedupeSorted(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))

	for _, u := range urls {
		if _, dup := seen[u]; dup || u == "" {
			continue
		}

		seen[u] = struct{}{}
		out = append(out, u)
	}
	sort.Strings(out)

	return out
}
