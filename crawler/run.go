package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawlstate/state"
	"github.com/mycok/uCrawl/frontier"
	"github.com/mycok/uCrawl/urlnorm"
)

// run holds the state of a single Crawl invocation.
type run struct {
	cfg      *Config
	logger   *logrus.Entry
	frontier *frontier.Store

	location   string
	maxDepth   int
	resetIndex bool

	indexer    MiniIndexer
	indexMu    sync.Mutex
	indexReset bool

	// Sets loaded from the previous run, used to report what is new.
	prevVisited  map[string]struct{}
	prevExcluded map[string]struct{}

	// Owned by the scheduler goroutine.
	hosts     map[string]*worker
	nextRobin int

	workersMu sync.Mutex
	workers   []*worker

}

func newRun(cfg *Config, maxDepth int, location string, resetIndex bool) *run {
	return &run{
		cfg: cfg,
		logger: cfg.Logger.WithFields(logrus.Fields{
			"run_id":   uuid.New().String(),
			"location": location,
		}),
		frontier:     frontier.NewStore(),
		location:     location,
		maxDepth:     maxDepth,
		resetIndex:   resetIndex,
		prevVisited:  make(map[string]struct{}),
		prevExcluded: make(map[string]struct{}),
		hosts:        make(map[string]*worker),
	}
}

// execute drives the run through seeding, bootstrap, the steady state and
// draining, then persists the visited and excluded sets.
func (r *run) execute(parentCtx context.Context, seeds []string) (summary Summary, err error) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	if r.indexer, err = r.openIndex(); err != nil {
		return Summary{}, fmt.Errorf("crawler: unable to open index: %w", err)
	}
	defer func() {
		if closer, ok := r.indexer.(io.Closer); ok {
			if cErr := closer.Close(); cErr != nil {
				err = multierror.Append(err, fmt.Errorf("crawler: unable to close index: %w", cErr))
			}
		}
	}()

	if err = r.seed(seeds); err != nil {
		return Summary{}, err
	}

	if r.frontier.NextLen() == 0 {
		r.logger.Info("no new valid seeds to crawl")
		return Summary{}, nil
	}

	r.logger.WithFields(logrus.Fields{
		"seeds":     r.frontier.NextLen(),
		"max_depth": r.maxDepth,
		"reset":     r.resetIndex,
	}).Info("starting crawl")

	var runErr error
	func() {
		defer func() {
			if p := recover(); p != nil {
				runErr = fmt.Errorf("%w: %v", ErrCrawlInterrupted, p)
			}
		}()

		r.bootstrap(ctx)

		if sErr := r.steady(ctx); sErr != nil {
			runErr = fmt.Errorf("%w: %v", ErrCrawlInterrupted, sErr)
		}
	}()

	if runErr != nil {
		r.logger.WithError(runErr).Error("crawl stopped early")
	}

	// Draining: no worker may touch the frontier once it is persisted.
	cancel()
	r.joinWorkers()

	summary, err = r.persist()
	if runErr != nil {
		if err != nil {
			err = multierror.Append(runErr, err)
		} else {
			err = runErr
		}
	}

	return summary, err
}

// seed loads the previous state and fills the ready list with the usable
// seeds at depth zero.
func (r *run) seed(seeds []string) error {
	if !r.resetIndex {
		visited, err := r.cfg.StateStore.Load(r.location, state.Visited)
		if err != nil {
			return fmt.Errorf("crawler: unable to load visited pages: %w", err)
		}

		excluded, err := r.cfg.StateStore.Load(r.location, state.Excluded)
		if err != nil {
			return fmt.Errorf("crawler: unable to load excluded pages: %w", err)
		}

		for _, u := range visited {
			if u = urlnorm.NormalizePartial(u); u != "" {
				r.prevVisited[u] = struct{}{}
			}
		}

		for _, u := range excluded {
			if u != "" {
				r.prevExcluded[u] = struct{}{}
			}
		}

		r.frontier.LoadVisited(keys(r.prevVisited))
		r.frontier.AddExclusions(keys(r.prevExcluded)...)
	}

	seen := make(map[string]struct{}, len(seeds))
	items := make([]frontier.Item, 0, len(seeds))

	for _, raw := range seeds {
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}

		if r.frontier.IsVisited(raw) || r.frontier.IsExcludedExact(raw) {
			continue
		}

		u := urlnorm.NormalizePartial(raw)
		if !isAbsoluteHTTP(u) {
			r.logger.WithField("seed", raw).WithError(urlnorm.ErrMalformedURL).Warn("dropping seed")
			continue
		}

		if !r.cfg.Validator.IsValid(u) || r.frontier.IsVisited(u) || r.frontier.IsExcluded(u) {
			continue
		}

		items = append(items, frontier.Item{URL: u, Depth: 0})
	}

	r.frontier.SetNext(frontier.DedupeByLowestDepth(items))

	return nil
}

// bootstrap claims the first ready link on the calling goroutine, creating
// the index when a reset was requested.
func (r *run) bootstrap(ctx context.Context) {
	next := r.frontier.Next()
	if len(next) == 0 {
		return
	}

	first := next[0]
	r.claim(ctx, first, r.resetIndex)
	r.frontier.MarkVisited(first.URL)
	r.frontier.RemoveNext(first)

	// The first page may not have reached the indexer at all.
	if r.resetIndex && !r.indexReset {
		r.indexMu.Lock()
		if err := r.indexer.Reset(); err != nil {
			r.logger.WithError(err).Error("unable to reset index")
		}
		r.indexReset = true
		r.indexMu.Unlock()
	}
}

// steady runs scheduler cycles until the frontier drains and every worker
// is idle.
func (r *run) steady(ctx context.Context) error {
	for {
		r.assignHosts(ctx)
		r.frontier.MergeTentative(r.cfg.Validator.IsValid)

		if !r.pending() {
			return nil
		}

		select {
		case <-r.cfg.Clock.After(r.cfg.PollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pending reports whether work remains. Workers are checked first: a worker
// publishes its discoveries before it reports idle, so observing it idle
// guarantees the subsequent collection checks see everything it produced.
func (r *run) pending() bool {
	return r.anyBusy() || r.frontier.TentativeLen() > 0 || r.frontier.NextLen() > 0
}

// assignHosts binds every host of the ready list to a worker and makes
// sure that worker is running.
func (r *run) assignHosts(ctx context.Context) {
	seen := make(map[string]struct{})

	for _, item := range r.frontier.Next() {
		host := urlnorm.Host(item.URL)
		if _, done := seen[host]; done {
			continue
		}
		seen[host] = struct{}{}

		w, bound := r.hosts[host]
		if !bound {
			w = r.pickWorker()
			w.addHost(host)
			r.hosts[host] = w

			r.logger.WithFields(logrus.Fields{
				"host":   host,
				"worker": w.id,
			}).Debug("assigned host")
		}

		r.ensureRunning(ctx, w)
	}
}

// pickWorker returns an idle worker, a new worker while the pool is below
// its limit, or else the next worker in round-robin order.
func (r *run) pickWorker() *worker {
	r.workersMu.Lock()
	defer r.workersMu.Unlock()

	for _, w := range r.workers {
		if !w.isBusy() {
			return w
		}
	}

	if len(r.workers) < r.cfg.MaxWorkers {
		w := newWorker(len(r.workers), r)
		r.workers = append(r.workers, w)
		return w
	}

	w := r.workers[r.nextRobin%len(r.workers)]
	r.nextRobin++

	return w
}

// ensureRunning restarts w if it is idle. A worker that ran before is given
// the settle delay to report busy before it is joined.
func (r *run) ensureRunning(ctx context.Context, w *worker) {
	if w.isBusy() {
		return
	}

	if w.started {
		select {
		case <-r.cfg.Clock.After(r.cfg.SettleDelay):
		case <-ctx.Done():
			return
		}

		if w.isBusy() {
			return
		}
	}

	w.join()
	w.start(ctx)
}

func (r *run) anyBusy() bool {
	r.workersMu.Lock()
	defer r.workersMu.Unlock()

	for _, w := range r.workers {
		if w.isBusy() {
			return true
		}
	}

	return false
}

func (r *run) joinWorkers() {
	r.workersMu.Lock()
	workers := append([]*worker(nil), r.workers...)
	r.workersMu.Unlock()

	for _, w := range workers {
		w.join()
	}
}

// persist saves the visited and excluded sets and reports what the run
// added to them.
func (r *run) persist() (Summary, error) {
	visited := r.frontier.Visited()
	excluded := r.frontier.Excluded()

	var err error
	if sErr := r.cfg.StateStore.Save(r.location, state.Visited, visited); sErr != nil {
		err = multierror.Append(err, fmt.Errorf("crawler: unable to save visited pages: %w", sErr))
	}

	if sErr := r.cfg.StateStore.Save(r.location, state.Excluded, excluded); sErr != nil {
		err = multierror.Append(err, fmt.Errorf("crawler: unable to save excluded pages: %w", sErr))
	}

	summary := Summary{
		NewlyVisited:  subtract(visited, r.prevVisited),
		NewlyExcluded: subtract(excluded, r.prevExcluded),
	}

	r.logger.WithFields(logrus.Fields{
		"visited":        len(visited),
		"newly_visited":  len(summary.NewlyVisited),
		"excluded":       len(excluded),
		"newly_excluded": len(summary.NewlyExcluded),
	}).Info("crawl finished")

	for _, u := range summary.NewlyVisited {
		r.logger.WithField("url", u).Debug("newly visited")
	}

	for _, u := range summary.NewlyExcluded {
		r.logger.WithField("url", u).Debug("newly excluded")
	}

	return summary, err
}

func (r *run) stats() Stats {
	stats := Stats{
		Tentative: r.frontier.TentativeLen(),
		Next:      r.frontier.NextLen(),
		Visited:   r.frontier.VisitedLen(),
		Excluded:  r.frontier.ExcludedLen(),
	}

	r.workersMu.Lock()
	defer r.workersMu.Unlock()

	stats.Workers = len(r.workers)
	for _, w := range r.workers {
		if w.isBusy() {
			stats.BusyWorkers++
		}
	}

	return stats
}

func isAbsoluteHTTP(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}

	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	return out
}

// subtract returns the elements of sorted that are not in set, preserving
// order.
func subtract(sorted []string, set map[string]struct{}) []string {
	var out []string
	for _, u := range sorted {
		if _, found := set[u]; !found {
			out = append(out, u)
		}
	}

	return out
}
