package crawler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/frontier"
)

// worker claims links for the hosts bound to it, one link per host per
// pass, pausing between passes.
type worker struct {
	id     int
	r      *run
	logger *logrus.Entry

	mu    sync.Mutex
	hosts []string

	busy atomic.Bool

	// Touched only by the scheduler goroutine.
	started bool
	done    chan struct{}
}

func newWorker(id int, r *run) *worker {
	return &worker{
		id:     id,
		r:      r,
		logger: r.logger.WithField("worker", id),
	}
}

// start launches the worker loop. The worker reports busy before start
// returns.
func (w *worker) start(ctx context.Context) {
	w.busy.Store(true)
	w.started = true
	w.done = make(chan struct{})

	go w.loop(ctx, w.done)
}

// join blocks until the last started loop has exited.
func (w *worker) join() {
	if w.done != nil {
		<-w.done
	}
}

func (w *worker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer w.busy.Store(false)
	defer func() {
		if p := recover(); p != nil {
			w.logger.WithField("panic", p).Error("claim panicked, worker going idle")
		}
	}()

	for {
		found, claimed := false, false

		for _, host := range w.hostSnapshot() {
			if ctx.Err() != nil {
				return
			}

			item, ok := w.r.frontier.FirstForHost(host)
			if !ok {
				continue
			}
			found = true

			if w.process(ctx, item) {
				claimed = true
			}
		}

		if !found {
			return
		}

		if !claimed {
			continue
		}

		select {
		case <-w.r.cfg.Clock.After(w.r.cfg.PolitenessDelay):
		case <-ctx.Done():
			return
		}
	}
}

// process claims item and drops it from the ready list whatever the
// outcome, a panic included.
func (w *worker) process(ctx context.Context, item frontier.Item) bool {
	defer w.r.frontier.RemoveNext(item)

	return w.r.claim(ctx, item, false)
}

func (w *worker) addHost(host string) {
	w.mu.Lock()
	w.hosts = append(w.hosts, host)
	w.mu.Unlock()
}

func (w *worker) hostSnapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]string(nil), w.hosts...)
}

func (w *worker) isBusy() bool {
	return w.busy.Load()
}
