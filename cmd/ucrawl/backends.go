package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawler"
	"github.com/mycok/uCrawl/crawlstate/state"
	"github.com/mycok/uCrawl/crawlstate/store/cdb"
	"github.com/mycok/uCrawl/crawlstate/store/file"
	"github.com/mycok/uCrawl/crawlstate/store/memory"
	"github.com/mycok/uCrawl/textindexer/index"
	"github.com/mycok/uCrawl/textindexer/store/bleveidx"
	"github.com/mycok/uCrawl/textindexer/store/es"
)

// searchableIndex is implemented by every index backend.
type searchableIndex interface {
	index.Indexer
	index.Resetter
}

// indexBackend opens the text index of a location for the selected
// backend.
type indexBackend struct {
	scheme string
	nodes  []string
	logger *logrus.Entry

	memOnce sync.Once
	mem     *bleveidx.Index
	memErr  error
}

func newIndexBackend(indexURI string, logger *logrus.Entry) (*indexBackend, error) {
	if indexURI == "" {
		indexURI = "bleve://"
	}

	u, err := url.Parse(indexURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text index URI: %w", err)
	}

	b := &indexBackend{scheme: u.Scheme, logger: logger}

	switch u.Scheme {
	case "bleve":
		logger.Info("using on-disk bleve text index")
	case "in-memory":
		logger.Info("using in-memory text index")
	case "es":
		for _, node := range strings.Split(u.Host, ",") {
			if node != "" {
				b.nodes = append(b.nodes, "http://"+node)
			}
		}

		if len(b.nodes) == 0 {
			return nil, fmt.Errorf("no elasticsearch nodes in text index URI %q", indexURI)
		}
		logger.WithField("nodes", b.nodes).Info("using ES text index")
	default:
		return nil, fmt.Errorf("unsupported text index URI scheme: %q", u.Scheme)
	}

	return b, nil
}

// open returns the index kept for location.
func (b *indexBackend) open(location string) (searchableIndex, error) {
	switch b.scheme {
	case "in-memory":
		b.memOnce.Do(func() {
			b.mem, b.memErr = bleveidx.NewInMemoryIndex()
		})

		if b.memErr != nil {
			return nil, b.memErr
		}

		// Shared for the life of the process; callers must not close it.
		return struct{ searchableIndex }{b.mem}, nil
	case "es":
		idx, err := es.NewEsIndexer(b.nodes, es.IndexNameFor(location), false)
		if err != nil {
			return nil, err
		}

		return idx, nil
	default:
		idx, err := bleveidx.Open(location)
		if err != nil {
			return nil, err
		}

		return idx, nil
	}
}

// OpenIndex implements crawler.IndexOpener.
func (b *indexBackend) OpenIndex(location string) (crawler.MiniIndexer, error) {
	return b.open(location)
}

// stateBackend wraps a state store together with its release function.
type stateBackend struct {
	state.Store
	close func() error
}

func newStateStore(stateURI string, logger *logrus.Entry) (*stateBackend, error) {
	if stateURI == "" {
		stateURI = "file://"
	}

	u, err := url.Parse(stateURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state store URI: %w", err)
	}

	noop := func() error { return nil }

	switch u.Scheme {
	case "file":
		logger.Info("using flat-file crawl state")
		return &stateBackend{Store: file.NewStore(), close: noop}, nil
	case "in-memory":
		logger.Info("using in-memory crawl state")
		return &stateBackend{Store: memory.NewStore(), close: noop}, nil
	case "postgresql":
		logger.Info("using CDB crawl state")

		store, err := cdb.NewCockroachDBState(stateURI)
		if err != nil {
			return nil, err
		}

		return &stateBackend{Store: store, close: store.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported state store URI scheme: %q", u.Scheme)
	}
}

// Close releases the store.
func (b *stateBackend) Close() error {
	return b.close()
}

// closeAll closes every non-nil closer and accumulates the failures.
func closeAll(closers ...io.Closer) error {
	var err error
	for _, c := range closers {
		if c == nil {
			continue
		}

		if cErr := c.Close(); cErr != nil {
			err = multierror.Append(err, cErr)
		}
	}

	return err
}
