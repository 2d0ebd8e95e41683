package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawler"
)

// Crawler is the subset of the crawler API used by CrawlService.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string, maxDepth int, indexLocation string, resetIndex bool) (crawler.Summary, error)
}

// CrawlConfig defines configurations for the crawl service.
type CrawlConfig struct {
	Crawler Crawler

	// Seed URLs of the run.
	Seeds []string

	// Maximum number of hops followed from a seed.
	MaxDepth int

	// Index location the run writes to and persists state under.
	IndexLocation string

	// Whether to start from an empty index and empty state.
	ResetIndex bool

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *CrawlConfig) validate() error {
	var err error

	if config.Crawler == nil {
		err = multierror.Append(err, fmt.Errorf("crawler not provided"))
	}

	if len(config.Seeds) == 0 {
		err = multierror.Append(err, fmt.Errorf("no seeds provided"))
	}

	if config.MaxDepth < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max depth"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// CrawlService performs a single crawl run and returns when it completes.
type CrawlService struct {
	config CrawlConfig

	mu      sync.Mutex
	summary crawler.Summary
}

// NewCrawlService creates a fully configured crawl service instance.
func NewCrawlService(config CrawlConfig) (*CrawlService, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("crawl service: config validation failed: %w", err)
	}

	return &CrawlService{config: config}, nil
}

// Name returns the name of the service.
func (svc *CrawlService) Name() string { return "crawl" }

// Run executes the crawl and blocks until it finishes.
func (svc *CrawlService) Run(ctx context.Context) error {
	svc.config.Logger.WithFields(logrus.Fields{
		"seeds":     len(svc.config.Seeds),
		"max_depth": svc.config.MaxDepth,
		"location":  svc.config.IndexLocation,
		"reset":     svc.config.ResetIndex,
	}).Info("starting service")
	defer svc.config.Logger.Info("stopped service")

	summary, err := svc.config.Crawler.Crawl(
		ctx, svc.config.Seeds, svc.config.MaxDepth, svc.config.IndexLocation, svc.config.ResetIndex,
	)

	svc.mu.Lock()
	svc.summary = summary
	svc.mu.Unlock()

	return err
}

// Summary returns the outcome of the last completed run.
func (svc *CrawlService) Summary() crawler.Summary {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.summary
}
