package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mycok/uCrawl/crawler"
	"github.com/mycok/uCrawl/crawler/privnet"
	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/robots"
	"github.com/mycok/uCrawl/service"
)

type crawlOptions struct {
	maxDepth            int
	indexLocation       string
	resetIndex          bool
	workers             int
	politeness          time.Duration
	pollInterval        time.Duration
	reportInterval      time.Duration
	userAgent           string
	indexURI            string
	stateURI            string
	skipPrivateNetworks bool
}

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd(global *globalOptions) *cobra.Command {
	opts := &crawlOptions{}

	cmd := &cobra.Command{
		Use:   "crawl [flags] SEED...",
		Short: "Crawl outward from the given seed URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}
			opts.applyConfig(cmd, cfg)

			logger, err := global.rootLogger()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, cmd, opts, args, logger)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.maxDepth, "depth", "d", 1, "Maximum number of links followed from a seed")
	flags.StringVarP(&opts.indexLocation, "index", "i", crawler.DefaultIndexLocation,
		"Index location; state is kept alongside the index")
	flags.BoolVar(&opts.resetIndex, "reset", false, "Discard the existing index and crawl state")
	flags.IntVar(&opts.workers, "workers", crawler.DefaultMaxWorkers, "Maximum number of concurrent workers")
	flags.DurationVar(&opts.politeness, "politeness", crawler.DefaultPolitenessDelay,
		"Pause a worker takes between passes over its hosts")
	flags.DurationVar(&opts.pollInterval, "poll-interval", crawler.DefaultPollInterval,
		"Pause between scheduler cycles")
	flags.DurationVar(&opts.reportInterval, "report-interval", 10*time.Second,
		"Time between progress log lines")
	flags.StringVar(&opts.userAgent, "user-agent", fetcher.DefaultUserAgent, "User-Agent header value")
	flags.StringVar(&opts.indexURI, "index-backend", "bleve://",
		"Text index backend [supported URI's: bleve://, in-memory://, es://node1:9200,...,nodeN:9200]")
	flags.StringVar(&opts.stateURI, "state-store", "file://",
		"Crawl state backend [supported URI's: file://, in-memory://, postgresql://user@host:26257/ucrawl?sslmode=disable]")
	flags.BoolVar(&opts.skipPrivateNetworks, "skip-private-networks", false,
		"Do not crawl hosts that resolve to private network addresses")

	return cmd
}

// applyConfig copies config file values into every option whose flag was
// not given explicitly.
func (opts *crawlOptions) applyConfig(cmd *cobra.Command, cfg fileConfig) {
	flags := cmd.Flags()
	unset := func(name string) bool { return !flags.Changed(name) }

	if unset("depth") {
		opts.maxDepth = cfg.Crawl.MaxDepth
	}
	if unset("index") && cfg.Crawl.IndexLocation != "" {
		opts.indexLocation = cfg.Crawl.IndexLocation
	}
	if unset("workers") && cfg.Crawl.Workers > 0 {
		opts.workers = cfg.Crawl.Workers
	}
	if unset("politeness") && cfg.Crawl.Politeness.Duration > 0 {
		opts.politeness = cfg.Crawl.Politeness.Duration
	}
	if unset("poll-interval") && cfg.Crawl.PollInterval.Duration > 0 {
		opts.pollInterval = cfg.Crawl.PollInterval.Duration
	}
	if unset("report-interval") && cfg.Crawl.ReportInterval.Duration > 0 {
		opts.reportInterval = cfg.Crawl.ReportInterval.Duration
	}
	if unset("user-agent") && cfg.Crawl.UserAgent != "" {
		opts.userAgent = cfg.Crawl.UserAgent
	}
	if unset("skip-private-networks") {
		opts.skipPrivateNetworks = cfg.Crawl.SkipPrivateNetworks
	}
	if unset("index-backend") && cfg.Storage.Index != "" {
		opts.indexURI = cfg.Storage.Index
	}
	if unset("state-store") && cfg.Storage.State != "" {
		opts.stateURI = cfg.Storage.State
	}
}

func runCrawl(
	ctx context.Context, cmd *cobra.Command, opts *crawlOptions, seeds []string, logger *logrus.Entry,
) (err error) {
	indexes, err := newIndexBackend(opts.indexURI, logger)
	if err != nil {
		return err
	}

	states, err := newStateStore(opts.stateURI, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := closeAll(states); cErr != nil && err == nil {
			err = cErr
		}
	}()

	cfg := crawler.Config{
		Fetcher:         fetcher.New(fetcher.Config{UserAgent: opts.userAgent}),
		RobotsGate:      robots.NewGate(nil, opts.userAgent, logger.WithField("component", "robots")),
		IndexOpener:     indexes,
		StateStore:      states,
		UserAgent:       opts.userAgent,
		MaxWorkers:      opts.workers,
		PolitenessDelay: opts.politeness,
		PollInterval:    opts.pollInterval,
		Logger:          logger.WithField("component", "crawler"),
	}

	if opts.skipPrivateNetworks {
		detector, err := privnet.NewDetector()
		if err != nil {
			return err
		}
		cfg.Validator = privnet.NewValidator(detector, logger.WithField("component", "privnet"))
	}

	c, err := crawler.New(cfg)
	if err != nil {
		return err
	}

	crawlSvc, err := service.NewCrawlService(service.CrawlConfig{
		Crawler:       c,
		Seeds:         seeds,
		MaxDepth:      opts.maxDepth,
		IndexLocation: opts.indexLocation,
		ResetIndex:    opts.resetIndex,
		Logger:        logger.WithField("service", "crawl"),
	})
	if err != nil {
		return err
	}

	reporter, err := service.NewProgressReporter(service.ReporterConfig{
		Source:   c,
		Interval: opts.reportInterval,
		Logger:   logger.WithField("service", "progress-reporter"),
	})
	if err != nil {
		return err
	}

	if err = (service.Group{crawlSvc, reporter}).Execute(ctx); err != nil {
		return err
	}

	summary := crawlSvc.Summary()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "newly visited pages: %d\n", len(summary.NewlyVisited))
	for _, u := range summary.NewlyVisited {
		fmt.Fprintln(out, u)
	}

	fmt.Fprintf(out, "newly excluded pages: %d\n", len(summary.NewlyExcluded))
	for _, u := range summary.NewlyExcluded {
		fmt.Fprintln(out, u)
	}

	return nil
}
