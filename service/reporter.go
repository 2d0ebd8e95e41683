package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawler"
)

// StatsSource is implemented by objects that expose crawl progress.
type StatsSource interface {
	Stats() crawler.Stats
}

// ReporterConfig defines configurations for the progress reporter.
type ReporterConfig struct {
	Source StatsSource

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The duration between progress reports.
	Interval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *ReporterConfig) validate() error {
	var err error

	if config.Source == nil {
		err = multierror.Append(err, fmt.Errorf("stats source not provided"))
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Interval <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for report interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// ProgressReporter periodically logs the progress of a running crawl.
type ProgressReporter struct {
	config ReporterConfig
}

// NewProgressReporter creates a fully configured progress reporter.
func NewProgressReporter(config ReporterConfig) (*ProgressReporter, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("progress reporter: config validation failed: %w", err)
	}

	return &ProgressReporter{config: config}, nil
}

// Name returns the name of the service.
func (svc *ProgressReporter) Name() string { return "progress-reporter" }

// Run logs a progress line every interval until the context gets cancelled.
func (svc *ProgressReporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.Interval):
			stats := svc.config.Source.Stats()
			if !stats.Crawling {
				continue
			}

			svc.config.Logger.WithFields(logrus.Fields{
				"tentative":    stats.Tentative,
				"next":         stats.Next,
				"visited":      stats.Visited,
				"excluded":     stats.Excluded,
				"workers":      stats.Workers,
				"busy_workers": stats.BusyWorkers,
			}).Info("crawl progress")
		}
	}
}
