package crawler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/crawlstate/state"
	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/robots"
)

const (
	// DefaultIndexLocation is used when Crawl is given an empty location.
	DefaultIndexLocation = "default_index"

	DefaultMaxWorkers      = 100
	DefaultPolitenessDelay = 500 * time.Millisecond
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultSettleDelay     = 50 * time.Millisecond
	DefaultMaxRedirects    = 10
	DefaultIndexAttempts   = 2
	DefaultMinDocLength    = 20
)

// Config defines configurations for the web-crawler.
type Config struct {
	// An API for retrieving and parsing pages. If not specified, a
	// fetcher.Fetcher using http.DefaultClient and UserAgent will be used
	// instead.
	Fetcher Fetcher

	// An API for fetching robots.txt exclusions. If not specified, a
	// robots.Gate using http.DefaultClient and UserAgent will be used
	// instead.
	RobotsGate ExclusionFetcher

	// An API for opening the text index of a location.
	IndexOpener IndexOpener

	// An API for loading and saving the visited and excluded sets.
	StateStore state.Store

	// Hook consulted before a discovered URL enters the frontier. If not
	// specified, every URL is accepted.
	Validator URLValidator

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// User-Agent used by the default fetcher and robots gate.
	UserAgent string

	// Upper bound on concurrently running workers.
	MaxWorkers int

	// Pause a worker takes after a pass in which it claimed a link.
	PolitenessDelay time.Duration

	// Pause between scheduler cycles.
	PollInterval time.Duration

	// Time an apparently idle worker is given to report busy before it is
	// joined and restarted.
	SettleDelay time.Duration

	// Upper bound on redirect hops followed when resolving a chain.
	MaxRedirects int

	// Number of attempts made to index a page while the index is locked.
	IndexAttempts int

	// Pages with fewer body bytes than this are not indexed.
	MinDocLength int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	if config.UserAgent == "" {
		config.UserAgent = fetcher.DefaultUserAgent
	}

	if config.Fetcher == nil {
		config.Fetcher = fetcher.New(fetcher.Config{UserAgent: config.UserAgent})
	}

	if config.RobotsGate == nil {
		config.RobotsGate = robots.NewGate(
			http.DefaultClient, config.UserAgent, config.Logger.WithField("component", "robots"),
		)
	}

	if config.IndexOpener == nil {
		err = multierror.Append(err, fmt.Errorf("index opener not provided"))
	}

	if config.StateStore == nil {
		err = multierror.Append(err, fmt.Errorf("state store not provided"))
	}

	if config.Validator == nil {
		config.Validator = acceptAll{}
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.MaxWorkers == 0 {
		config.MaxWorkers = DefaultMaxWorkers
	} else if config.MaxWorkers < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max workers, must be > 0"))
	}

	if config.PolitenessDelay == 0 {
		config.PolitenessDelay = DefaultPolitenessDelay
	} else if config.PolitenessDelay < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for politeness delay"))
	}

	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	} else if config.PollInterval < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for poll interval"))
	}

	if config.SettleDelay == 0 {
		config.SettleDelay = DefaultSettleDelay
	} else if config.SettleDelay < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for settle delay"))
	}

	if config.MaxRedirects == 0 {
		config.MaxRedirects = DefaultMaxRedirects
	} else if config.MaxRedirects < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max redirects"))
	}

	if config.IndexAttempts == 0 {
		config.IndexAttempts = DefaultIndexAttempts
	} else if config.IndexAttempts < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for index attempts"))
	}

	if config.MinDocLength == 0 {
		config.MinDocLength = DefaultMinDocLength
	}

	return err
}
