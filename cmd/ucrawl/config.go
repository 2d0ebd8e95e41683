package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/mycok/uCrawl/crawler"
	"github.com/mycok/uCrawl/search"
)

const configRelPath = "ucrawl/config.toml"

// duration decodes TOML strings such as "500ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))

	return err
}

// fileConfig mirrors the TOML config file. Command-line flags override it.
type fileConfig struct {
	Crawl struct {
		MaxDepth            int
		IndexLocation       string
		Workers             int
		Politeness          duration
		PollInterval        duration
		ReportInterval      duration
		UserAgent           string
		SkipPrivateNetworks bool
	}

	Storage struct {
		// in-memory://, bleve:// (default) or es://host1:9200,host2:9200
		Index string

		// file:// (default), in-memory:// or postgresql://...
		State string
	}

	Search struct {
		Results int
	}
}

func defaultConfig() fileConfig {
	var cfg fileConfig

	cfg.Crawl.MaxDepth = 1
	cfg.Crawl.IndexLocation = crawler.DefaultIndexLocation
	cfg.Crawl.Workers = crawler.DefaultMaxWorkers
	cfg.Crawl.Politeness.Duration = crawler.DefaultPolitenessDelay
	cfg.Crawl.PollInterval.Duration = crawler.DefaultPollInterval
	cfg.Crawl.ReportInterval.Duration = 10 * time.Second
	cfg.Storage.Index = "bleve://"
	cfg.Storage.State = "file://"
	cfg.Search.Results = search.DefaultNumResults

	return cfg
}

// loadConfig reads path, or the config file found in the XDG config
// directories when path is empty. A missing default file yields the
// defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultConfig()

	if path == "" {
		found, err := xdg.SearchConfigFile(configRelPath)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config file %s does not exist", path)
		}

		return cfg, fmt.Errorf("unable to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
