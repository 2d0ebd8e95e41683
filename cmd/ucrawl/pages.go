package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mycok/uCrawl/crawler"
)

// NewPagesCmd creates the command listing the persisted set named kind,
// either "visited" or "excluded".
func NewPagesCmd(global *globalOptions, kind string) *cobra.Command {
	var indexLocation, stateURI string

	cmd := &cobra.Command{
		Use:   kind,
		Short: fmt.Sprintf("List the %s pages of an index location", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("index") && cfg.Crawl.IndexLocation != "" {
				indexLocation = cfg.Crawl.IndexLocation
			}
			if !cmd.Flags().Changed("state-store") && cfg.Storage.State != "" {
				stateURI = cfg.Storage.State
			}

			logger, err := global.rootLogger()
			if err != nil {
				return err
			}

			states, err := newStateStore(stateURI, logger)
			if err != nil {
				return err
			}
			defer func() {
				if cErr := closeAll(states); cErr != nil && err == nil {
					err = cErr
				}
			}()

			c, err := crawler.New(crawler.Config{
				IndexOpener: crawler.IndexOpenerFunc(func(string) (crawler.MiniIndexer, error) {
					return nil, fmt.Errorf("%s does not open indexes", kind)
				}),
				StateStore: states,
				Logger:     logger.WithField("component", "crawler"),
			})
			if err != nil {
				return err
			}

			list := c.VisitedPages
			if kind == "excluded" {
				list = c.ExcludedPages
			}

			urls, err := list(indexLocation)
			if err != nil {
				return err
			}

			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&indexLocation, "index", "i", crawler.DefaultIndexLocation, "Index location")
	cmd.Flags().StringVar(&stateURI, "state-store", "file://",
		"Crawl state backend [supported URI's: file://, postgresql://user@host:26257/ucrawl?sslmode=disable]")

	return cmd
}
