package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mycok/uCrawl/crawler"
	"github.com/mycok/uCrawl/search"
	"github.com/mycok/uCrawl/textindexer/store/bleveidx"
)

// NewSearchCmd creates the search command.
func NewSearchCmd(global *globalOptions) *cobra.Command {
	var (
		indexLocation string
		indexURI      string
		numResults    int
	)

	cmd := &cobra.Command{
		Use:   "search [flags] QUERY...",
		Short: "Query the index of a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(global.configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("index") && cfg.Crawl.IndexLocation != "" {
				indexLocation = cfg.Crawl.IndexLocation
			}
			if !flags.Changed("index-backend") && cfg.Storage.Index != "" {
				indexURI = cfg.Storage.Index
			}
			if !flags.Changed("results") && cfg.Search.Results > 0 {
				numResults = cfg.Search.Results
			}

			logger, err := global.rootLogger()
			if err != nil {
				return err
			}

			indexes, err := newIndexBackend(indexURI, logger)
			if err != nil {
				return err
			}

			if indexes.scheme == "bleve" && !bleveidx.Exists(indexLocation) {
				return fmt.Errorf("no index found at %q", indexLocation)
			}

			idx, err := indexes.open(indexLocation)
			if err != nil {
				return err
			}
			defer func() {
				if closer, ok := idx.(io.Closer); ok {
					if cErr := closer.Close(); cErr != nil && err == nil {
						err = cErr
					}
				}
			}()

			searcher, err := search.NewSearcher(search.Config{
				Index:      idx,
				NumResults: numResults,
				Logger:     logger.WithField("component", "search"),
			})
			if err != nil {
				return err
			}

			res, err := searcher.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), res)

			return nil
		},
	}

	cmd.Flags().StringVarP(&indexLocation, "index", "i", crawler.DefaultIndexLocation, "Index location")
	cmd.Flags().StringVar(&indexURI, "index-backend", "bleve://",
		"Text index backend [supported URI's: bleve://, es://node1:9200,...,nodeN:9200]")
	cmd.Flags().IntVarP(&numResults, "results", "n", search.DefaultNumResults, "Number of results")

	return cmd
}

func printResults(w io.Writer, res search.Results) {
	fmt.Fprintf(w, "total matching documents: %d\n", res.Total)

	for _, hit := range res.Hits {
		fmt.Fprintf(w, "\n%d. %s\n   %s\n", hit.Rank, hit.Title, hit.URL)
		if hit.Language != "" {
			fmt.Fprintf(w, "   language: %s\n", hit.Language)
		}
		fmt.Fprintf(w, "   %s\n", hit.Summary)
	}
}
