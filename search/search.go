// Package search runs queries against a crawl index and shapes the hits
// into ranked results with highlighted summaries.
package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/textindexer/index"
)

const (
	DefaultNumResults    = 10
	DefaultMaxSentences  = 2
	DefaultMaxSummaryLen = 256

	// Stored summaries longer than this are truncated.
	storedSummaryLen = 140

	noTitle     = "No title available for this document"
	noURL       = "No URL available for this document"
	noCode      = "No code snippets available for this document"
	noHighlight = "No highlights for this document."
)

// Result is a single ranked hit.
type Result struct {
	Rank     int
	Title    string
	URL      string
	Summary  string
	Code     string
	Language string
}

// Results is the outcome of a query.
type Results struct {
	// Approximate number of matching documents.
	Total uint64

	Hits []Result
}

// Config defines configurations for the searcher.
type Config struct {
	// The index to query.
	Index index.Indexer

	// Number of hits returned per query.
	NumResults int

	// Upper bound on highlighted sentences per hit.
	MaxSentences int

	// Upper bound on the highlight length in characters.
	MaxSummaryLen int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Index == nil {
		err = multierror.Append(err, fmt.Errorf("index not provided"))
	}

	if config.NumResults <= 0 {
		config.NumResults = DefaultNumResults
	}

	if config.MaxSentences <= 0 {
		config.MaxSentences = DefaultMaxSentences
	}

	if config.MaxSummaryLen <= 0 {
		config.MaxSummaryLen = DefaultMaxSummaryLen
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Searcher queries an index.
type Searcher struct {
	cfg Config
}

// NewSearcher returns a Searcher configured by cfg.
func NewSearcher(cfg Config) (*Searcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("search: config validation failed: %w", err)
	}

	return &Searcher{cfg: cfg}, nil
}

// Search runs query against the index and returns up to NumResults hits in
// rank order. A query wrapped in double quotes is matched as a phrase.
func (s *Searcher) Search(query string) (Results, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return Results{}, nil
	}

	q := index.Query{Type: index.QueryTypeMatch, Expression: query}
	if len(query) > 1 && strings.HasPrefix(query, `"`) && strings.HasSuffix(query, `"`) {
		q.Type = index.QueryTypePhrase
		q.Expression = strings.Trim(query, `"`)
	}

	it, err := s.cfg.Index.Search(q)
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = it.Close() }()

	summarizer := newMatchSummarizer(query, s.cfg.MaxSentences, s.cfg.MaxSummaryLen)
	results := Results{Total: it.TotalCount()}

	for len(results.Hits) < s.cfg.NumResults && it.Next() {
		doc := it.Document()
		results.Hits = append(results.Hits, Result{
			Rank:     len(results.Hits) + 1,
			Title:    orDefault(doc.Title, noTitle),
			URL:      orDefault(doc.URL, noURL),
			Code:     orDefault(doc.Code, noCode),
			Language: doc.Language,
			Summary:  highlight(summarizer, doc),
		})
	}

	if err = it.Error(); err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"query": query,
		"total": results.Total,
		"hits":  len(results.Hits),
	}).Debug("search complete")

	return results, nil
}

func highlight(summarizer *matchSummarizer, doc *index.Document) string {
	if summary := summarizer.Summary(doc.Content); summary != "" {
		return summary
	}

	summary := strings.NewReplacer("\n", "", "\r", "").Replace(doc.Summary)
	if runes := []rune(summary); len(runes) > storedSummaryLen {
		summary = string(runes[:storedSummaryLen]) + "..."
	}

	return orDefault(summary, noHighlight)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
