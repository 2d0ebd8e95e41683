package crawler

import "errors"

var (
	// ErrAlreadyCrawling is returned when Crawl is invoked while another
	// run is in progress on the same Crawler.
	ErrAlreadyCrawling = errors.New("a crawl is already in progress")

	// ErrCrawlInterrupted is returned when a run stops before the frontier
	// drained, either because its context was cancelled or because the
	// bootstrap claim panicked. State gathered up to that point is still
	// persisted.
	ErrCrawlInterrupted = errors.New("crawl interrupted")

	// ErrInvalidDepth is returned for a negative maximum depth.
	ErrInvalidDepth = errors.New("max depth must be >= 0")
)
