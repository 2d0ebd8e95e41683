package crawler

import (
	"context"

	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/textindexer/index"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/uCrawl/crawler Fetcher,ExclusionFetcher,MiniIndexer,URLValidator

// Fetcher should be implemented by objects that can retrieve and parse web
// pages.
type Fetcher interface {
	// Fetch retrieves and parses the page at url, following redirects.
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)

	// ProbeRedirect returns the Location a single non-following request
	// to url is redirected to, or an empty string.
	ProbeRedirect(ctx context.Context, url string) (string, error)
}

// ExclusionFetcher should be implemented by objects that can tell which
// URL prefixes of a host must not be crawled.
type ExclusionFetcher interface {
	// FetchExclusions returns the normalized prefixes excluded on the
	// host of pageURL. It never fails.
	FetchExclusions(ctx context.Context, pageURL string) []string
}

// MiniIndexer should be implemented by objects that can index documents
// discovered by the crawler component.
type MiniIndexer interface {
	// Index adds a new document or updates an existing index entry
	// in case of an existing document.
	Index(doc *index.Document) error

	// Reset drops every indexed document.
	Reset() error
}

// IndexOpener should be implemented by objects that can open the index
// stored at a location.
type IndexOpener interface {
	OpenIndex(location string) (MiniIndexer, error)
}

// IndexOpenerFunc adapts a function to the IndexOpener interface.
type IndexOpenerFunc func(location string) (MiniIndexer, error)

// OpenIndex calls f(location).
func (f IndexOpenerFunc) OpenIndex(location string) (MiniIndexer, error) {
	return f(location)
}

// URLValidator should be implemented by objects that decide whether a
// discovered URL may enter the frontier.
type URLValidator interface {
	IsValid(url string) bool
}

// PrivateNetworkDetector should be implemented by objects that can detect
// whether a host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(address string) (bool, error)
}

type acceptAll struct{}

func (acceptAll) IsValid(string) bool { return true }
