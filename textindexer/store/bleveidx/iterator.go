package bleveidx

import (
	"github.com/blevesearch/bleve"

	"github.com/mycok/uCrawl/textindexer/index"
)

// Static and compile-time check to ensure docIterator implements
// index.Iterator interface.
var _ index.Iterator = (*docIterator)(nil)

// docIterator is an index.Iterator implementation for bleve indices.
type docIterator struct {
	idx       *Index
	searchReq *bleve.SearchRequest
	// Cumulative index tracks the absolute position in the result list.
	cumIdx uint64
	// Search Result Index tracks the position in the current page list.
	searchResIdx int
	searchRes    *bleve.SearchResult
	doc          *index.Document
	lastErr      error
}

// Next loads the next item, returns false when no more items
// are available or when an error occurs.
func (i *docIterator) Next() bool {
	if i.lastErr != nil || i.searchRes == nil || i.cumIdx >= i.searchRes.Total {
		return false
	}

	// Fetch the next batch once the current page is exhausted.
	if i.searchResIdx >= i.searchRes.Hits.Len() {
		i.searchReq.From += i.searchReq.Size
		i.searchRes, i.lastErr = i.idx.search(i.searchReq)
		if i.lastErr != nil {
			return false
		}

		i.searchResIdx = 0
		if i.searchRes.Hits.Len() == 0 {
			return false
		}
	}

	hit := i.searchRes.Hits[i.searchResIdx]
	i.doc, i.lastErr = mapHit(hit.ID, hit.Fields)
	if i.lastErr != nil {
		return false
	}

	i.searchResIdx++
	i.cumIdx++

	return true
}

// Document returns the current document from the result set.
func (i *docIterator) Document() *index.Document {
	return i.doc
}

// TotalCount returns the approximated total number of search results.
func (i *docIterator) TotalCount() uint64 {
	if i.searchRes == nil {
		return 0
	}

	return i.searchRes.Total
}

// Error returns the last error encountered by the iterator.
func (i *docIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *docIterator) Close() error {
	i.idx = nil
	i.searchReq = nil

	if i.searchRes != nil {
		i.cumIdx = i.searchRes.Total
	}

	return nil
}
