// Package bleveidx provides an index.Indexer backed by bleve, stored either
// on disk next to the crawl state or entirely in memory.
package bleveidx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"
	"github.com/google/uuid"

	"github.com/mycok/uCrawl/textindexer/index"
)

const (
	// Size of each page of results that is cached locally by the iterator.
	batchSize = 10

	// Directory created under an index location to hold the bleve files.
	dirName = "index.bleve"

	// DefaultOpenTimeout bounds how long Open waits for another holder of
	// an on-disk index to let go of it.
	DefaultOpenTimeout = time.Second
)

// Per-field weights applied to search queries.
var fieldBoosts = []struct {
	field string
	boost float64
}{
	{field: "Title", boost: 1.5},
	{field: "Code", boost: 2.0},
	{field: "Language", boost: 1.5},
	{field: "Content", boost: 1.0},
}

var (
	// Static and compile-time checks to ensure Index implements the
	// index.Indexer and index.Resetter interfaces.
	_ index.Indexer  = (*Index)(nil)
	_ index.Resetter = (*Index)(nil)
)

type bleveDoc struct {
	URL       string
	Title     string
	Content   string
	Code      string
	Language  string
	Summary   string
	IndexedAt string
}

// Index is an Indexer implementation that uses a bleve instance to index
// and search documents.
type Index struct {
	mu   sync.RWMutex
	path string // Empty for in-memory indices.
	idx  bleve.Index
}

// NewInMemoryIndex instantiates and returns a text indexer that
// uses an in-memory bleve instance to index documents.
func NewInMemoryIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, err
	}

	return &Index{idx: idx}, nil
}

// Open opens the on-disk index kept under location, creating it when it
// does not exist yet. An index held by someone else for longer than
// DefaultOpenTimeout is reported as index.ErrIndexLocked.
func Open(location string) (*Index, error) {
	return OpenWithTimeout(location, DefaultOpenTimeout)
}

// OpenWithTimeout is Open with an explicit bound on the wait for the
// index lock.
func OpenWithTimeout(location string, timeout time.Duration) (*Index, error) {
	path := filepath.Join(location, dirName)

	idx, err := openBounded(path, timeout)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if err = os.MkdirAll(location, 0o755); err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}

		idx, err = bleve.New(path, newMapping())
	}

	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}

	return &Index{path: path, idx: idx}, nil
}

type openResult struct {
	idx bleve.Index
	err error
}

// openBounded opens the index at path, giving up after timeout. The bolt
// store behind a bleve v1 index waits on its file lock without a deadline,
// so the open runs on its own goroutine; if it completes after the caller
// gave up, the index is closed again.
func openBounded(path string, timeout time.Duration) (bleve.Index, error) {
	resCh := make(chan openResult, 1)
	go func() {
		idx, err := bleve.Open(path)
		resCh <- openResult{idx: idx, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-resCh:
		return res.idx, res.err
	case <-timer.C:
		go func() {
			if res := <-resCh; res.err == nil {
				_ = res.idx.Close()
			}
		}()

		return nil, index.ErrIndexLocked
	}
}

// Exists reports whether an on-disk index has been created under location.
func Exists(location string) bool {
	_, err := os.Stat(filepath.Join(location, dirName))
	return err == nil
}

// Close releases / frees any previously allocated resources.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.idx.Close()
}

// Reset drops every indexed document.
func (s *Index) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Close(); err != nil {
		return fmt.Errorf("index: reset: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)

	if s.path == "" {
		idx, err = bleve.NewMemOnly(newMapping())
	} else {
		if err = os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("index: reset: %w", err)
		}

		idx, err = bleve.New(s.path, newMapping())
	}

	if err != nil {
		return fmt.Errorf("index: reset: %w", err)
	}

	s.idx = idx

	return nil
}

// Index adds a new document or updates an existing index entry
// in case of an existing document.
func (s *Index) Index(doc *index.Document) error {
	if doc.LinkID == uuid.Nil {
		return fmt.Errorf("index: %w", index.ErrMissingLinkID)
	}

	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Index(doc.LinkID.String(), makeBleveDoc(doc)); err != nil {
		return fmt.Errorf("index: insert: %w", err)
	}

	return nil
}

// FindByID looks up a document by its link ID.
func (s *Index) FindByID(linkID uuid.UUID) (*index.Document, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{linkID.String()}))
	req.Fields = []string{"*"}

	s.mu.RLock()
	res, err := s.idx.Search(req)
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("index: find by ID: %w", err)
	}

	if len(res.Hits) != 1 {
		return nil, fmt.Errorf("index: find by ID: %w", index.ErrNotFound)
	}

	return mapHit(res.Hits[0].ID, res.Hits[0].Fields)
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *Index) Search(q index.Query) (index.Iterator, error) {
	clauses := make([]query.Query, 0, len(fieldBoosts))
	for _, fb := range fieldBoosts {
		switch q.Type {
		case index.QueryTypePhrase:
			mq := bleve.NewMatchPhraseQuery(q.Expression)
			mq.SetField(fb.field)
			mq.SetBoost(fb.boost)
			clauses = append(clauses, mq)
		default:
			mq := bleve.NewMatchQuery(q.Expression)
			mq.SetField(fb.field)
			mq.SetBoost(fb.boost)
			clauses = append(clauses, mq)
		}
	}

	searchReq := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(clauses...))
	searchReq.SortBy([]string{"-_score", "URL"})
	searchReq.Fields = []string{"*"}
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)

	s.mu.RLock()
	sr, err := s.idx.Search(searchReq)
	s.mu.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}

	return &docIterator{
		idx:       s,
		searchReq: searchReq,
		searchRes: sr,
		cumIdx:    q.Offset,
	}, nil
}

func (s *Index) search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.idx.Search(req)
}

func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.IncludeInAll = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("URL", kw)
	docMapping.AddFieldMappingsAt("Title", text)
	docMapping.AddFieldMappingsAt("Content", text)
	docMapping.AddFieldMappingsAt("Code", text)
	docMapping.AddFieldMappingsAt("Language", text)
	docMapping.AddFieldMappingsAt("Summary", stored)
	docMapping.AddFieldMappingsAt("IndexedAt", stored)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping

	return im
}

func makeBleveDoc(doc *index.Document) bleveDoc {
	return bleveDoc{
		URL:       doc.URL,
		Title:     doc.Title,
		Content:   doc.Content,
		Code:      doc.Code,
		Language:  doc.Language,
		Summary:   doc.Summary,
		IndexedAt: doc.IndexedAt.UTC().Format(time.RFC3339Nano),
	}
}

func mapHit(id string, fields map[string]interface{}) (*index.Document, error) {
	linkID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("index: parse document id %q: %w", id, err)
	}

	str := func(name string) string {
		v, _ := fields[name].(string)
		return v
	}

	doc := &index.Document{
		LinkID:   linkID,
		URL:      str("URL"),
		Title:    str("Title"),
		Content:  str("Content"),
		Code:     str("Code"),
		Language: str("Language"),
		Summary:  str("Summary"),
	}

	if at := str("IndexedAt"); at != "" {
		if doc.IndexedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("index: parse indexed at %q: %w", at, err)
		}
	}

	return doc, nil
}
