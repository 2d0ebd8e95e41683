package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/mycok/uCrawl/textindexer/index"
)

var (
	// Static and compile-time checks to ensure ElasticsearchIndex implements
	// the index.Indexer and index.Resetter interfaces.
	_ index.Indexer  = (*ElasticsearchIndex)(nil)
	_ index.Resetter = (*ElasticsearchIndex)(nil)

	invalidIndexChars = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// Size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Prefix of every elasticsearch index created by the crawler.
const indexPrefix = "ucrawl-"

// JSON data structure that defines the properties of an elasticsearch
// document.
var esMappings = `
{
  "mappings" : {
    "properties": {
      "LinkID": {"type": "keyword"},
      "URL": {"type": "keyword"},
      "Title": {"type": "text"},
      "Content": {"type": "text"},
      "Code": {"type": "text"},
      "Language": {"type": "text"},
      "Summary": {"type": "text", "index": false},
      "IndexedAt": {"type": "date"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	LinkID    string    `json:"LinkID"`
	URL       string    `json:"URL"`
	Title     string    `json:"Title"`
	Content   string    `json:"Content"`
	Code      string    `json:"Code"`
	Language  string    `json:"Language"`
	Summary   string    `json:"Summary"`
	IndexedAt time.Time `json:"IndexedAt"`
}

type esUpdateRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// IndexNameFor derives the elasticsearch index name used for an index
// location.
func IndexNameFor(location string) string {
	name := invalidIndexChars.ReplaceAllString(strings.ToLower(location), "-")
	name = strings.Trim(name, "-_")
	if name == "" {
		name = "default"
	}

	return indexPrefix + name
}

// ElasticsearchIndex is an Indexer implementation that uses elasticsearch
// to index / catalogue and search documents.
type ElasticsearchIndex struct {
	client      *elasticsearch.Client
	indexName   string
	refreshOpts func(*esapi.UpdateRequest)
}

// NewEsIndexer instantiates and returns an index that uses the named
// elasticsearch index to store and query documents. The index is created
// if missing.
func NewEsIndexer(
	esNodes []string, indexName string, shouldSyncUpdates bool,
) (*ElasticsearchIndex, error) {

	cfg := elasticsearch.Config{
		Addresses: esNodes,
	}

	c, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err = initIndex(c, indexName); err != nil {
		return nil, err
	}

	refreshOpts := c.Update.WithRefresh("false")

	if shouldSyncUpdates {
		refreshOpts = c.Update.WithRefresh("true")
	}

	return &ElasticsearchIndex{
		client:      c,
		indexName:   indexName,
		refreshOpts: refreshOpts,
	}, nil
}

// Reset deletes and re-creates the elasticsearch index.
func (s *ElasticsearchIndex) Reset() error {
	res, err := s.client.Indices.Delete([]string{s.indexName})
	if err != nil {
		return fmt.Errorf("index: reset: %w", err)
	}
	_ = res.Body.Close()

	if err = initIndex(s.client, s.indexName); err != nil {
		return fmt.Errorf("index: reset: %w", err)
	}

	return nil
}

// Index adds a new document or updates an existing index entry
// in case of an existing document.
func (s *ElasticsearchIndex) Index(doc *index.Document) error {
	if doc.LinkID == uuid.Nil {
		return fmt.Errorf("index: %w", index.ErrMissingLinkID)
	}

	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now().UTC()
	}

	var (
		buf   bytes.Buffer
		esDoc = makeEsDoc(doc)
	)

	forUpdate := map[string]interface{}{
		"doc":           esDoc,
		"doc_as_upsert": true,
	}

	if err := json.NewEncoder(&buf).Encode(forUpdate); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	res, err := s.client.Update(s.indexName, esDoc.LinkID, &buf, s.refreshOpts)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		_ = res.Body.Close()
		return fmt.Errorf("index: %w", index.ErrIndexLocked)
	}

	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return fmt.Errorf("index: %w", err)
	}

	return nil
}

// FindByID looks up a document by its link ID.
func (s *ElasticsearchIndex) FindByID(linkID uuid.UUID) (*index.Document, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"LinkID": linkID.String(),
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := performSearch(s.client, s.indexName, query)
	if err != nil {
		return nil, fmt.Errorf("find by ID: %w", err)
	}

	if len(searchRes.Hits.HitList) == 0 {
		return nil, fmt.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return esDocToDoc(&searchRes.Hits.HitList[0].DocSource), nil
}

// Search performs a look up based on query and returns a result
// iterator if successful or an error otherwise.
func (s *ElasticsearchIndex) Search(q index.Query) (index.Iterator, error) {
	var queryType string

	switch q.Type {
	case index.QueryTypePhrase:
		queryType = "phrase"
	default:
		queryType = "best_fields"
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"type":   queryType,
				"query":  q.Expression,
				"fields": []string{"Title^1.5", "Code^2", "Language^1.5", "Content"},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"URL": "asc"},
		},
		"from": q.Offset,
		"size": batchSize,
	}

	searchRes, err := performSearch(s.client, s.indexName, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &esIterator{
		client:    s.client,
		indexName: s.indexName,
		searchReq: query,
		searchRes: searchRes,
		cumIdx:    q.Offset,
	}, nil
}

func performSearch(
	client *elasticsearch.Client, indexName string, query map[string]interface{},
) (*esSearchRes, error) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := client.Search(
		client.Search.WithContext(context.Background()),
		client.Search.WithIndex(indexName),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func initIndex(client *elasticsearch.Client, indexName string) error {
	mappingsReader := strings.NewReader(esMappings)

	res, err := client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(mappingsReader),
	)
	// For cases where index creation fails due to client issues,
	// ie network connection issues
	if err != nil {
		return fmt.Errorf("failed to create ES index: %w", err)
	}

	// For cases where index creation fails due to other issues, ie invalid params.
	if res.IsError() {
		err = unMarshalError(res)

		esErr, isSuccessful := err.(esError)
		if isSuccessful && esErr.Type == "resource_already_exists_exception" {
			return nil
		}

		return fmt.Errorf("failed to create ES index: %w", err)
	}

	_ = res.Body.Close()

	return nil
}

func unMarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(into)
}

func esDocToDoc(doc *esDoc) *index.Document {
	return &index.Document{
		LinkID:    uuid.MustParse(doc.LinkID),
		URL:       doc.URL,
		Title:     doc.Title,
		Content:   doc.Content,
		Code:      doc.Code,
		Language:  doc.Language,
		Summary:   doc.Summary,
		IndexedAt: doc.IndexedAt.UTC(),
	}
}

func makeEsDoc(doc *index.Document) esDoc {
	return esDoc{
		LinkID:    doc.LinkID.String(),
		URL:       doc.URL,
		Title:     doc.Title,
		Content:   doc.Content,
		Code:      doc.Code,
		Language:  doc.Language,
		Summary:   doc.Summary,
		IndexedAt: doc.IndexedAt.UTC(),
	}
}
