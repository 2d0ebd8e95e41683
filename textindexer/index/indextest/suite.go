package indextest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/textindexer/index"
)

// BaseSuite defines a set of re-usable index related tests that can
// be executed against any concrete type that implements the index.Indexer interface.
type BaseSuite struct {
	idx index.Indexer
}

// SetIndex sets BaseSuite's index field.
func (s *BaseSuite) SetIndex(index index.Indexer) {
	s.idx = index
}

// TestIndexingDocument verifies the indexing logic for new and existing documents.
func (s *BaseSuite) TestIndexingDocument(c *check.C) {
	// Upsert new document.
	doc := &index.Document{
		LinkID:    index.LinkIDFor("https://example.com"),
		URL:       "https://example.com",
		Title:     "test document title",
		Content:   "This should be the body text of the document",
		Code:      "fmt.Println(1)",
		Language:  "go",
		Summary:   "This should be the body text.",
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Update existing document
	updatedDoc := &index.Document{
		LinkID:    doc.LinkID,
		URL:       doc.URL,
		Title:     "This is an updated document title",
		Content:   "This is an updated document body",
		Code:      "print(2)",
		Language:  "python",
		Summary:   "This is an updated document body",
		IndexedAt: time.Now().UTC(),
	}

	err = s.idx.Index(updatedDoc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index update++++: %v", err),
	)

	// Query the index to verify the update process.
	d, err := s.idx.FindByID(updatedDoc.LinkID)
	c.Assert(err, check.IsNil)
	assertSameDocument(c, d, updatedDoc)

	// Insert a document without an ID
	docWithoutID := &index.Document{
		URL: "https://example.com",
	}

	err = s.idx.Index(docWithoutID)
	c.Assert(
		errors.Is(err, index.ErrMissingLinkID), check.Equals, true,
		check.Commentf("++++Index insert++++: %v", err),
	)
}

// TestFindByID verifies the document lookup logic.
func (s *BaseSuite) TestFindByID(c *check.C) {
	doc := &index.Document{
		LinkID:    index.LinkIDFor("https://example.com/find"),
		URL:       "https://example.com/find",
		Title:     "test document title",
		Content:   "This should be the body text of the document",
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.idx.Index(doc)
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Index insert++++: %v", err),
	)

	// Perform a doc lookup to verify the insert logic.
	retrievedDoc, err := s.idx.FindByID(doc.LinkID)
	c.Assert(err, check.IsNil)
	assertSameDocument(c, retrievedDoc, doc)

	// Perform a doc lookup for a non existing id.
	_, err = s.idx.FindByID(uuid.New())
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

// TestFullTextSearch verifies the document search logic when searching for
// exact phrases.
func (s *BaseSuite) TestFullTextSearch(c *check.C) {
	expectedIDs := s.indexDocs(c, 50, func(i int, doc *index.Document) bool {
		if i%5 == 0 {
			doc.Content = "Updated Document Body"
			return true
		}

		return false
	})

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypePhrase,
		Expression: "Updated Document Body",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search full-text / phrase++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs)
}

// TestMatchKeywordSearch verifies the document search logic when searching for
// keyword matches.
func (s *BaseSuite) TestMatchKeywordSearch(c *check.C) {
	expectedIDs := s.indexDocs(c, 50, func(i int, doc *index.Document) bool {
		if i%5 == 0 {
			doc.Content = "Updated Document Body"
			return true
		}

		return false
	})

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "updated",
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs)
}

// TestMatchKeywordSearchWithOffset verifies the document search logic when searching
// for keyword matches and skipping some results.
func (s *BaseSuite) TestMatchKeywordSearchWithOffset(c *check.C) {
	expectedIDs := s.indexDocs(c, 50, func(int, *index.Document) bool { return true })

	it, err := s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "body",
		Offset:     20,
	})
	c.Assert(
		err, check.IsNil,
		check.Commentf("++++Search keyword++++: %v", err),
	)
	c.Assert(iterateDocs(c, it), check.DeepEquals, expectedIDs[20:])

	// Search with offset above the total number of results
	it, err = s.idx.Search(index.Query{
		Type:       index.QueryTypeMatch,
		Expression: "body",
		Offset:     200,
	})

	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.HasLen, 0)
}

// TestCodeMatchesOutrankContent checks that a hit inside a code block ranks
// above the same term appearing in the page text.
func (s *BaseSuite) TestCodeMatchesOutrankContent(c *check.C) {
	textDoc := &index.Document{
		LinkID:  index.LinkIDFor("https://example.com/a-text"),
		URL:     "https://example.com/a-text",
		Title:   "first page",
		Content: "call the goroutine scheduler here",
	}
	codeDoc := &index.Document{
		LinkID:  index.LinkIDFor("https://example.com/b-code"),
		URL:     "https://example.com/b-code",
		Title:   "second page",
		Content: "call the helper here with care",
		Code:    "goroutine scheduler",
	}

	c.Assert(s.idx.Index(textDoc), check.IsNil)
	c.Assert(s.idx.Index(codeDoc), check.IsNil)

	it, err := s.idx.Search(index.Query{Expression: "goroutine"})
	c.Assert(err, check.IsNil)
	c.Assert(iterateDocs(c, it), check.DeepEquals, []uuid.UUID{codeDoc.LinkID, textDoc.LinkID})
}

// indexDocs indexes n documents whose URLs sort in insertion order and
// returns the IDs of the documents selected by pick.
func (s *BaseSuite) indexDocs(c *check.C, n int, pick func(int, *index.Document) bool) []uuid.UUID {
	var ids []uuid.UUID

	for i := 0; i < n; i++ {
		url := fmt.Sprintf("https://example.com/doc/%03d", i)
		doc := &index.Document{
			LinkID:  index.LinkIDFor(url),
			URL:     url,
			Title:   fmt.Sprintf("doc number %d", i),
			Content: "This should be the body text of the document",
		}

		if pick(i, doc) {
			ids = append(ids, doc.LinkID)
		}

		err := s.idx.Index(doc)
		c.Assert(
			err, check.IsNil,
			check.Commentf("++++Index insert++++: %v", err),
		)
	}

	return ids
}

func assertSameDocument(c *check.C, got, exp *index.Document) {
	c.Assert(got.LinkID, check.Equals, exp.LinkID)
	c.Assert(got.URL, check.Equals, exp.URL)
	c.Assert(got.Title, check.Equals, exp.Title)
	c.Assert(got.Content, check.Equals, exp.Content)
	c.Assert(got.Code, check.Equals, exp.Code)
	c.Assert(got.Language, check.Equals, exp.Language)
	c.Assert(got.Summary, check.Equals, exp.Summary)
	c.Assert(got.IndexedAt.Equal(exp.IndexedAt), check.Equals, true,
		check.Commentf("indexed at %v, expected %v", got.IndexedAt, exp.IndexedAt))
}

func iterateDocs(c *check.C, it index.Iterator) []uuid.UUID {
	var docIDs []uuid.UUID
	for it.Next() {
		docIDs = append(docIDs, it.Document().LinkID)
	}

	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return docIDs
}
