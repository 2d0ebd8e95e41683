package index

import (
	"time"

	"github.com/google/uuid"
)

// Document defines a web-page whose content has been successfully indexed.
type Document struct {
	// ID of the document, derived from its URL with LinkIDFor.
	LinkID uuid.UUID

	// URL pointing to the source of the document content.
	URL string

	// Title of the document (if available).
	Title string

	// Body of the document.
	Content string

	// Code blocks found in the document, joined by CodeSeparator.
	Code string

	// Programming language the page is most likely about.
	Language string

	// Short extract of the leading sentences of Content.
	Summary string

	// Last time the document was indexed.
	IndexedAt time.Time
}

// CodeSeparator joins individual code blocks of a page.
const CodeSeparator = " ... "

// LinkIDFor returns the stable document ID for a normalized URL. Indexing
// the same URL twice replaces the previous document.
func LinkIDFor(url string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url))
}
