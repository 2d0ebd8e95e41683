package crawler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/textindexer/index"
)

// Pause between attempts to open or write into a locked index.
const indexRetryDelay = 100 * time.Millisecond

// Languages are checked in order; the first match wins. Languages whose
// names commonly appear in page chrome are only looked for in code.
var languages = []struct {
	name     string
	needle   string
	codeOnly bool
}{
	{"javascript", "javascript", true},
	{"java", "java", false},
	{"c++", "c++", false},
	{"c#", "c#", false},
	{"ruby", "ruby", false},
	{"scala", " scala ", false},
	{"python", "python", false},
	{"sql", "sql", false},
	{"assembly", "assembly", false},
	{"pascal", "pascal", false},
	{"fortran", "fortran", false},
	{"php", "php", true},
	{"cuda", "cuda", false},
	{"latex", "latex", false},
	{"matlab", "matlab", false},
	{"opencl", "opencl", false},
	{"octave", "octave", false},
}

// detectLanguage returns the programming language a page is most likely
// about, or an empty string.
func detectLanguage(code, content string) string {
	code = strings.ToLower(code)
	content = strings.ToLower(content)

	for _, lang := range languages {
		if strings.Contains(code, lang.needle) {
			return lang.name
		}

		if !lang.codeOnly && strings.Contains(content, lang.needle) {
			return lang.name
		}
	}

	return ""
}

func buildDocument(page *fetcher.Page, docURL string, now time.Time) *index.Document {
	code := strings.Join(page.Code, index.CodeSeparator)

	return &index.Document{
		LinkID:    index.LinkIDFor(docURL),
		URL:       docURL,
		Title:     page.Title,
		Content:   page.Text,
		Code:      code,
		Language:  detectLanguage(code, page.Text),
		Summary:   index.Summarize(page.Text, 2),
		IndexedAt: now,
	}
}

// indexPage writes page into the run's index under docURL. Pages that are
// too short are skipped. A page that still finds the index locked after
// the configured attempts is skipped as well; any other failure is
// returned.
func (r *run) indexPage(page *fetcher.Page, docURL string, createIndex bool) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if createIndex && !r.indexReset {
		if err := r.indexer.Reset(); err != nil {
			return fmt.Errorf("unable to reset index: %w", err)
		}
		r.indexReset = true
	}

	if page.Size < r.cfg.MinDocLength {
		r.logger.WithField("url", docURL).Debug("page too short to index")
		return nil
	}

	doc := buildDocument(page, docURL, r.cfg.Clock.Now())

	for attempt := 1; ; attempt++ {
		err := r.indexer.Index(doc)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, index.ErrIndexLocked):
			return err
		case attempt >= r.cfg.IndexAttempts:
			r.logger.WithField("url", docURL).WithError(err).Warn("skipping page, index is locked")
			return nil
		}

		<-r.cfg.Clock.After(indexRetryDelay)
	}
}

// openIndex opens the run's index, retrying while another holder keeps it
// locked.
func (r *run) openIndex() (MiniIndexer, error) {
	for attempt := 1; ; attempt++ {
		idx, err := r.cfg.IndexOpener.OpenIndex(r.location)
		if err == nil || !errors.Is(err, index.ErrIndexLocked) || attempt >= r.cfg.IndexAttempts {
			return idx, err
		}

		r.logger.WithError(err).Warn("index is locked, retrying open")
		<-r.cfg.Clock.After(indexRetryDelay)
	}
}
