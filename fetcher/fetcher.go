// Package fetcher retrieves HTML pages over HTTP and extracts the parts the
// crawler and the indexer care about: title, visible text, code blocks and
// outbound links.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/33.0.1750.152 Safari/537.36"

	// DefaultReferrer is sent as the Referer header unless overridden.
	DefaultReferrer = "http://www.google.com"

	// DefaultMaxBodySize caps the number of body bytes read per page.
	DefaultMaxBodySize = 10 << 20
)

// Locate links that point to web pages that don't serve html content.
var exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js|pdf|zip|gz|mp3|mp4)$`)

// Page is the parsed result of a successful fetch.
type Page struct {
	// URL that was requested.
	URL string

	// Location the content was finally served from after redirects.
	Location string

	Title string

	// Visible text with tags stripped and whitespace collapsed.
	Text string

	// Contents of <code> elements and elements carrying the "code" class.
	Code []string

	// Outbound href values, resolved against <base href> when present.
	Links []string

	// Number of body bytes read.
	Size int
}

// HTTPDoer is implemented by objects that can execute HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the optional settings of a Fetcher.
type Config struct {
	// Client used for page fetches; it is expected to follow redirects.
	// If not specified, http.DefaultClient will be used instead.
	Client *http.Client

	// User-Agent header value. Defaults to DefaultUserAgent.
	UserAgent string

	// Referer header value. Defaults to DefaultReferrer.
	Referrer string

	// Upper bound on body bytes read per page. Defaults to DefaultMaxBodySize.
	MaxBodySize int64
}

// Fetcher retrieves and parses HTML pages.
type Fetcher struct {
	client      HTTPDoer
	probe       HTTPDoer
	userAgent   string
	referrer    string
	maxBodySize int64
	policyPool  sync.Pool
}

// New returns a Fetcher configured by cfg.
func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}

	// Probing needs the raw 3xx response instead of its target.
	probe := *client
	probe.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	f := &Fetcher{
		client:      client,
		probe:       &probe,
		userAgent:   cfg.UserAgent,
		referrer:    cfg.Referrer,
		maxBodySize: cfg.MaxBodySize,
		policyPool: sync.Pool{
			New: func() interface{} {
				return bluemonday.StrictPolicy()
			},
		},
	}

	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}

	if f.referrer == "" {
		f.referrer = DefaultReferrer
	}

	if f.maxBodySize <= 0 {
		f.maxBodySize = DefaultMaxBodySize
	}

	return f
}

// Fetch retrieves pageURL, following redirects, and parses the HTML
// response. Non-2xx responses, non-HTML content and transport failures are
// reported as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	if exclusionRegex.MatchString(pageURL) {
		return nil, &FetchError{URL: pageURL, Err: ErrNotHTML}
	}

	res, err := f.do(ctx, f.client, pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)}
	}

	if contentType := res.Header.Get("Content-Type"); !strings.Contains(contentType, "html") {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("%w: %q", ErrNotHTML, contentType)}
	}

	var raw bytes.Buffer
	if _, err = io.Copy(&raw, io.LimitReader(res.Body, f.maxBodySize)); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	location := pageURL
	if res.Request != nil && res.Request.URL != nil {
		location = res.Request.URL.String()
	}

	page := &Page{
		URL:      pageURL,
		Location: location,
		Size:     raw.Len(),
	}

	if err = f.extract(page, raw.Bytes()); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	return page, nil
}

// ProbeRedirect issues a single request for pageURL without following
// redirects and returns the Location header of the response, or an empty
// string when the response is not a redirect.
func (f *Fetcher) ProbeRedirect(ctx context.Context, pageURL string) (string, error) {
	res, err := f.do(ctx, f.probe, pageURL)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
	_ = res.Body.Close()

	if res.StatusCode < 300 || res.StatusCode > 399 {
		return "", nil
	}

	return res.Header.Get("Location"), nil
}

func (f *Fetcher) do(ctx context.Context, client HTTPDoer, pageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", f.referrer)

	return client.Do(req)
}
