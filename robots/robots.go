// Package robots turns a host's robots.txt into exclusion prefixes for the
// crawler frontier.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/urlnorm"
)

// ErrRobotsUnavailable is reported when a robots.txt file cannot be
// retrieved. The gate treats it as "no rules".
var ErrRobotsUnavailable = errors.New("robots.txt unavailable")

// Upper bound for the size of a robots.txt body.
const maxRobotsSize = 512 * 1024

// HTTPDoer is implemented by objects that can execute HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Gate fetches and parses robots.txt files.
type Gate struct {
	client    HTTPDoer
	userAgent string
	logger    *logrus.Entry
}

// NewGate returns a Gate that issues requests through client using the
// given User-Agent. A nil logger discards all output.
func NewGate(client HTTPDoer, userAgent string, logger *logrus.Entry) *Gate {
	if client == nil {
		client = http.DefaultClient
	}

	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return &Gate{client: client, userAgent: userAgent, logger: logger}
}

// FetchExclusions returns the normalized Disallow prefixes that apply to
// every user agent on pageURL's host. It never fails; an unreachable or
// missing robots.txt yields no exclusions.
func (g *Gate) FetchExclusions(ctx context.Context, pageURL string) []string {
	base := urlnorm.HostKey(pageURL)
	if base == "" {
		return nil
	}

	body, err := g.fetch(ctx, base+"/robots.txt")
	if err != nil {
		g.logger.WithField("host", base).WithError(err).Debug("no robots rules")
		return nil
	}
	defer func() { _ = body.Close() }()

	exclusions := Parse(io.LimitReader(body, maxRobotsSize), base)
	if len(exclusions) > 0 {
		g.logger.WithFields(logrus.Fields{
			"host":       base,
			"exclusions": len(exclusions),
		}).Debug("parsed robots rules")
	}

	return exclusions
}

func (g *Gate) fetch(ctx context.Context, robotsURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRobotsUnavailable, err)
	}

	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRobotsUnavailable, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrRobotsUnavailable, res.StatusCode)
	}

	return res.Body, nil
}

// Parse extracts the Disallow rules of the groups addressed to "*" and
// resolves them against base. Rules that use wildcards, query or fragment
// markers are skipped. The result preserves file order without duplicates.
func Parse(r io.Reader, base string) []string {
	var (
		exclusions   []string
		seen         = make(map[string]struct{})
		activeGroup  bool
		lastWasAgent bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 && !isDisallow(line) {
			line = line[:idx]
		}

		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		switch key {
		case "user-agent":
			matches := value == "*"
			if lastWasAgent {
				activeGroup = activeGroup || matches
			} else {
				activeGroup = matches
			}
			lastWasAgent = true
			continue
		case "disallow":
			if activeGroup {
				if prefix, ok := disallowPrefix(value, base); ok {
					if _, dup := seen[prefix]; !dup {
						seen[prefix] = struct{}{}
						exclusions = append(exclusions, prefix)
					}
				}
			}
		}

		lastWasAgent = false
	}

	return exclusions
}

func isDisallow(line string) bool {
	key, _, ok := splitDirective(line)
	return ok && key == "disallow"
}

func splitDirective(line string) (string, string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx == -1 {
		return "", "", false
	}

	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	value := strings.TrimSpace(line[idx+1:])

	return key, value, key != ""
}

func disallowPrefix(value, base string) (string, bool) {
	if value == "" || strings.ContainsAny(value, "*?#") {
		return "", false
	}

	if _, err := url.Parse(value); err != nil {
		return "", false
	}

	prefix, err := urlnorm.Normalize(value, base)
	if err != nil {
		return "", false
	}

	return prefix, true
}
