package crawler

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uCrawl/frontier"
	"github.com/mycok/uCrawl/urlnorm"
)

// claim processes a single ready link and reports whether it counted as
// work. Excluded links count as claimed; links found already visited do
// not. A link is attempted at most once per run whatever the outcome of
// its fetch. When createIndex is set the index is reset before the first write.
func (r *run) claim(ctx context.Context, item frontier.Item, createIndex bool) bool {
	logger := r.logger.WithFields(logrus.Fields{
		"url":   item.URL,
		"depth": item.Depth,
	})

	target, err := urlnorm.Normalize(item.URL, "")
	if err != nil {
		logger.WithError(err).Debug("dropping malformed link")
		return false
	}

	if r.frontier.IsVisited(target) || !r.frontier.MarkAttempted(target) {
		return false
	}

	if !r.frontier.IsVisitedHost(target) && r.frontier.MarkRobotsChecked(target) {
		r.frontier.AddExclusions(r.cfg.RobotsGate.FetchExclusions(ctx, target)...)
	}

	if r.frontier.IsExcluded(target) {
		logger.Debug("skipping excluded link")
		return true
	}

	switch {
	case item.Depth+1 <= r.maxDepth:
		r.visit(ctx, logger, target, item.Depth, true, createIndex)
	case item.Depth == r.maxDepth:
		r.visit(ctx, logger, target, item.Depth, false, createIndex)
	default:
		return false
	}

	return true
}

// visit fetches target, indexes it and, when expand is set, queues its
// outbound links one level deeper.
func (r *run) visit(
	ctx context.Context, logger *logrus.Entry, target string, depth int, expand, createIndex bool,
) {
	page, err := r.cfg.Fetcher.Fetch(ctx, target)
	if err != nil {
		logger.WithError(err).Warn("fetch failed")
		return
	}

	final := target
	if page.Location != "" {
		if loc, err := urlnorm.Normalize(page.Location, target); err == nil {
			final = loc
		}
	}

	// A redirect onto a page this run already saw.
	duplicate := final != target && r.frontier.IsVisited(final)

	if !duplicate {
		if err := r.indexPage(page, final, createIndex); err != nil {
			logger.WithError(err).Error("indexing failed")
			return
		}
	}

	if final != target {
		r.resolveRedirects(ctx, target, final)
	}

	if expand && !duplicate {
		r.expand(page.Links, final, depth+1)
	}

	r.frontier.MarkVisited(target)
}

func (r *run) expand(links []string, base string, depth int) {
	seen := make(map[string]struct{}, len(links))
	items := make([]frontier.Item, 0, len(links))

	for _, link := range links {
		u, err := urlnorm.Normalize(link, base)
		if err != nil || u == base {
			continue
		}

		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		items = append(items, frontier.Item{URL: u, Depth: depth})
	}

	r.frontier.AddTentative(items...)
}
