package crawler

import (
	"context"
	"fmt"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/crawler/mocks"
	"github.com/mycok/uCrawl/crawlstate/store/memory"
)

var _ = check.Suite(new(redirectTestSuite))

type redirectTestSuite struct{}

func (s *redirectTestSuite) newRun(c *check.C, f Fetcher, maxRedirects int) *run {
	cfg := Config{
		Fetcher:      f,
		IndexOpener:  IndexOpenerFunc(func(string) (MiniIndexer, error) { return nil, nil }),
		StateStore:   memory.NewStore(),
		MaxRedirects: maxRedirects,
	}
	c.Assert(cfg.validate(), check.IsNil)

	return newRun(&cfg, 0, "loc", false)
}

func (s *redirectTestSuite) TestChainIsBoundedByMaxRedirects(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	f := mocks.NewMockFetcher(ctrl)
	f.EXPECT().ProbeRedirect(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u string) (string, error) {
			var n int
			_, _ = fmt.Sscanf(u, "https://x.com/%d", &n)
			return fmt.Sprintf("/%d", n+1), nil
		},
	).Times(3)

	r := s.newRun(c, f, 3)
	r.resolveRedirects(context.TODO(), "https://x.com/1", "https://x.com/final")

	c.Assert(r.frontier.Visited(), check.DeepEquals, []string{
		"https://x.com/2", "https://x.com/3", "https://x.com/4", "https://x.com/final",
	})
}

func (s *redirectTestSuite) TestChainStopsAtSelfRedirect(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	f := mocks.NewMockFetcher(ctrl)
	gomock.InOrder(
		f.EXPECT().ProbeRedirect(gomock.Any(), "https://x.com/a").Return("https://x.com/b/", nil),
		f.EXPECT().ProbeRedirect(gomock.Any(), "https://x.com/b").Return("/b", nil),
	)

	r := s.newRun(c, f, 0)
	r.resolveRedirects(context.TODO(), "https://x.com/a", "https://x.com/c")

	c.Assert(r.frontier.Visited(), check.DeepEquals, []string{"https://x.com/b", "https://x.com/c"})
}

func (s *redirectTestSuite) TestChainEndsAtFinalLocation(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	f := mocks.NewMockFetcher(ctrl)
	f.EXPECT().ProbeRedirect(gomock.Any(), "https://x.com/a").Return("https://x.com/c", nil)

	r := s.newRun(c, f, 0)
	r.resolveRedirects(context.TODO(), "https://x.com/a", "https://x.com/c")

	c.Assert(r.frontier.Visited(), check.DeepEquals, []string{"https://x.com/c"})
}
