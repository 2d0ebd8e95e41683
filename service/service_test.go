package service

import (
	"context"
	"errors"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/crawler"
)

var _ = check.Suite(new(CrawlServiceTestSuite))
var _ = check.Suite(new(ReporterTestSuite))

type CrawlServiceTestSuite struct{}

func (s *CrawlServiceTestSuite) TestConfigValidation(c *check.C) {
	_, err := NewCrawlService(CrawlConfig{MaxDepth: -1})
	c.Assert(err, check.ErrorMatches, "(?ms).*crawler not provided.*no seeds provided.*invalid value for max depth.*")
}

func (s *CrawlServiceTestSuite) TestRunPassesArgumentsAndKeepsSummary(c *check.C) {
	fake := &fakeCrawler{summary: crawler.Summary{NewlyVisited: []string{"https://a.com"}}}

	svc, err := NewCrawlService(CrawlConfig{
		Crawler:       fake,
		Seeds:         []string{"https://a.com"},
		MaxDepth:      2,
		IndexLocation: "loc",
		ResetIndex:    true,
	})
	c.Assert(err, check.IsNil)
	c.Assert(svc.Name(), check.Equals, "crawl")

	c.Assert(svc.Run(context.TODO()), check.IsNil)
	c.Assert(fake.seeds, check.DeepEquals, []string{"https://a.com"})
	c.Assert(fake.maxDepth, check.Equals, 2)
	c.Assert(fake.location, check.Equals, "loc")
	c.Assert(fake.reset, check.Equals, true)
	c.Assert(svc.Summary().NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlServiceTestSuite) TestRunReportsCrawlErrors(c *check.C) {
	svc, err := NewCrawlService(CrawlConfig{
		Crawler: &fakeCrawler{err: crawler.ErrCrawlInterrupted},
		Seeds:   []string{"https://a.com"},
	})
	c.Assert(err, check.IsNil)

	c.Assert(errors.Is(svc.Run(context.TODO()), crawler.ErrCrawlInterrupted), check.Equals, true)
}

type ReporterTestSuite struct{}

func (s *ReporterTestSuite) TestConfigValidation(c *check.C) {
	_, err := NewProgressReporter(ReporterConfig{})
	c.Assert(err, check.ErrorMatches, "(?ms).*stats source not provided.*invalid value for report interval.*")
}

func (s *ReporterTestSuite) TestLogsProgressWhileCrawling(c *check.C) {
	logger, hook := logtest.NewNullLogger()
	clk := testclock.NewClock(time.Now())

	svc, err := NewProgressReporter(ReporterConfig{
		Source:   fakeStats{Crawling: true, Visited: 3, Next: 2},
		Clock:    clk,
		Interval: time.Second,
		Logger:   logrus.NewEntry(logger),
	})
	c.Assert(err, check.IsNil)

	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	go func() {
		c.Check(clk.WaitAdvance(time.Second, 10*time.Second, 1), check.IsNil)
		// The next call to After means the first report was written.
		c.Check(clk.WaitAdvance(time.Millisecond, 10*time.Second, 1), check.IsNil)
		cancelFn()
	}()

	c.Assert(svc.Run(ctx), check.IsNil)

	entry := hook.Entries[0]
	c.Assert(entry.Message, check.Equals, "crawl progress")
	c.Assert(entry.Data["visited"], check.Equals, 3)
	c.Assert(entry.Data["next"], check.Equals, 2)
}

func (s *ReporterTestSuite) TestSilentWhenIdle(c *check.C) {
	logger, hook := logtest.NewNullLogger()
	clk := testclock.NewClock(time.Now())

	svc, err := NewProgressReporter(ReporterConfig{
		Source:   fakeStats{},
		Clock:    clk,
		Interval: time.Second,
		Logger:   logrus.NewEntry(logger),
	})
	c.Assert(err, check.IsNil)

	ctx, cancelFn := context.WithCancel(context.TODO())
	defer cancelFn()

	go func() {
		c.Check(clk.WaitAdvance(time.Second, 10*time.Second, 1), check.IsNil)
		c.Check(clk.WaitAdvance(time.Millisecond, 10*time.Second, 1), check.IsNil)
		cancelFn()
	}()

	c.Assert(svc.Run(ctx), check.IsNil)
	c.Assert(hook.Entries, check.HasLen, 0)
}

type fakeCrawler struct {
	summary crawler.Summary
	err     error

	seeds    []string
	maxDepth int
	location string
	reset    bool
}

func (f *fakeCrawler) Crawl(
	_ context.Context, seeds []string, maxDepth int, location string, reset bool,
) (crawler.Summary, error) {
	f.seeds, f.maxDepth, f.location, f.reset = seeds, maxDepth, location, reset

	return f.summary, f.err
}

type fakeStats crawler.Stats

func (f fakeStats) Stats() crawler.Stats { return crawler.Stats(f) }
