package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/crawler/mocks"
	"github.com/mycok/uCrawl/crawlstate/state"
	"github.com/mycok/uCrawl/crawlstate/store/memory"
	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/frontier"
	"github.com/mycok/uCrawl/textindexer/index"
	"github.com/mycok/uCrawl/urlnorm"
)

var _ = check.Suite(new(CrawlerTestSuite))

func Test(t *testing.T) {
	// Run all gocheck test-suites.
	check.TestingT(t)
}

const bodyText = "Some page text that is long enough to be indexed."

type fakePage struct {
	location string
	links    []string
	text     string
}

// fakeWeb serves canned pages, redirects and robots rules.
type fakeWeb struct {
	pages  map[string]fakePage
	probes map[string]string
	robots map[string][]string

	mu          sync.Mutex
	fetched     map[string]int
	robotsCalls map[string]int
	docs        map[string]*index.Document
	indexCalls  map[string]int

	// Called before every fetch when set.
	onFetch func(u string)
}

func newFakeWeb() *fakeWeb {
	return &fakeWeb{
		pages:       make(map[string]fakePage),
		probes:      make(map[string]string),
		robots:      make(map[string][]string),
		fetched:     make(map[string]int),
		robotsCalls: make(map[string]int),
		docs:        make(map[string]*index.Document),
		indexCalls:  make(map[string]int),
	}
}

func (w *fakeWeb) fetch(_ context.Context, u string) (*fetcher.Page, error) {
	w.mu.Lock()
	w.fetched[u]++
	w.mu.Unlock()

	if w.onFetch != nil {
		w.onFetch(u)
	}

	p, found := w.pages[u]
	if !found {
		return nil, &fetcher.FetchError{URL: u, Err: fetcher.ErrUnexpectedStatus}
	}

	text := p.text
	if text == "" {
		text = bodyText
	}

	return &fetcher.Page{
		URL:      u,
		Location: p.location,
		Title:    "title of " + u,
		Text:     text,
		Links:    p.links,
		Size:     len(text),
	}, nil
}

func (w *fakeWeb) probe(_ context.Context, u string) (string, error) {
	return w.probes[u], nil
}

func (w *fakeWeb) exclusions(_ context.Context, u string) []string {
	host := urlnorm.HostKey(u)

	w.mu.Lock()
	w.robotsCalls[host]++
	w.mu.Unlock()

	return w.robots[host]
}

func (w *fakeWeb) index(doc *index.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.docs[doc.URL] = doc
	w.indexCalls[doc.URL]++

	return nil
}

func (w *fakeWeb) fetchCount(u string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.fetched[u]
}

type CrawlerTestSuite struct {
	ctrl    *gomock.Controller
	web     *fakeWeb
	fetcher *mocks.MockFetcher
	robots  *mocks.MockExclusionFetcher
	indexer *mocks.MockMiniIndexer
	store   *memory.Store
}

func (s *CrawlerTestSuite) SetUpTest(c *check.C) {
	s.ctrl = gomock.NewController(c)
	s.web = newFakeWeb()
	s.store = memory.NewStore()

	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(s.web.fetch).AnyTimes()
	s.fetcher.EXPECT().ProbeRedirect(gomock.Any(), gomock.Any()).DoAndReturn(s.web.probe).AnyTimes()

	s.robots = mocks.NewMockExclusionFetcher(s.ctrl)
	s.robots.EXPECT().FetchExclusions(gomock.Any(), gomock.Any()).DoAndReturn(s.web.exclusions).AnyTimes()

	s.indexer = mocks.NewMockMiniIndexer(s.ctrl)
}

func (s *CrawlerTestSuite) TearDownTest(c *check.C) {
	s.ctrl.Finish()
}

func (s *CrawlerTestSuite) newCrawler(c *check.C, maxWorkers int) *Crawler {
	cr, err := New(Config{
		Fetcher:    s.fetcher,
		RobotsGate: s.robots,
		IndexOpener: IndexOpenerFunc(func(string) (MiniIndexer, error) {
			return s.indexer, nil
		}),
		StateStore:      s.store,
		MaxWorkers:      maxWorkers,
		PolitenessDelay: time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		SettleDelay:     time.Millisecond,
	})
	c.Assert(err, check.IsNil)

	return cr
}

func (s *CrawlerTestSuite) indexAnything() {
	s.indexer.EXPECT().Index(gomock.Any()).DoAndReturn(s.web.index).AnyTimes()
}

func (s *CrawlerTestSuite) TestCrawlFollowsLinksUpToMaxDepth(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{
		"/x", "https://b.com/y", "https://a.com/", "mailto:someone@a.com",
	}}
	s.web.pages["https://a.com/x"] = fakePage{links: []string{"/z"}}
	s.web.pages["https://b.com/y"] = fakePage{}
	s.web.pages["https://a.com/z"] = fakePage{}
	s.indexAnything()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com/"}, 1, "loc", false)
	c.Assert(err, check.IsNil)

	expVisited := []string{"https://a.com", "https://a.com/x", "https://b.com/y"}
	c.Assert(summary.NewlyVisited, check.DeepEquals, expVisited)
	c.Assert(summary.NewlyExcluded, check.HasLen, 0)

	c.Assert(s.web.fetchCount("https://a.com/z"), check.Equals, 0)
	c.Assert(s.web.docs, check.HasLen, 3)
	c.Assert(s.web.robotsCalls["https://a.com"], check.Equals, 1)
	c.Assert(s.web.robotsCalls["https://b.com"], check.Equals, 1)

	doc := s.web.docs["https://b.com/y"]
	c.Assert(doc.LinkID, check.Equals, index.LinkIDFor("https://b.com/y"))
	c.Assert(doc.Summary, check.Equals, bodyText)

	persisted, err := s.store.Load("loc", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(persisted, check.DeepEquals, expVisited)
}

func (s *CrawlerTestSuite) TestCrawlWithSingleWorkerCoversEveryHost(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{
		"https://b.com", "https://c.com", "https://d.com",
	}}
	s.web.pages["https://b.com"] = fakePage{}
	s.web.pages["https://c.com"] = fakePage{}
	s.web.pages["https://d.com"] = fakePage{}
	s.indexAnything()

	summary, err := s.newCrawler(c, 1).Crawl(context.TODO(), []string{"https://a.com"}, 1, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{
		"https://a.com", "https://b.com", "https://c.com", "https://d.com",
	})
}

func (s *CrawlerTestSuite) TestCrawlHonoursRobotsExclusions(c *check.C) {
	s.web.robots["https://e.com"] = []string{"https://e.com/private"}
	s.web.pages["https://e.com"] = fakePage{links: []string{"/private/page", "/public", "/privateer"}}
	s.web.pages["https://e.com/public"] = fakePage{}
	s.web.pages["https://e.com/privateer"] = fakePage{}
	s.web.pages["https://e.com/private/page"] = fakePage{}
	s.indexAnything()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://e.com"}, 1, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{
		"https://e.com", "https://e.com/privateer", "https://e.com/public",
	})
	c.Assert(summary.NewlyExcluded, check.DeepEquals, []string{"https://e.com/private"})
	c.Assert(s.web.fetchCount("https://e.com/private/page"), check.Equals, 0)

	excluded, err := s.store.Load("loc", state.Excluded)
	c.Assert(err, check.IsNil)
	c.Assert(excluded, check.DeepEquals, []string{"https://e.com/private"})
}

func (s *CrawlerTestSuite) TestCrawlResolvesRedirectChains(c *check.C) {
	s.web.pages["https://r.com/old"] = fakePage{location: "https://r.com/new"}
	s.web.probes["https://r.com/old"] = "https://r.com/mid"
	s.web.probes["https://r.com/mid"] = "/new"
	s.indexAnything()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://r.com/old"}, 0, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{
		"https://r.com/mid", "https://r.com/new", "https://r.com/old",
	})
	c.Assert(s.web.docs, check.HasLen, 1)
	c.Assert(s.web.docs["https://r.com/new"], check.NotNil)
}

func (s *CrawlerTestSuite) TestRedirectOntoVisitedPageIsIndexedOnce(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"/one", "/two"}}
	s.web.pages["https://a.com/one"] = fakePage{}
	s.web.pages["https://a.com/two"] = fakePage{location: "https://a.com/one"}
	s.web.probes["https://a.com/two"] = "https://a.com/one"
	s.indexAnything()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 1, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{
		"https://a.com", "https://a.com/one", "https://a.com/two",
	})
	c.Assert(s.web.indexCalls["https://a.com/one"], check.Equals, 1)
	c.Assert(s.web.docs["https://a.com/two"], check.IsNil)
}

func (s *CrawlerTestSuite) TestSecondRunSkipsVisitedSeeds(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{}
	s.indexAnything()

	cr := s.newCrawler(c, 0)
	_, err := cr.Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
	c.Assert(err, check.IsNil)

	summary, err := cr.Crawl(context.TODO(), []string{"https://a.com/", "https://a.com"}, 0, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.HasLen, 0)
	c.Assert(s.web.fetchCount("https://a.com"), check.Equals, 1)

	visited, err := cr.VisitedPages("loc")
	c.Assert(err, check.IsNil)
	c.Assert(visited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestResetIndexIgnoresPreviousState(c *check.C) {
	c.Assert(s.store.Save("loc", state.Visited, []string{"https://a.com"}), check.IsNil)
	s.web.pages["https://a.com"] = fakePage{}

	gomock.InOrder(
		s.indexer.EXPECT().Reset().Return(nil),
		s.indexer.EXPECT().Index(gomock.Any()).DoAndReturn(s.web.index),
	)

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", true)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestResetIndexWhenFirstFetchFails(c *check.C) {
	s.indexer.EXPECT().Reset().Return(nil).Times(1)

	_, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://gone.com"}, 0, "loc", true)
	c.Assert(err, check.IsNil)
}

func (s *CrawlerTestSuite) TestLockedIndexSkipsPage(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{}
	s.indexer.EXPECT().Index(gomock.Any()).Return(index.ErrIndexLocked).Times(DefaultIndexAttempts)

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) newCrawlerWithOpener(c *check.C, opener IndexOpenerFunc) *Crawler {
	cr, err := New(Config{
		Fetcher:         s.fetcher,
		RobotsGate:      s.robots,
		IndexOpener:     opener,
		StateStore:      s.store,
		PolitenessDelay: time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		SettleDelay:     time.Millisecond,
	})
	c.Assert(err, check.IsNil)

	return cr
}

func (s *CrawlerTestSuite) TestLockedIndexOpenIsRetried(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{}
	s.indexAnything()

	var opens int
	cr := s.newCrawlerWithOpener(c, func(string) (MiniIndexer, error) {
		opens++
		if opens == 1 {
			return nil, index.ErrIndexLocked
		}
		return s.indexer, nil
	})

	summary, err := cr.Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(opens, check.Equals, 2)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestIndexLockedForEveryOpenAttempt(c *check.C) {
	var opens int
	cr := s.newCrawlerWithOpener(c, func(string) (MiniIndexer, error) {
		opens++
		return nil, index.ErrIndexLocked
	})

	_, err := cr.Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
	c.Assert(errors.Is(err, index.ErrIndexLocked), check.Equals, true)
	c.Assert(opens, check.Equals, DefaultIndexAttempts)
	c.Assert(s.web.fetchCount("https://a.com"), check.Equals, 0)
}

func (s *CrawlerTestSuite) TestIndexFailureLeavesPageUnvisited(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"/bad"}}
	s.web.pages["https://a.com/bad"] = fakePage{}
	s.indexer.EXPECT().Index(gomock.Any()).DoAndReturn(func(doc *index.Document) error {
		if doc.URL == "https://a.com/bad" {
			return errors.New("disk full")
		}
		return s.web.index(doc)
	}).AnyTimes()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 1, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestLinkRediscoveredInFlightIsFetchedOnce(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"/m"}}
	s.web.pages["https://a.com/m"] = fakePage{links: []string{"https://x.com/t"}}
	s.web.pages["https://b.com"] = fakePage{links: []string{"https://x.com/t"}}
	s.indexAnything()

	// b.com answers while the deeper x.com/t fetch is in flight, so a merge
	// lowers the depth of the link being fetched. x.com/t then fails.
	xStarted := make(chan struct{})
	bDone := make(chan struct{})
	s.web.onFetch = func(u string) {
		switch u {
		case "https://b.com":
			select {
			case <-xStarted:
			case <-time.After(2 * time.Second):
			}
			defer close(bDone)
		case "https://x.com/t":
			close(xStarted)
			select {
			case <-bDone:
			case <-time.After(2 * time.Second):
			}
			time.Sleep(50 * time.Millisecond)
		}
	}

	summary, err := s.newCrawler(c, 0).Crawl(
		context.TODO(), []string{"https://a.com", "https://b.com"}, 3, "loc", false,
	)
	c.Assert(err, check.IsNil)
	c.Assert(s.web.fetchCount("https://x.com/t"), check.Equals, 1)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{
		"https://a.com", "https://a.com/m", "https://b.com",
	})
}

func (s *CrawlerTestSuite) TestFailedLinkIsNotRetriedWhenRediscovered(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"https://x.com/gone", "/p"}}
	s.web.pages["https://a.com/p"] = fakePage{links: []string{"https://x.com/gone"}}
	s.indexAnything()

	_, err := s.newCrawler(c, 1).Crawl(context.TODO(), []string{"https://a.com"}, 3, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(s.web.fetchCount("https://x.com/gone"), check.Equals, 1)
}

func (s *CrawlerTestSuite) TestCrossHostLinksAreFetchedAndIndexedOnce(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"/1", "https://b.com/1", "https://c.com"}}
	s.web.pages["https://a.com/1"] = fakePage{links: []string{"https://b.com/2", "https://c.com/1", "/2"}}
	s.web.pages["https://a.com/2"] = fakePage{links: []string{"https://b.com", "https://c.com/2"}}
	s.web.pages["https://b.com"] = fakePage{links: []string{"/1", "https://a.com/1", "https://c.com/1"}}
	s.web.pages["https://b.com/1"] = fakePage{links: []string{"https://a.com/2", "/2", "https://c.com/2"}}
	s.web.pages["https://b.com/2"] = fakePage{links: []string{"https://a.com", "https://c.com"}}
	s.web.pages["https://c.com"] = fakePage{links: []string{"/1", "https://a.com/2", "https://b.com/2"}}
	s.web.pages["https://c.com/1"] = fakePage{links: []string{"/2", "https://b.com/1", "https://x.com/missing"}}
	s.web.pages["https://c.com/2"] = fakePage{links: []string{"https://a.com/1", "https://x.com/missing"}}
	s.indexAnything()

	summary, err := s.newCrawler(c, 3).Crawl(
		context.TODO(), []string{"https://a.com", "https://b.com", "https://c.com"}, 3, "loc", false,
	)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.HasLen, 9)

	s.web.mu.Lock()
	defer s.web.mu.Unlock()

	for u, n := range s.web.fetched {
		c.Assert(n <= 1, check.Equals, true, check.Commentf("%s fetched %d times", u, n))
	}
	for u, n := range s.web.indexCalls {
		c.Assert(n <= 1, check.Equals, true, check.Commentf("%s indexed %d times", u, n))
	}
	for host, n := range s.web.robotsCalls {
		c.Assert(n <= 1, check.Equals, true, check.Commentf("robots of %s fetched %d times", host, n))
	}
	c.Assert(s.web.fetched["https://x.com/missing"], check.Equals, 1)
}

func (s *CrawlerTestSuite) TestPanickingClaimOnlyDropsItsLink(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{links: []string{"https://b.com/boom", "https://c.com/ok"}}
	s.web.pages["https://b.com/boom"] = fakePage{}
	s.web.pages["https://c.com/ok"] = fakePage{}
	s.indexer.EXPECT().Index(gomock.Any()).DoAndReturn(func(doc *index.Document) error {
		if doc.URL == "https://b.com/boom" {
			panic("boom")
		}
		return s.web.index(doc)
	}).AnyTimes()

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 1, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com", "https://c.com/ok"})
	c.Assert(s.web.fetchCount("https://b.com/boom"), check.Equals, 1)
}

func (s *CrawlerTestSuite) TestWorkerPassesOverVisitedLinks(c *check.C) {
	s.web.pages["https://a.com/fresh"] = fakePage{}
	s.indexAnything()

	r := newRun(&s.newCrawler(c, 1).cfg, 1, "loc", false)
	r.indexer = s.indexer
	r.frontier.MarkVisited("https://a.com/seen")
	r.frontier.SetNext([]frontier.Item{
		{URL: "https://a.com/seen", Depth: 1},
		{URL: "https://a.com/fresh", Depth: 1},
	})

	w := newWorker(0, r)
	w.addHost(urlnorm.Host("https://a.com/fresh"))
	w.start(context.TODO())
	w.join()

	c.Assert(s.web.fetchCount("https://a.com/seen"), check.Equals, 0)
	c.Assert(s.web.fetchCount("https://a.com/fresh"), check.Equals, 1)
	c.Assert(r.frontier.NextLen(), check.Equals, 0)
	c.Assert(w.isBusy(), check.Equals, false)
}

func (s *CrawlerTestSuite) TestShortPagesAreNotIndexed(c *check.C) {
	s.web.pages["https://a.com"] = fakePage{text: "tiny"}

	summary, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestNoUsableSeeds(c *check.C) {
	summary, err := s.newCrawler(c, 0).Crawl(
		context.TODO(), []string{"ftp://a.com", "not a url", ""}, 1, "loc", false,
	)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.HasLen, 0)
}

func (s *CrawlerTestSuite) TestValidatorRejectsSeedsAndLinks(c *check.C) {
	validator := mocks.NewMockURLValidator(s.ctrl)
	validator.EXPECT().IsValid(gomock.Any()).DoAndReturn(func(u string) bool {
		return urlnorm.Host(u) != "internal.local"
	}).AnyTimes()

	s.web.pages["https://a.com"] = fakePage{links: []string{"https://internal.local/admin", "/ok"}}
	s.web.pages["https://a.com/ok"] = fakePage{}
	s.indexAnything()

	cr, err := New(Config{
		Fetcher:      s.fetcher,
		RobotsGate:   s.robots,
		IndexOpener:  IndexOpenerFunc(func(string) (MiniIndexer, error) { return s.indexer, nil }),
		StateStore:   s.store,
		Validator:    validator,
		PollInterval: 5 * time.Millisecond,
		SettleDelay:  time.Millisecond,
	})
	c.Assert(err, check.IsNil)

	summary, err := cr.Crawl(
		context.TODO(), []string{"https://internal.local", "https://a.com"}, 1, "loc", false,
	)
	c.Assert(err, check.IsNil)
	c.Assert(summary.NewlyVisited, check.DeepEquals, []string{"https://a.com", "https://a.com/ok"})
}

func (s *CrawlerTestSuite) TestConcurrentCrawlIsRejected(c *check.C) {
	release := make(chan struct{})
	entered := make(chan struct{})

	blocking := mocks.NewMockFetcher(s.ctrl)
	blocking.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) (*fetcher.Page, error) {
			close(entered)
			<-release
			return nil, &fetcher.FetchError{URL: "https://a.com", Err: fetcher.ErrUnexpectedStatus}
		},
	).Times(1)
	s.fetcher = blocking

	cr := s.newCrawler(c, 0)
	c.Assert(cr.IsCrawling(), check.Equals, false)

	errCh := make(chan error, 1)
	go func() {
		_, err := cr.Crawl(context.TODO(), []string{"https://a.com"}, 0, "loc", false)
		errCh <- err
	}()

	<-entered
	c.Assert(cr.IsCrawling(), check.Equals, true)
	c.Assert(cr.Stats().Crawling, check.Equals, true)

	_, err := cr.Crawl(context.TODO(), []string{"https://b.com"}, 0, "loc", false)
	c.Assert(errors.Is(err, ErrAlreadyCrawling), check.Equals, true)

	close(release)
	c.Assert(<-errCh, check.IsNil)
	c.Assert(cr.IsCrawling(), check.Equals, false)
}

func (s *CrawlerTestSuite) TestCancelledCrawlPersistsState(c *check.C) {
	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()

	cancelling := mocks.NewMockFetcher(s.ctrl)
	cancelling.EXPECT().Fetch(gomock.Any(), "https://a.com").DoAndReturn(
		func(context.Context, string) (*fetcher.Page, error) {
			cancel()
			return &fetcher.Page{
				URL:   "https://a.com",
				Text:  bodyText,
				Size:  len(bodyText),
				Links: []string{"/next"},
			}, nil
		},
	).Times(1)
	cancelling.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(nil, context.Canceled).AnyTimes()
	s.fetcher = cancelling
	s.indexAnything()

	_, err := s.newCrawler(c, 0).Crawl(ctx, []string{"https://a.com"}, 2, "loc", false)
	c.Assert(errors.Is(err, ErrCrawlInterrupted), check.Equals, true)

	visited, err := s.store.Load("loc", state.Visited)
	c.Assert(err, check.IsNil)
	c.Assert(visited, check.DeepEquals, []string{"https://a.com"})
}

func (s *CrawlerTestSuite) TestInvalidDepth(c *check.C) {
	_, err := s.newCrawler(c, 0).Crawl(context.TODO(), []string{"https://a.com"}, -1, "loc", false)
	c.Assert(errors.Is(err, ErrInvalidDepth), check.Equals, true)
}

func (s *CrawlerTestSuite) TestConfigValidation(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?s).*index opener not provided.*state store not provided.*")

	_, err = New(Config{
		IndexOpener: IndexOpenerFunc(func(string) (MiniIndexer, error) { return nil, nil }),
		StateStore:  s.store,
		MaxWorkers:  -1,
	})
	c.Assert(err, check.ErrorMatches, "(?s).*max workers.*")

	cfg := Config{
		IndexOpener: IndexOpenerFunc(func(string) (MiniIndexer, error) { return nil, nil }),
		StateStore:  s.store,
	}
	c.Assert(cfg.validate(), check.IsNil)
	c.Assert(cfg.MaxWorkers, check.Equals, DefaultMaxWorkers)
	c.Assert(cfg.PollInterval, check.Equals, DefaultPollInterval)
	c.Assert(cfg.MaxRedirects, check.Equals, DefaultMaxRedirects)
	c.Assert(cfg.Fetcher, check.NotNil)
	c.Assert(cfg.RobotsGate, check.NotNil)
}
