package crawler

import (
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uCrawl/fetcher"
	"github.com/mycok/uCrawl/textindexer/index"
)

var _ = check.Suite(new(textIndexerTestSuite))

type textIndexerTestSuite struct{}

func (s *textIndexerTestSuite) TestDetectLanguage(c *check.C) {
	specs := []struct {
		descr   string
		code    string
		content string
		exp     string
	}{
		{descr: "nothing", code: "", content: "plain prose", exp: ""},
		{descr: "javascript in code", code: "<script type=javascript>", content: "", exp: "javascript"},
		{descr: "javascript only in content", code: "", content: "JavaScript tips", exp: "java"},
		{descr: "php only in content", code: "", content: "powered by php", exp: ""},
		{descr: "php in code", code: "<?php echo 1 ?>", content: "", exp: "php"},
		{descr: "earlier language wins", code: "import python", content: "about ruby", exp: "ruby"},
		{descr: "scala needs spaces", code: "", content: "scalable", exp: ""},
		{descr: "scala", code: "", content: "learning scala today", exp: "scala"},
		{descr: "case insensitive", code: "", content: "MATLAB plots", exp: "matlab"},
	}

	for i, spec := range specs {
		c.Logf("[spec %d] %s", i, spec.descr)
		c.Check(detectLanguage(spec.code, spec.content), check.Equals, spec.exp)
	}
}

func (s *textIndexerTestSuite) TestBuildDocument(c *check.C) {
	now := time.Now()
	page := &fetcher.Page{
		URL:   "https://example.com/q",
		Title: "How to sort",
		Text:  "Use the sort package in Go. It takes a less func. That is all.",
		Code:  []string{"sort.Slice(xs, less)", "fmt.Println(xs)"},
	}

	doc := buildDocument(page, "https://example.com/final", now)

	c.Assert(doc.LinkID, check.Equals, index.LinkIDFor("https://example.com/final"))
	c.Assert(doc.URL, check.Equals, "https://example.com/final")
	c.Assert(doc.Title, check.Equals, page.Title)
	c.Assert(doc.Content, check.Equals, page.Text)
	c.Assert(doc.Code, check.Equals, "sort.Slice(xs, less) ... fmt.Println(xs)")
	c.Assert(doc.Summary, check.Equals, "Use the sort package in Go. It takes a less func.")
	c.Assert(doc.Language, check.Equals, "")
	c.Assert(doc.IndexedAt, check.Equals, now)
}
