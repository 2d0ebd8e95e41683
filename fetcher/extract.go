package fetcher

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// extract fills the title, text, code and link fields of page from the raw
// HTML document.
func (f *Fetcher) extract(page *Page, raw []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	policy := f.policyPool.Get().(*bluemonday.Policy)
	defer f.policyPool.Put(policy)

	page.Title = collapseSpace(policy.Sanitize(doc.Find("title").First().Text()))
	page.Text = collapseSpace(string(policy.SanitizeBytes(raw)))
	page.Code = extractCode(doc)
	page.Links = extractLinks(doc, page.Location)

	return nil
}

func collapseSpace(s string) string {
	return strings.TrimSpace(html.UnescapeString(repeatedSpaceRegex.ReplaceAllString(s, " ")))
}

func extractCode(doc *goquery.Document) []string {
	var blocks []string

	doc.Find("code, .code").Each(func(_ int, sel *goquery.Selection) {
		// Nested code elements are reported through their outermost parent.
		if sel.ParentsFiltered("code, .code").Length() > 0 {
			return
		}

		if text := strings.TrimSpace(sel.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	return blocks
}

func extractLinks(doc *goquery.Document, location string) []string {
	base, _ := url.Parse(location)
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok && base != nil {
		if resolved := resolveToAbsoluteURL(base, checkAndAddTrailingSlash(strings.TrimSpace(href))); resolved != nil {
			base = resolved
		}
	}

	var (
		links []string
		seen  = make(map[string]struct{})
	)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}

		link := href
		if base != nil {
			if resolved := resolveToAbsoluteURL(base, href); resolved != nil {
				link = resolved.String()
			}
		}

		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func checkAndAddTrailingSlash(s string) string {
	if s == "" || s[len(s)-1] != '/' {
		return s + "/"
	}

	return s
}

// resolveToAbsoluteURL expands target into an absolute URL. Targets starting
// with "//" inherit the scheme of relativeTo; all other targets are resolved
// relative to it. A nil URL is returned for unparsable targets.
func resolveToAbsoluteURL(relativeTo *url.URL, target string) *url.URL {
	if target == "" {
		return nil
	}

	if strings.HasPrefix(target, "//") {
		target = relativeTo.Scheme + ":" + target
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil
	}

	return relativeTo.ResolveReference(parsedURL)
}
