package urlnorm

import (
	"regexp"
	"strings"
)

// questionSites lists Q&A hosts whose question pages are addressed by a
// numeric id followed by a slug and any number of ignorable segments.
var questionSites = map[string]struct{}{
	"stackoverflow.com": {},
}

var (
	questionPathRegex = regexp.MustCompile(`^(/questions/\d+/[^/]+)/.+$`)
	questionIDRegex   = regexp.MustCompile(`://([^/]+)/questions/(\d+)(?:/|$)`)
)

// collapseQuestion rewrites /questions/<id>/<slug>/<anything> to
// /questions/<id>/<slug> on known question sites.
func collapseQuestion(u string) string {
	schemeEnd := strings.Index(u, "://")
	if schemeEnd == -1 {
		return u
	}

	rest := u[schemeEnd+3:]
	slash := strings.IndexByte(rest, '/')
	if slash == -1 {
		return u
	}

	host, path := rest[:slash], rest[slash:]
	if _, ok := questionSites[strings.ToLower(host)]; !ok {
		return u
	}

	if m := questionPathRegex.FindStringSubmatch(path); m != nil {
		return u[:schemeEnd+3] + host + m[1]
	}

	return u
}

// IsQuestionURL reports whether u points at a numbered question on a known
// question site.
func IsQuestionURL(u string) bool {
	_, ok := QuestionKey(u)
	return ok
}

// SameQuestion reports whether a and b address the same question page on a
// question site: both must carry a numeric question id and one must contain
// the other.
func SameQuestion(a, b string) bool {
	if !IsQuestionURL(a) || !IsQuestionURL(b) {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}

// QuestionKey returns "host/id" for a question URL so that all variants of
// the same question share a key.
func QuestionKey(u string) (string, bool) {
	m := questionIDRegex.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}

	if _, ok := questionSites[strings.ToLower(m[1])]; !ok {
		return "", false
	}

	return strings.ToLower(m[1]) + "/" + m[2], true
}
