package search

import (
	"bufio"
	"bytes"
	"sort"
	"strings"
	"unicode"

	"github.com/mycok/uCrawl/textindexer/index"
)

type matchedSentence struct {
	// Position of the sentence in the document content.
	position int

	text string

	// Ratio of matched terms to the total number of words in the sentence.
	matchRatio float32
}

type matchSummarizer struct {
	searchTerms []string

	// Upper bound on the number of sentences in a summary.
	maxSentences int

	// Upper bound on the summary size in characters.
	maxSummaryLen int

	sumBuff bytes.Buffer
}

func newMatchSummarizer(query string, maxSentences, maxSummaryLen int) *matchSummarizer {
	return &matchSummarizer{
		searchTerms:   strings.Fields(strings.ToLower(strings.Trim(query, `"`))),
		maxSentences:  maxSentences,
		maxSummaryLen: maxSummaryLen,
	}
}

// Summary returns the best matching sentences of content in document
// order, separated by "..." where they are not adjacent. It returns an
// empty string when no sentence matches.
func (s *matchSummarizer) Summary(content string) string {
	s.sumBuff.Reset()

	lastPosition := -1
	for _, sentence := range s.sentencesForSummary(content) {
		if lastPosition != -1 && sentence.position-lastPosition != 1 {
			_, _ = s.sumBuff.WriteString("...")
		}

		lastPosition = sentence.position

		_, _ = s.sumBuff.WriteString(sentence.text)

		if !strings.HasSuffix(sentence.text, ".") {
			_ = s.sumBuff.WriteByte('.')
		}
	}

	return strings.TrimSpace(s.sumBuff.String())
}

func (s *matchSummarizer) sentencesForSummary(content string) []*matchedSentence {
	var matched []*matchedSentence

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	scanner.Split(index.ScanSentences)

	for position := 0; scanner.Scan(); position++ {
		sentence := scanner.Text()
		if matchRatio := s.matchRatio(sentence); matchRatio > 0 {
			matched = append(matched, &matchedSentence{
				position:   position,
				text:       sentence,
				matchRatio: matchRatio,
			})
		}
	}

	// Higher quality matches claim the summary space first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].matchRatio > matched[j].matchRatio
	})

	var summary []*matchedSentence

	remainingLen := s.maxSummaryLen
	for i := 0; i < len(matched) && len(summary) < s.maxSentences && remainingLen > 0; i++ {
		if runes := []rune(matched[i].text); len(runes) > remainingLen {
			matched[i].text = string(runes[:remainingLen]) + "..."
		}

		remainingLen -= len(matched[i].text)
		summary = append(summary, matched[i])
	}

	sort.Slice(summary, func(i, j int) bool {
		return summary[i].position < summary[j].position
	})

	return summary
}

// matchRatio returns the ratio of words in sentence that equal one of the
// search terms, ignoring case and surrounding punctuation.
func (s *matchSummarizer) matchRatio(sentence string) float32 {
	var wordCount, matchedWordCount int

	scanner := bufio.NewScanner(strings.NewReader(sentence))
	scanner.Split(bufio.ScanWords)

	for ; scanner.Scan(); wordCount++ {
		word := strings.TrimFunc(scanner.Text(), unicode.IsPunct)
		for _, term := range s.searchTerms {
			if strings.EqualFold(term, word) {
				matchedWordCount++

				break
			}
		}
	}

	if wordCount == 0 {
		return 0
	}

	return float32(matchedWordCount) / float32(wordCount)
}
