package index

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Summarize returns the first n sentences of text.
func Summarize(text string, n int) string {
	var b strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	scanner.Split(ScanSentences)

	for i := 0; i < n && scanner.Scan(); i++ {
		b.WriteString(scanner.Text())
	}

	return strings.TrimSpace(b.String())
}

// ScanSentences is a bufio.SplitFunc that splits text into sentences
// terminated by '.', '!' or '?'.
func ScanSentences(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF {
		if len(data) == 0 {
			return 0, nil, nil
		}

		return len(data), data, nil
	}

	var seq [3]rune
	var index, skip int

	for i := 0; i < len(seq); i++ {
		if seq[i], skip = scanRune(data[index:]); skip < 0 {
			return 0, nil, nil
		}
		index += skip
	}

	for index < len(data) {
		if shouldBreakSentenceAtMiddleChar(seq) {
			return index - skip, data[:index-skip], nil
		}

		seq[0], seq[1] = seq[1], seq[2]
		if seq[2], skip = scanRune(data[index:]); skip < 0 {
			return 0, nil, nil
		}

		index += skip
	}

	return 0, nil, nil
}

// shouldBreakSentenceAtMiddleChar reports whether the middle rune of seq
// terminates a sentence.
func shouldBreakSentenceAtMiddleChar(seq [3]rune) bool {
	before := unicode.IsLower(seq[0]) || unicode.IsSymbol(seq[0]) ||
		unicode.IsNumber(seq[0]) || unicode.IsSpace(seq[0])

	terminator := seq[1] == '.' || seq[1] == '!' || seq[1] == '?'

	after := unicode.IsPunct(seq[2]) || unicode.IsSpace(seq[2]) ||
		unicode.IsSymbol(seq[2]) || unicode.IsNumber(seq[2]) ||
		unicode.IsUpper(seq[2])

	return before && terminator && after
}

func scanRune(data []byte) (rune, int) {
	if len(data) == 0 {
		return 0, -1
	}

	if data[0] < utf8.RuneSelf {
		return rune(data[0]), 1
	}

	// Multi-byte runes; a size of 1 signals invalid UTF-8.
	r, size := utf8.DecodeRune(data)
	if size > 1 {
		return r, size
	}

	return 0, -1
}
