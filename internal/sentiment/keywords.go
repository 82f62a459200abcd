package sentiment

import (
	"regexp"
	"strings"
)

const (
	maxKeywords   = 5
	minKeywordLen = 4
)

var nonWordRe = regexp.MustCompile(`\W+`)

// ExtractKeywords returns up to five lower-cased tokens longer than three
// characters that are not stop words, in their original order.
func ExtractKeywords(text string, stopWords []string) []string {
	stop := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stop[w] = struct{}{}
	}
	return extractKeywords(text, stop)
}

func extractKeywords(text string, stop map[string]struct{}) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, token := range nonWordRe.Split(strings.ToLower(text), -1) {
		if len(token) < minKeywordLen {
			continue
		}
		if _, ok := stop[token]; ok {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
