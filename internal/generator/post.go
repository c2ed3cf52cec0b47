package generator

import (
	"errors"
	"strings"
	"unicode/utf8"

	"mvdan.cc/xurls/v2"
)

const (
	// MaxPostLength is the platform limit in weighted characters.
	MaxPostLength = 280
	// URLWeight is the length every link counts as once the platform wraps it.
	URLWeight = 23

	ellipsis = "…"
)

var (
	ErrEmptyPost = errors.New("post is empty")

	urlRe = xurls.Strict()
)

// FitPost normalizes generated text into a publishable post: it strips
// wrapping quotes, makes sure articleURL is present and shortens the text so
// the weighted length stays within MaxPostLength.
func FitPost(text string, articleURL string) (string, error) {
	text = strings.Join(strings.Fields(trimQuotes(text)), " ")
	articleURL = strings.TrimSpace(articleURL)

	if text == "" {
		return "", ErrEmptyPost
	}

	if articleURL != "" && !containsURL(text, articleURL) {
		text += " " + articleURL
	}

	if WeightedLength(text) <= MaxPostLength {
		return text, nil
	}

	if articleURL == "" {
		return shorten(text, MaxPostLength), nil
	}

	body := urlRe.ReplaceAllStringFunc(text, func(match string) string {
		if sameURL(match, articleURL) {
			return ""
		}
		return match
	})
	body = strings.Join(strings.Fields(body), " ")
	if body == "" {
		return articleURL, nil
	}

	return shorten(body, MaxPostLength-URLWeight-1) + " " + articleURL, nil
}

// WeightedLength counts runes, with every URL counted as URLWeight.
func WeightedLength(text string) int {
	length := 0
	last := 0

	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		length += utf8.RuneCountInString(text[last:loc[0]]) + URLWeight
		last = loc[1]
	}

	return length + utf8.RuneCountInString(text[last:])
}

func containsURL(text string, articleURL string) bool {
	for _, match := range urlRe.FindAllString(text, -1) {
		if sameURL(match, articleURL) {
			return true
		}
	}

	return false
}

func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// shorten cuts text at a word boundary so that it fits into limit weighted
// characters including the trailing ellipsis.
func shorten(text string, limit int) string {
	if WeightedLength(text) <= limit {
		return text
	}

	budget := limit - utf8.RuneCountInString(ellipsis)
	words := strings.Fields(text)

	var b strings.Builder
	for _, word := range words {
		candidate := word
		if b.Len() > 0 {
			candidate = b.String() + " " + word
		}

		if WeightedLength(candidate) > budget {
			break
		}

		b.Reset()
		b.WriteString(candidate)
	}

	if b.Len() == 0 {
		runes := []rune(words[0])
		return string(runes[:min(max(budget, 0), len(runes))]) + ellipsis
	}

	return strings.TrimRight(b.String(), ",;:-") + ellipsis
}

func trimQuotes(text string) string {
	text = strings.TrimSpace(text)

	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(text) >= len(pair[0])+len(pair[1]) &&
			strings.HasPrefix(text, pair[0]) &&
			strings.HasSuffix(text, pair[1]) {
			return strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
		}
	}

	return text
}
