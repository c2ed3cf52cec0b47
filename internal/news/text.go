package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips HTML markup and collapses whitespace. Feeds and NewsAPI
// both return descriptions with embedded tags and entities.
func CleanText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			text = doc.Text()
		}
	}

	return strings.Join(strings.Fields(text), " ")
}
