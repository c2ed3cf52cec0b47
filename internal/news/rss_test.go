package news_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsposter/internal/news"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Tech Daily</title>
  <link>https://tech.example.com</link>
  <language>en-us</language>
  <item>
    <title>Older startups story</title>
    <link>https://tech.example.com/older</link>
    <description>Seed rounds for startups slow down.</description>
    <pubDate>Fri, 16 Oct 2026 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Newest Startups raise money</title>
    <link>https://tech.example.com/newest</link>
    <description>&lt;b&gt;Big&lt;/b&gt; rounds.</description>
    <pubDate>Sun, 18 Oct 2026 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Chip prices fall</title>
    <link>https://tech.example.com/chips</link>
    <description>Hardware news.</description>
    <pubDate>Sat, 17 Oct 2026 09:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

const frenchFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Le Tech</title>
  <link>https://fr.example.com</link>
  <language>fr</language>
  <item>
    <title>Les startups</title>
    <link>https://fr.example.com/startups</link>
    <description>startups</description>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")

		switch r.URL.Path {
		case "/tech.xml":
			_, _ = io.WriteString(w, techFeed)
		case "/fr.xml":
			_, _ = io.WriteString(w, frenchFeed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestRSSSearch(t *testing.T) {
	server := newFeedServer(t)
	source := news.NewRSS([]string{
		server.URL + "/tech.xml",
		server.URL + "/fr.xml",
		server.URL + "/missing.xml",
	}, discardLogger())

	articles, err := source.Search(context.Background(), news.Query{
		Topic:      "Startups",
		MaxResults: 5,
		Language:   "en",
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Newest Startups raise money", articles[0].Title)
	assert.Equal(t, "Big rounds.", articles[0].Description)
	assert.Equal(t, "Tech Daily", articles[0].Source)
	assert.Equal(t, "https://tech.example.com/older", articles[1].URL)
}

func TestRSSSearchMaxResults(t *testing.T) {
	server := newFeedServer(t)
	source := news.NewRSS([]string{server.URL + "/tech.xml"}, discardLogger())

	articles, err := source.Search(context.Background(), news.Query{Topic: "startups", MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://tech.example.com/newest", articles[0].URL)
}

func TestRSSSearchAllFeedsFail(t *testing.T) {
	server := newFeedServer(t)
	source := news.NewRSS([]string{server.URL + "/missing.xml"}, discardLogger())

	_, err := source.Search(context.Background(), news.Query{Topic: "startups", MaxResults: 1})
	require.Error(t, err)
}
