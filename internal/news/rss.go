package news

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"newsposter/internal/domain"

	"github.com/mmcdole/gofeed"
)

const rssClientTimeout = 20 * time.Second

// RSS searches a fixed set of feeds by matching the topic against item
// titles and descriptions.
type RSS struct {
	feedURLs []string
	parser   *gofeed.Parser
	log      *slog.Logger
}

func NewRSS(feedURLs []string, log *slog.Logger) *RSS {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: rssClientTimeout}

	return &RSS{
		feedURLs: feedURLs,
		parser:   parser,
		log:      log,
	}
}

func (r *RSS) Search(ctx context.Context, query Query) ([]domain.Article, error) {
	topic := strings.ToLower(strings.TrimSpace(query.Topic))
	if topic == "" {
		return nil, errors.New("topic is empty")
	}

	language := strings.ToLower(strings.TrimSpace(query.Language))

	var articles []domain.Article
	var errs []error

	for _, feedURL := range r.feedURLs {
		parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse feed (URL = %s): %w", feedURL, err))
			continue
		}

		if !languageMatches(parsed.Language, language) {
			r.log.DebugContext(ctx, "Skipping feed with other language",
				"feedURL", feedURL,
				"feedLanguage", parsed.Language,
				"language", language)

			continue
		}

		for _, item := range parsed.Items {
			article, ok := itemToArticle(item, parsed.Title)
			if !ok {
				continue
			}

			haystack := strings.ToLower(article.Title + " " + article.Description)
			if !strings.Contains(haystack, topic) {
				continue
			}

			articles = append(articles, article)
		}
	}

	if len(errs) == len(r.feedURLs) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, err := range errs {
		r.log.WarnContext(ctx, "Failed to parse feed",
			"error", err,
			"topic", query.Topic)
	}

	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		return cmp.Compare(b.PublishedAt.UnixNano(), a.PublishedAt.UnixNano())
	})

	if query.MaxResults > 0 && len(articles) > query.MaxResults {
		articles = articles[:query.MaxResults]
	}

	return articles, nil
}

func itemToArticle(item *gofeed.Item, feedTitle string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	title := CleanText(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	return domain.Article{
		Title:       title,
		Description: CleanText(item.Description),
		URL:         link,
		Source:      strings.TrimSpace(feedTitle),
		PublishedAt: publishedAt,
	}, true
}

// languageMatches treats feeds without a declared language as matching.
func languageMatches(feedLanguage, want string) bool {
	feedLanguage = strings.ToLower(strings.TrimSpace(feedLanguage))
	if feedLanguage == "" || want == "" {
		return true
	}

	return feedLanguage == want || strings.HasPrefix(feedLanguage, want+"-")
}
