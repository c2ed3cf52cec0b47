package cycle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"newsposter/internal/domain"
	"newsposter/internal/generator"
	"newsposter/internal/news"
	"newsposter/internal/publisher"
)

const (
	DefaultArticlesPerTopic = 2
	DefaultMaxArticles      = 2
	DefaultMaxPosts         = 2
	DefaultPostDelay        = 30 * time.Second

	previewLength = 50
)

var DefaultTopics = []string{"artificial intelligence", "technology", "startups"}

type Settings struct {
	Topics           []string
	ArticlesPerTopic int
	MaxArticles      int
	MaxPosts         int
	PostDelay        time.Duration
	Language         string
	SortBy           string
}

// Runner executes one fetch, generate and publish pass per Run call.
type Runner struct {
	source    news.Source
	generator generator.Generator
	publisher publisher.Publisher
	settings  Settings
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	log       *slog.Logger
}

func New(
	source news.Source,
	gen generator.Generator,
	pub publisher.Publisher,
	settings Settings,
	log *slog.Logger,
) *Runner {
	return &Runner{
		source:    source,
		generator: gen,
		publisher: pub,
		settings:  settings.withDefaults(),
		sleep:     sleepContext,
		now:       time.Now,
		log:       log,
	}
}

func (s Settings) withDefaults() Settings {
	if len(s.Topics) == 0 {
		s.Topics = DefaultTopics
	}
	if s.ArticlesPerTopic <= 0 {
		s.ArticlesPerTopic = DefaultArticlesPerTopic
	}
	if s.MaxArticles <= 0 {
		s.MaxArticles = DefaultMaxArticles
	}
	if s.MaxPosts <= 0 {
		s.MaxPosts = DefaultMaxPosts
	}
	if s.PostDelay < 0 {
		s.PostDelay = DefaultPostDelay
	}
	if s.Language == "" {
		s.Language = news.DefaultLanguage
	}
	if s.SortBy == "" {
		s.SortBy = news.SortByRecency
	}

	return s
}

// Run never fails: per-topic, per-article and per-post errors are logged
// and reflected in the returned counters.
func (r *Runner) Run(ctx context.Context) domain.CycleResult {
	result := domain.CycleResult{StartedAt: r.now()}

	r.log.InfoContext(ctx, "🔄 News cycle is started",
		"startedAt", result.StartedAt,
		"topics", r.settings.Topics)

	articles := r.fetchArticles(ctx)
	result.ArticlesFound = len(articles)

	r.log.InfoContext(ctx, "📰 Articles are fetched",
		"articlesFound", result.ArticlesFound,
		"maxArticles", r.settings.MaxArticles)

	pausePending := false

	for _, article := range articles {
		if result.Posted >= r.settings.MaxPosts {
			break
		}

		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		if !article.HasDescription() {
			result.Skipped++
			r.log.DebugContext(ctx, "Skipping article without description",
				"url", article.URL,
				"title", article.Title)

			continue
		}

		if pausePending {
			if err := r.sleep(ctx, r.settings.PostDelay); err != nil {
				result.Interrupted = true
				break
			}
			pausePending = false
		}

		post, err := r.generator.Generate(ctx, generator.Input{
			Title:       article.Title,
			Description: article.Description,
			URL:         article.URL,
		})
		if err != nil {
			result.GenerationFailures++
			r.log.ErrorContext(ctx, "❌ Failed to generate post",
				"error", err,
				"url", article.URL,
				"title", article.Title)

			continue
		}

		postID, err := r.publisher.Publish(ctx, post)
		if err != nil {
			result.PublishFailures++
			r.log.ErrorContext(ctx, "❌ Failed to publish post",
				"error", err,
				"url", article.URL,
				"postLength", generator.WeightedLength(post))

			continue
		}

		result.Posted++
		pausePending = r.settings.PostDelay > 0
		r.log.InfoContext(ctx, "✅ Post is published",
			"postID", postID,
			"preview", preview(post),
			"url", article.URL,
			"posted", result.Posted)
	}

	result.Duration = r.now().Sub(result.StartedAt)

	r.log.InfoContext(ctx, "✨ News cycle is completed",
		"articlesFound", result.ArticlesFound,
		"posted", result.Posted,
		"skipped", result.Skipped,
		"generationFailures", result.GenerationFailures,
		"publishFailures", result.PublishFailures,
		"interrupted", result.Interrupted,
		"durationSeconds", result.Duration.Seconds())

	return result
}

// fetchArticles accumulates articles in topic order and truncates the
// combined list to MaxArticles.
func (r *Runner) fetchArticles(ctx context.Context) []domain.Article {
	var articles []domain.Article

	for _, topic := range r.settings.Topics {
		if ctx.Err() != nil {
			break
		}

		found, err := r.source.Search(ctx, news.Query{
			Topic:      topic,
			MaxResults: r.settings.ArticlesPerTopic,
			Language:   r.settings.Language,
			SortBy:     r.settings.SortBy,
		})
		if err != nil {
			r.log.WarnContext(ctx, "Failed to fetch topic articles",
				"error", err,
				"topic", topic)

			continue
		}

		articles = append(articles, found...)
	}

	if len(articles) > r.settings.MaxArticles {
		articles = articles[:r.settings.MaxArticles]
	}

	return articles
}

func preview(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= previewLength {
		return string(runes)
	}

	return string(runes[:previewLength]) + "..."
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
