package news

import (
	"context"

	"newsposter/internal/domain"
)

const (
	SortByRecency   = "recency"
	DefaultLanguage = "en"
)

// Query describes a single topic search against a news source.
type Query struct {
	Topic      string
	MaxResults int
	// Language is an ISO 639-1 code.
	Language string
	SortBy   string
}

// Source returns the most relevant articles for a topic.
type Source interface {
	Search(ctx context.Context, query Query) ([]domain.Article, error)
}
