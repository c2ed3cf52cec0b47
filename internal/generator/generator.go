package generator

import (
	"context"
)

// Input describes the article a post is written for.
type Input struct {
	Title       string
	Description string
	// URL must appear in the generated post.
	URL string
}

// Generator writes a single promotional post for an article.
type Generator interface {
	Generate(ctx context.Context, input Input) (string, error)
}
