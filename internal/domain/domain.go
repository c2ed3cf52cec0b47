package domain

import (
	"strings"
	"time"
)

type Article struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
}

// HasDescription reports whether the article carries enough text to write a post from.
func (a Article) HasDescription() bool {
	return strings.TrimSpace(a.Description) != ""
}

type CycleResult struct {
	StartedAt          time.Time
	Duration           time.Duration
	ArticlesFound      int
	Skipped            int
	GenerationFailures int
	PublishFailures    int
	Posted             int
	Interrupted        bool
}
