package publisher

import (
	"context"
)

// Publisher submits a finished post to a social platform and returns the
// platform's identifier for it.
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}
