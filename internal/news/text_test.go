package news_test

import (
	"testing"

	"newsposter/internal/news"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "   ", ""},
		{"plain", "  Plain   text\nhere ", "Plain text here"},
		{"markup", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "Fish &amp; chips", "Fish & chips"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, news.CleanText(test.raw))
		})
	}
}
