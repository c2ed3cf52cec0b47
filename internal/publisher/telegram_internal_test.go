package publisher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456:TEST"

type telegramServer struct {
	mu       sync.Mutex
	chatIDs  []string
	texts    []string
	sendFail bool
}

func (s *telegramServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"News","username":"news_bot"}}`)

	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			_ = r.ParseForm()
		}

		s.mu.Lock()
		s.chatIDs = append(s.chatIDs, r.FormValue("chat_id"))
		s.texts = append(s.texts, r.FormValue("text"))
		fail := s.sendFail
		s.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)

			return
		}

		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":42,"date":1760000000,"chat":{"id":-1001,"type":"channel"},"text":"ok"}}`)

	default:
		http.NotFound(w, r)
	}
}

func newTestTelegram(t *testing.T, srv *telegramServer, channelID string) *Telegram {
	t.Helper()

	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	tg, err := NewTelegram(testBotToken, channelID, discardLogger(), bot.WithServerURL(server.URL))
	require.NoError(t, err)

	return tg
}

func TestTelegramPublish(t *testing.T) {
	srv := &telegramServer{}
	tg := newTestTelegram(t, srv, "@news_channel")

	id, err := tg.Publish(context.Background(), "Fresh news https://example.com/a #news")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, []string{"@news_channel"}, srv.chatIDs)
	assert.Equal(t, []string{"Fresh news https://example.com/a #news"}, srv.texts)
}

func TestTelegramPublishFailure(t *testing.T) {
	srv := &telegramServer{sendFail: true}
	tg := newTestTelegram(t, srv, "-1001")

	_, err := tg.Publish(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send message")
}

func TestParseChatID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    any
		wantErr bool
	}{
		{"Username", " @channel ", "@channel", false},
		{"Numeric", "-1001234", int64(-1001234), false},
		{"Empty", "  ", nil, true},
		{"Garbage", "channel", nil, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseChatID(test.raw)

			if test.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
