package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
)

// Telegram posts to a channel the bot is an administrator of.
type Telegram struct {
	bot    *bot.Bot
	chatID any
	log    *slog.Logger
}

// NewTelegram validates the token with a getMe call. channelID is either a
// numeric chat ID or an @username.
func NewTelegram(token string, channelID string, log *slog.Logger, opts ...bot.Option) (*Telegram, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}

	chatID, err := parseChatID(channelID)
	if err != nil {
		return nil, fmt.Errorf("parse channel ID: %w", err)
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Telegram{
		bot:    b,
		chatID: chatID,
		log:    log,
	}, nil
}

func (t *Telegram) Publish(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is empty")
	}

	msg, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   text,
	})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

func parseChatID(channelID string) (any, error) {
	channelID = strings.TrimSpace(channelID)

	switch {
	case channelID == "":
		return nil, errors.New("channel ID is empty")
	case strings.HasPrefix(channelID, "@"):
		return channelID, nil
	}

	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("channel ID must be numeric or start with @ (value = %s)", channelID)
	}

	return id, nil
}
