package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	NewsSourceNewsAPI = "newsapi"
	NewsSourceRSS     = "rss"

	PlatformX        = "x"
	PlatformTelegram = "telegram"

	minCycleInterval = time.Minute
)

type Config struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIModel  string `env:"OPENAI_MODEL"                     envDefault:"gpt-4o-mini"`

	NewsSource string   `env:"NEWS_SOURCE"  envDefault:"newsapi"`
	NewsAPIKey string   `env:"NEWS_API_KEY"`
	RSSFeeds   []string `env:"RSS_FEEDS"    envSeparator:","`

	Platform string         `env:"PLATFORM" envDefault:"x"`
	X        XConfig        `envPrefix:"TWITTER_"`
	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`

	Topics           []string      `env:"TOPICS"              envDefault:"artificial intelligence,technology,startups" envSeparator:","`
	ArticlesPerTopic int           `env:"ARTICLES_PER_TOPIC"  envDefault:"2"`
	MaxArticles      int           `env:"MAX_ARTICLES"        envDefault:"2"`
	MaxPostsPerCycle int           `env:"MAX_POSTS_PER_CYCLE" envDefault:"2"`
	PostDelay        time.Duration `env:"POST_DELAY"          envDefault:"30s"`
	CycleInterval    time.Duration `env:"CYCLE_INTERVAL"      envDefault:"2h"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

type XConfig struct {
	ConsumerKey       string `env:"CONSUMER_KEY"`
	ConsumerSecret    string `env:"CONSUMER_SECRET"`
	AccessToken       string `env:"ACCESS_TOKEN"`
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET"`
}

type TelegramConfig struct {
	BotToken  string `env:"BOT_TOKEN"`
	ChannelID string `env:"CHANNEL_ID"`
}

// Load reads the process environment and validates it for the selected
// news source and platform.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.NewsSource = strings.ToLower(strings.TrimSpace(c.NewsSource))
	c.NewsAPIKey = strings.TrimSpace(c.NewsAPIKey)
	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
	c.Topics = trimAll(c.Topics)
	c.RSSFeeds = trimAll(c.RSSFeeds)

	c.X.ConsumerKey = strings.TrimSpace(c.X.ConsumerKey)
	c.X.ConsumerSecret = strings.TrimSpace(c.X.ConsumerSecret)
	c.X.AccessToken = strings.TrimSpace(c.X.AccessToken)
	c.X.AccessTokenSecret = strings.TrimSpace(c.X.AccessTokenSecret)

	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	c.Telegram.ChannelID = strings.TrimSpace(c.Telegram.ChannelID)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.NewsSource {
	case NewsSourceNewsAPI:
		if c.NewsAPIKey == "" {
			errs = append(errs, errors.New("NEWS_API_KEY is required for newsapi source"))
		}
	case NewsSourceRSS:
		if len(c.RSSFeeds) == 0 {
			errs = append(errs, errors.New("RSS_FEEDS is required for rss source"))
		}
	default:
		errs = append(errs, fmt.Errorf("NEWS_SOURCE is unknown (value = %q)", c.NewsSource))
	}

	switch c.Platform {
	case PlatformX:
		errs = append(errs, requireVars(map[string]string{
			"TWITTER_CONSUMER_KEY":        c.X.ConsumerKey,
			"TWITTER_CONSUMER_SECRET":     c.X.ConsumerSecret,
			"TWITTER_ACCESS_TOKEN":        c.X.AccessToken,
			"TWITTER_ACCESS_TOKEN_SECRET": c.X.AccessTokenSecret,
		})...)
	case PlatformTelegram:
		errs = append(errs, requireVars(map[string]string{
			"TELEGRAM_BOT_TOKEN":  c.Telegram.BotToken,
			"TELEGRAM_CHANNEL_ID": c.Telegram.ChannelID,
		})...)
	default:
		errs = append(errs, fmt.Errorf("PLATFORM is unknown (value = %q)", c.Platform))
	}

	if len(c.Topics) == 0 {
		errs = append(errs, errors.New("TOPICS must contain at least one topic"))
	}
	if c.ArticlesPerTopic < 1 {
		errs = append(errs, fmt.Errorf("ARTICLES_PER_TOPIC must be positive (value = %d)", c.ArticlesPerTopic))
	}
	if c.MaxArticles < 1 {
		errs = append(errs, fmt.Errorf("MAX_ARTICLES must be positive (value = %d)", c.MaxArticles))
	}
	if c.MaxPostsPerCycle < 1 {
		errs = append(errs, fmt.Errorf("MAX_POSTS_PER_CYCLE must be positive (value = %d)", c.MaxPostsPerCycle))
	}
	if c.PostDelay < 0 {
		errs = append(errs, fmt.Errorf("POST_DELAY must not be negative (value = %s)", c.PostDelay))
	}
	if c.CycleInterval < minCycleInterval {
		errs = append(errs, fmt.Errorf("CYCLE_INTERVAL must be at least %s (value = %s)", minCycleInterval, c.CycleInterval))
	}

	return errors.Join(errs...)
}

// requireVars reports every empty value in variable name order.
func requireVars(vars map[string]string) []error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if vars[name] == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	return errs
}

func trimAll(values []string) []string {
	var trimmed []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}

	return trimmed
}
