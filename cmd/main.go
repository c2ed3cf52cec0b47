package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsposter/internal/config"
	"newsposter/internal/cycle"
	"newsposter/internal/generator"
	"newsposter/internal/news"
	"newsposter/internal/publisher"
	"newsposter/internal/scheduler"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	level := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return 1
	}
	level.Set(cfg.LogLevel)

	source, err := newSource(cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize news source",
			"error", err,
			"newsSource", cfg.NewsSource)

		return 1
	}
	log.InfoContext(ctx, "News source is initialized",
		"newsSource", cfg.NewsSource)

	gen := generator.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	log.InfoContext(ctx, "OpenAI generator is initialized",
		"model", cfg.OpenAIModel)

	pub, err := newPublisher(cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize publisher",
			"error", err,
			"platform", cfg.Platform)

		return 1
	}
	log.InfoContext(ctx, "Publisher is initialized",
		"platform", cfg.Platform)

	runner := cycle.New(source, gen, pub, cycle.Settings{
		Topics:           cfg.Topics,
		ArticlesPerTopic: cfg.ArticlesPerTopic,
		MaxArticles:      cfg.MaxArticles,
		MaxPosts:         cfg.MaxPostsPerCycle,
		PostDelay:        cfg.PostDelay,
	}, log)

	sched := scheduler.New(ctx, runner, cfg.CycleInterval, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"cycleInterval", cfg.CycleInterval.String())

		return 1
	}
	defer sched.Stop()

	log.InfoContext(ctx, "🤖 Bot is running",
		"cycleInterval", cfg.CycleInterval.String(),
		"topics", cfg.Topics,
		"maxPostsPerCycle", cfg.MaxPostsPerCycle)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
		cancel()

		log.InfoContext(ctx, "👋 Bot is stopped",
			"signal", sig.String(),
			"uptimeSeconds", time.Since(start).Seconds())

		return 0
	case err = <-sched.Fatal():
		cancel()

		log.ErrorContext(ctx, "💥 Bot error",
			"error", err,
			"uptimeSeconds", time.Since(start).Seconds())

		return 1
	}
}

func newSource(cfg config.Config, log *slog.Logger) (news.Source, error) {
	switch cfg.NewsSource {
	case config.NewsSourceNewsAPI:
		return news.NewNewsAPI(cfg.NewsAPIKey, log), nil
	case config.NewsSourceRSS:
		return news.NewRSS(cfg.RSSFeeds, log), nil
	default:
		return nil, fmt.Errorf("unknown news source (newsSource = %s)", cfg.NewsSource)
	}
}

func newPublisher(cfg config.Config, log *slog.Logger) (publisher.Publisher, error) {
	switch cfg.Platform {
	case config.PlatformX:
		return publisher.NewX(publisher.XCredentials{
			ConsumerKey:       cfg.X.ConsumerKey,
			ConsumerSecret:    cfg.X.ConsumerSecret,
			AccessToken:       cfg.X.AccessToken,
			AccessTokenSecret: cfg.X.AccessTokenSecret,
		}, log), nil
	case config.PlatformTelegram:
		telegram, err := publisher.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChannelID, log)
		if err != nil {
			return nil, err
		}

		return telegram, nil
	default:
		return nil, fmt.Errorf("unknown platform (platform = %s)", cfg.Platform)
	}
}
