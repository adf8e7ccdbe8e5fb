package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mealbot/internal/config"
	"mealbot/internal/gemini"
	"mealbot/internal/generator"
	"mealbot/internal/history"
	"mealbot/internal/logging"
	"mealbot/internal/resolver"
	"mealbot/internal/run"
	"mealbot/internal/telegram"
)

// Exit codes: 0 sent or skipped (both normal for a host cron that
// alerts on non-zero), 1 run failure, 2 configuration error.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(execute())
}

func execute() int {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to optional yaml tunables")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return exitConfig
	}

	log := logging.New(cfg.LogLevel)

	client := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.RequestTimeout,
	})

	dispatcher, err := telegram.New(telegram.Config{
		Token:      cfg.BotToken,
		ChatID:     cfg.ChatID,
		MaxChunk:   cfg.MaxChunk,
		ChunkDelay: cfg.ChunkDelay,
		Timeout:    cfg.RequestTimeout,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("telegram setup failed")
		return exitConfig
	}

	ctrl := run.New(run.Deps{
		Config:     cfg,
		Store:      history.NewStore(cfg.HistoryFile, log),
		Resolver:   resolver.New(client, cfg.FallbackModels, log),
		Generator:  generator.New(client, cfg.CandidateDelay, log),
		Dispatcher: dispatcher,
		Log:        log,
	})

	status, err := ctrl.Run(ctx)
	switch status {
	case run.StatusSent, run.StatusSkipped:
		return exitOK
	default:
		log.Error().Err(err).Msg("run failed")
		return exitFailed
	}
}
