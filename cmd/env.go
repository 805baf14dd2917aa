package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/kv"
	"github.com/matheuskafuri/headlines/internal/logging"
	"github.com/matheuskafuri/headlines/internal/newsapi"
	"github.com/matheuskafuri/headlines/internal/store"
)

// env is everything a command needs: config, logger and the article store.
type env struct {
	cfg         *config.Config
	logger      *log.Logger
	backend     kv.Backend
	backendName string // after --ephemeral
	store       *store.Store

	closeLog func() error
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Stderr: flagLogStderr,
		Path:   flagLogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	opts := kv.Options{
		Backend:     cfg.Storage.Backend,
		Path:        cfg.StoragePath(),
		RedisURL:    cfg.Storage.RedisURL,
		RedisPrefix: cfg.Storage.RedisPrefix,
	}
	if flagEphemeral {
		opts.Backend = "memory"
	}
	backend, err := kv.Open(ctx, opts)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening %s storage: %w", opts.Backend, err)
	}
	logger.Debug("storage opened", "backend", opts.Backend)

	return &env{
		cfg:         cfg,
		logger:      logger,
		backend:     backend,
		backendName: opts.Backend,
		store:       store.New(backend, logger),
		closeLog:    closeLog,
	}, nil
}

func (e *env) newsClient() *newsapi.Client {
	return newsapi.New(newsapi.Options{
		BaseURL:             e.cfg.NewsAPI.BaseURL,
		APIKey:              e.cfg.APIKey(),
		Country:             e.cfg.NewsAPI.Country,
		RecommendedCategory: e.cfg.NewsAPI.RecommendedCategory,
		Timeout:             e.cfg.Timeout(),
		Retries:             e.cfg.NewsAPI.Retries,
		RequestsPerMinute:   e.cfg.NewsAPI.RequestsPerMinute,
		Logger:              e.logger,
	})
}

func (e *env) requireAPIKey() error {
	if e.cfg.APIKey() == "" {
		return errors.New("no API key: set newsapi.api_key in the config or NEWS_API_KEY")
	}
	return nil
}

func (e *env) Close() error {
	return errors.Join(e.backend.Close(), e.closeLog())
}
