package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tonify/internal/config"
	"tonify/internal/llm"
	"tonify/internal/logging"
	"tonify/internal/ports"
	"tonify/internal/profile"
	"tonify/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "tonify",
		Short: "Tone profile service: quiz scoring, tone generation, profile storage",
		Long: `tonify infers a writing tone (six numeric traits) from quiz answers and
free-text samples, generates a human-readable tone summary with examples and a
reusable prompt, and persists named tone profiles per owner.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./tonify.yaml)")

	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	logger := logging.NewComponentLogger("serve")

	store, cleanup, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	cached, err := profile.NewListCache(store, cfg.Store.ListCacheSize, logger)
	if err != nil {
		return err
	}

	scorer := llm.NewStyleScorer(llm.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.ScoringModel,
		Timeout: cfg.Oracle.Timeout(),
	})
	generator := llm.NewContentClient(llm.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.GenerationModel,
		Timeout: cfg.Oracle.Timeout(),
	})

	srv := server.New(cfg.Server, server.Deps{
		Scorer:    scorer,
		Generator: generator,
		Store:     cached,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func buildStore(cfg *config.Config, logger logging.Logger) (ports.ProfileStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return profile.NewMemoryStore(), func() {}, nil

	case config.BackendSQLite:
		store, err := profile.NewSQLiteStore(cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		return profile.NewRedisStore(client, "tonify", logger), func() { _ = client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
