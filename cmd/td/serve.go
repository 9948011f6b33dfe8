package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/amonks/todopro/gateway"
	"github.com/amonks/todopro/internal/config"
	"github.com/amonks/todopro/internal/paths"
	"github.com/amonks/todopro/query"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a development gateway",
	Long: `Run a development gateway.

Todos are kept in a SQLite database (see [server] database in todopro.toml).
Use --database :memory: to keep them in memory only. The development accounts
admin@example.com and john.doe@example.com are created with the password 123456.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr     string
	serveDatabase string
	serveSeed     bool
	serveLatency  time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDatabase, "database", "", "SQLite path, or :memory:")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Add sample todos when the store is empty")
	serveCmd.Flags().DurationVar(&serveLatency, "latency", 0, "Delay every response")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	settings := a.cfg.Server
	if cmd.Flags().Changed("addr") {
		settings.Addr = serveAddr
	}
	if cmd.Flags().Changed("database") {
		settings.Database = serveDatabase
	}
	if cmd.Flags().Changed("seed") {
		settings.Seed = serveSeed
	}
	if cmd.Flags().Changed("latency") {
		settings.Latency = config.Duration{Duration: serveLatency}
	}

	logger := a.logger.WithPrefix("gateway")
	repo, err := openRepository(settings.Database, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	if settings.Seed {
		if err := seedIfEmpty(cmd.Context(), repo, logger); err != nil {
			return err
		}
	}

	secret := settings.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("no jwt-secret configured; sessions end when the server stops")
	}
	auth, err := gateway.NewAuth(gateway.AuthOptions{Secret: secret, Issuer: "todopro"})
	if err != nil {
		return err
	}
	if err := auth.SeedUsers(); err != nil {
		return err
	}

	server, err := gateway.NewServer(gateway.ServerOptions{
		Repository: repo,
		Auth:       auth,
		Logger:     logger,
		Latency:    settings.Latency.Duration,
	})
	if err != nil {
		return err
	}
	return server.Serve(cmd.Context(), settings.Addr)
}

func openRepository(database string, logger *log.Logger) (gateway.Repository, error) {
	if database == "" {
		path, err := paths.DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
		database = path
	}
	if database == ":memory:" {
		logger.Info("using in-memory store")
		return gateway.NewMemoryRepository(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(database), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	logger.Info("using sqlite store", "path", database)
	return gateway.OpenSQLite(database)
}

func seedIfEmpty(ctx context.Context, repo gateway.Repository, logger *log.Logger) error {
	existing, err := repo.List(ctx, query.DefaultWithPageSize(1))
	if err != nil {
		return fmt.Errorf("count todos: %w", err)
	}
	if existing.Total > 0 {
		logger.Debug("store not empty, skipping seed", "total", existing.Total)
		return nil
	}
	if err := gateway.Seed(ctx, repo, time.Now(), uuid.NewString); err != nil {
		return err
	}
	logger.Info("seeded sample todos")
	return nil
}
