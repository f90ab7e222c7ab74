/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/config"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/i18n"
	"github.com/google/taxinomia-grid/core/logging"
	"github.com/google/taxinomia-grid/core/prefs"
	"github.com/google/taxinomia-grid/core/server"
	"github.com/google/taxinomia-grid/datasources"
	"github.com/google/taxinomia-grid/demo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLogs := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
	})
	defer closeLogs()
	logger.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	store, closeStore, err := openPreferences(ctx, cfg.Preferences)
	if err != nil {
		logger.Error("failed to open preference store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	catalog, err := demo.Catalog(i18n.ParseLanguage(cfg.Grid.Language))
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	registry := aggregates.NewRegistry()
	demo.RegisterAggregations(registry)

	env := demo.Env{
		Aggregations:      registry,
		Types:             columns.NewTypeRegistry(),
		Translator:        catalog,
		Preferences:       store,
		Logger:            logger,
		DefaultPageSize:   cfg.Grid.DefaultPageSize,
		GroupSeparator:    cfg.Grid.GroupSeparator,
		GroupScope:        grouping.ParseScope(cfg.Grid.GroupScope),
		CaseSensitiveSort: cfg.Grid.CaseSensitiveSort,
		PrimaryKeyOnly:    cfg.Grid.PrimaryKeyOnly,
	}

	manager := datasources.NewManager()
	if err := demo.LoadDatasets(ctx, manager); err != nil {
		logger.Error("failed to load demo data", "error", err)
		os.Exit(1)
	}
	addFileSources(manager, cfg.Data)

	srv := server.NewServer()
	addView(ctx, srv, manager, demo.OrdersConfig(env))
	addView(ctx, srv, manager, demo.CustomersConfig(env))
	for _, name := range fileSourceNames(cfg.Data) {
		ds, err := manager.Load(ctx, name)
		if err != nil {
			logger.Error("failed to load data source", "source", name, "error", err)
			continue
		}
		addView(ctx, srv, manager, demo.DatasetConfig(env, ds))
	}

	httpServer := srv.HTTPServer(cfg.Server)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Server.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// openPreferences opens the configured preference backend and returns a
// function releasing it.
func openPreferences(ctx context.Context, cfg config.PreferencesConfig) (prefs.Store, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "file":
		store, err := prefs.OpenFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using file preference store", "path", store.Path())
		return store, func() {}, nil

	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store := prefs.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("using postgres preference store")
		return store, pool.Close, nil

	default:
		return prefs.NewMemoryStore(), func() {}, nil
	}
}

// addFileSources registers every configured data file under its base name.
func addFileSources(m *datasources.Manager, cfg config.DataConfig) {
	for _, path := range cfg.CSVFiles {
		m.AddSource(datasources.Source{
			Name:   sourceName(path),
			Type:   "csv",
			Config: map[string]string{"file_path": path, "delimiter": cfg.CSVDelimiter},
		})
	}
	for _, path := range cfg.JSONFiles {
		m.AddSource(datasources.Source{
			Name:   sourceName(path),
			Type:   "json",
			Config: map[string]string{"file_path": path},
		})
	}
}

func fileSourceNames(cfg config.DataConfig) []string {
	var names []string
	for _, path := range cfg.CSVFiles {
		names = append(names, sourceName(path))
	}
	for _, path := range cfg.JSONFiles {
		names = append(names, sourceName(path))
	}
	return names
}

func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// addView creates the engine of a view, restores its toggles and serves the
// records of the source named like the view.
func addView(ctx context.Context, srv *server.Server, m *datasources.Manager, cfg grid.Config) {
	engine := grid.New(cfg)
	if err := engine.LoadPreferences(ctx); err != nil {
		slog.Warn("failed to load view preferences", "view", cfg.ViewID, "error", err)
	}
	source := cfg.ViewID
	srv.AddView(engine, func(ctx context.Context) ([]any, error) {
		ds, err := m.Load(ctx, source)
		if err != nil {
			return nil, err
		}
		return ds.Raw(), nil
	})
	slog.Info("view registered", "view", cfg.ViewID, "columns", len(engine.Columns().All))
}
