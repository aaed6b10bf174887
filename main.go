// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/db"
	"github.com/danielhkuo/content-vote/logging"
	"github.com/danielhkuo/content-vote/metrics"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/router"
	"github.com/danielhkuo/content-vote/store"
	"github.com/danielhkuo/content-vote/voting"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	logger, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and create schema (tables)
	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(ctx, conn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	sqlStore := store.NewSQLStore(conn, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(conn.DB, cfg.DatabaseType),
	)
	m := metrics.New(reg)

	engine := voting.NewEngine(sqlStore, voting.Options{
		MaxVotesPerInterval: cfg.MaxVotesPerInterval,
		Interval:            cfg.VoteInterval,
		Audit:               voting.MultiAuditSink{sqlStore, voting.LogAuditSink{Logger: logger}},
		Metrics:             m,
		Logger:              logger,
	})

	mux := router.NewRouter(router.Deps{
		Engine:    engine,
		Results:   voting.NewAggregator(sqlStore, m, logger),
		Polls:     voting.NewCatalog(sqlStore, nil),
		Lifecycle: voting.NewLifecycle(sqlStore, logger),
		Users:     sqlStore,
		Metrics:   m,
		Config:    cfg,
	})

	server := &http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port, "max_votes", cfg.MaxVotesPerInterval, "vote_interval", cfg.VoteInterval)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("Server closed")
	return nil
}
