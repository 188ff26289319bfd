// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/agrisat/internal/api"
	"github.com/tomtom215/agrisat/internal/cache"
	"github.com/tomtom215/agrisat/internal/config"
	"github.com/tomtom215/agrisat/internal/datahub"
	"github.com/tomtom215/agrisat/internal/events"
	"github.com/tomtom215/agrisat/internal/learning"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/nasa"
	"github.com/tomtom215/agrisat/internal/session"
	"github.com/tomtom215/agrisat/internal/supervisor"
	"github.com/tomtom215/agrisat/internal/supervisor/services"
)

// analyticsBuffer bounds the aggregator's subscription channel.
const analyticsBuffer = 1024

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("AgriSat stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	realData := cfg.NASA.EnableRealData && cfg.NASA.APIKey != ""
	if cfg.NASA.EnableRealData && cfg.NASA.APIKey == "" {
		logging.Warn().Msg("Real NASA data requested but NASA_API_KEY is not set; serving synthetic data")
	}
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("cache_backend", cfg.Cache.Backend).
		Str("session_store", cfg.Session.Store).
		Bool("real_nasa_data", realData).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared response cache.
	store, err := cache.NewStore(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}
	defer closeQuietly("cache store", store)
	responseCache := cache.New(store, cfg.Cache.Backend)

	// Analytics bus and popular-content aggregator.
	bus := events.NewBus(analyticsBuffer)
	defer closeQuietly("analytics bus", bus)
	aggregator := events.NewAggregator()

	// Guest sessions.
	sessionStore, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}
	if c, ok := sessionStore.(io.Closer); ok {
		defer closeQuietly("session store", c)
	}
	sessions := session.NewManager(sessionStore, cfg.Session.Duration,
		session.WithPublisher(bus),
		session.WithPopularSource(aggregator),
	)

	// NASA aggregator, learning hub, data hub.
	nasaService := nasa.NewService(nasa.NewClient(cfg.NASA), responseCache, realData)
	hub := learning.NewHub(responseCache,
		learning.WithSessionMirror(sessions),
		learning.WithPublisher(bus),
	)
	dataHub := datahub.NewService(responseCache, nasaService, datahub.NewRegistry(time.Now()),
		datahub.WithHeadlineSource(datahub.NewFeedClient(cfg.NASA.FeedURL, cfg.NASA.Timeout, cfg.NASA.Retries)),
	)

	handler := api.NewHandler(api.HandlerDeps{
		NASA:     nasaService,
		DataHub:  dataHub,
		Sessions: sessions,
		Learning: hub,
		Cache:    responseCache,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddMaintenanceService(events.NewService(bus, aggregator))
	tree.AddMaintenanceService(services.NewPeriodicService("session-sweeper", cfg.Session.SweepInterval,
		session.NewSweeper(sessions).Sweep))
	tree.AddMaintenanceService(services.NewPeriodicService("learner-pruner", cfg.Session.SweepInterval,
		func(ctx context.Context) error {
			_, err := hub.Prune(ctx)
			return err
		}))
	tree.AddMaintenanceService(services.NewPeriodicService("cache-janitor", cfg.Cache.CleanupInterval,
		func(ctx context.Context) error {
			n, err := store.CleanupExpired(ctx)
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired cache entries removed")
			}
			return err
		}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting AgriSat supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error during shutdown")
	}
}
