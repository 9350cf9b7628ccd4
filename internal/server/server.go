/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage and the station engine into
// the HTTP surface.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/skald_radio/internal/api"
	"github.com/friendsincode/skald_radio/internal/catalog"
	"github.com/friendsincode/skald_radio/internal/config"
	"github.com/friendsincode/skald_radio/internal/db"
	"github.com/friendsincode/skald_radio/internal/events"
	"github.com/friendsincode/skald_radio/internal/history"
	"github.com/friendsincode/skald_radio/internal/locker"
	"github.com/friendsincode/skald_radio/internal/station"
	"github.com/friendsincode/skald_radio/internal/store"
	"github.com/friendsincode/skald_radio/internal/stream"
	"github.com/friendsincode/skald_radio/internal/telemetry"
)

// Server bundles the HTTP surface and its supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	metricsSrv *http.Server
	closers    []func() error

	db     *gorm.DB
	engine *station.Engine
	bus    *events.Bus
	api    *api.API
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv.metricsSrv = &http.Server{
		Addr:              cfg.MetricsBind,
		Handler:           telemetry.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	var advanceLock station.Locker = locker.NewKeyedMutex()
	if s.cfg.AdvanceLockEnabled && s.cfg.RedisAddr != "" {
		lease, err := locker.NewRedisLease(locker.RedisLeaseConfig{
			RedisAddr:     s.cfg.RedisAddr,
			RedisPassword: s.cfg.RedisPassword,
			RedisDB:       s.cfg.RedisDB,
		}, s.logger)
		if err != nil {
			return fmt.Errorf("create advance lock: %w", err)
		}
		s.DeferClose(lease.Close)
		advanceLock = lease
		s.logger.Info().
			Str("redis_addr", s.cfg.RedisAddr).
			Msg("distributed advance locking enabled")
	}

	s.engine = station.NewEngine(
		catalog.NewRepository(database),
		history.NewRepository(database),
		store.NewRepository(database),
		stream.NewResolver(s.cfg.StreamBaseURL),
		advanceLock,
		s.logger,
		station.EngineOptions{
			TuneIn: station.TuneInConfig{
				Enabled:     s.cfg.TuneInEnabled,
				MaxFraction: s.cfg.TuneInMaxFraction,
				MinHeadSec:  s.cfg.TuneInMinHeadSec,
				MinTailSec:  s.cfg.TuneInMinTailSec,
				Probability: s.cfg.TuneInProbability,
			},
			Bus: s.bus,
		},
	)

	s.api = api.New(s.engine, s.logger)
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.api.Routes(s.router)
}

// HTTPServer returns the primary HTTP server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer returns the metrics-only HTTP server.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsSrv
}

// Bus returns the in-process event bus.
func (s *Server) Bus() *events.Bus {
	return s.bus
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
