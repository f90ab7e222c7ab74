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

// Package server exposes grid views over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/taxinomia-grid/core/config"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/logging"
)

// DataFunc returns the raw input of a view for one request.
type DataFunc func(ctx context.Context) ([]any, error)

type view struct {
	engine *grid.Engine
	data   DataFunc
}

// Server represents the application server with its registered views.
type Server struct {
	mu     sync.RWMutex
	views  map[string]*view
	order  []string
	router *chi.Mux
}

// NewServer creates a server with no views.
func NewServer() *Server {
	s := &Server{
		views:  make(map[string]*view),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// AddView registers engine under its view id. Adding an id again replaces
// the view but keeps its listing position.
func (s *Server) AddView(engine *grid.Engine, data DataFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := engine.ViewID()
	if _, ok := s.views[id]; !ok {
		s.order = append(s.order, id)
	}
	s.views[id] = &view{engine: engine, data: data}
}

func (s *Server) lookup(id string) (*view, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[id]
	return v, ok
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/views", func(r chi.Router) {
		r.Get("/", s.handleListViews)
		r.Route("/{view}", func(r chi.Router) {
			r.Get("/", s.handleView)

			r.Get("/selection", s.handleSelection)
			r.Post("/selection/toggle/{key}", s.handleToggleSelection)
			r.Post("/selection/all", s.handleSelectAll)
			r.Delete("/selection", s.handleClearSelection)

			r.Put("/toggles/{toggle}", s.handleToggle)
		})
	})
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer returns an http.Server for the configured address and timeouts.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logging.FromContext(r.Context()).Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", fmt.Sprintf("%.2f", float64(time.Since(start).Microseconds())/1000.0),
		)
	})
}
