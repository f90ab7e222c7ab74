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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/logging"
	"github.com/google/taxinomia-grid/core/query"
)

var (
	errUnknownView   = errors.New("unknown view")
	errUnknownRow    = errors.New("unknown row key")
	errUnknownToggle = errors.New("unknown toggle")
	errNotSelectable = errors.New("view does not support selection")
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]viewSummary, 0, len(s.order))
	for _, id := range s.order {
		v := s.views[id]
		out = append(out, viewSummary{ID: id, Title: v.engine.Title(), URL: viewPath(id)})
	}
	s.mu.RUnlock()
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewFromRequest(w, r)
	if !ok {
		return
	}
	timing := NewTimingCollector()

	parseStart := time.Now()
	q := query.NewQuery(r.URL)
	q.Path = viewPath(v.engine.ViewID())
	timing.Record("Parse Query", time.Since(parseStart))

	vm, effective, err := s.run(r.Context(), v, q, timing)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := buildViewResponse(v.engine, vm, effective)
	resp.Timing = timing.Entries()
	resp.TotalMs = timing.TotalMs()
	respondJSON(w, http.StatusOK, resp)
}

// run recalls the remembered options missing from q, processes the view
// data and remembers the options used. It returns the query reproducing
// the pass.
func (s *Server) run(ctx context.Context, v *view, q *query.Query, timing *TimingCollector) (*grid.ViewModel, *query.Query, error) {
	logger := logging.WithFields(ctx, "view", v.engine.ViewID())

	opts, err := v.engine.RecallOptions(ctx, q.Options())
	if err != nil {
		logger.Warn("failed to recall view options", "error", err)
	}

	loadStart := time.Now()
	raw, err := v.data(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load data for view %s: %w", v.engine.ViewID(), err)
	}
	timing.Record("Load Data", time.Since(loadStart))

	processStart := time.Now()
	vm := v.engine.Process(raw, opts)
	timing.Record("Process", time.Since(processStart))

	if err := v.engine.RememberOptions(ctx, opts); err != nil {
		logger.Warn("failed to remember view options", "error", err)
	}

	opts.Pagination.CurrentPage = vm.Pagination.CurrentPage
	effective := query.FromOptions(q.Path, opts)
	effective.Columns = q.Columns
	return vm, effective, nil
}

// current returns the last pass of the view, running a default pass first
// when the view was never processed.
func (s *Server) current(ctx context.Context, v *view) (*grid.ViewModel, error) {
	if vm := v.engine.Last(); vm != nil {
		return vm, nil
	}
	q := query.NewQuery(&url.URL{Path: viewPath(v.engine.ViewID())})
	if _, _, err := s.run(ctx, v, q, NewTimingCollector()); err != nil {
		return nil, err
	}
	return v.engine.Last(), nil
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewFromRequest(w, r)
	if !ok {
		return
	}
	vm, err := s.current(r.Context(), v)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, newSelectionResponse(vm))
}

func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectableView(w, r)
	if !ok {
		return
	}
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid row key: %w", err), http.StatusBadRequest)
		return
	}
	vm, err := s.current(r.Context(), v)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if _, known := vm.RowsByKey[key]; !known {
		respondError(w, r, fmt.Errorf("%w: %s", errUnknownRow, key), http.StatusNotFound)
		return
	}

	selected := v.engine.ToggleSelection(key)
	respondJSON(w, http.StatusOK, struct {
		Key       string            `json:"key"`
		Selected  bool              `json:"selected"`
		Selection selectionResponse `json:"selection"`
	}{key, selected, newSelectionResponse(v.engine.Last())})
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	v, ok := s.selectableView(w, r)
	if !ok {
		return
	}
	if _, err := s.current(r.Context(), v); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	v.engine.SelectAll()
	respondJSON(w, http.StatusOK, newSelectionResponse(v.engine.Last()))
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewFromRequest(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("scope") == "page" {
		v.engine.ClearPageSelection()
	} else {
		v.engine.ClearSelection()
	}
	keys := v.engine.SelectedKeys()
	if keys == nil {
		keys = []string{}
	}
	resp := selectionResponse{Keys: keys, Count: len(keys)}
	if vm := v.engine.Last(); vm != nil {
		resp.AllSelected = vm.AllSelected
	}
	respondJSON(w, http.StatusOK, resp)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	v, ok := s.viewFromRequest(w, r)
	if !ok {
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		respondError(w, r, errors.New(`request body must be {"enabled": true|false}`), http.StatusBadRequest)
		return
	}

	toggle := chi.URLParam(r, "toggle")
	var err error
	switch toggle {
	case grid.PrefGrouping:
		err = v.engine.SetGrouping(r.Context(), *req.Enabled)
	case grid.PrefAggregation:
		err = v.engine.SetAggregation(r.Context(), *req.Enabled)
	default:
		respondError(w, r, fmt.Errorf("%w: %s", errUnknownToggle, toggle), http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"toggle": toggle, "enabled": *req.Enabled})
}

func (s *Server) viewFromRequest(w http.ResponseWriter, r *http.Request) (*view, bool) {
	id := chi.URLParam(r, "view")
	v, ok := s.lookup(id)
	if !ok {
		respondError(w, r, fmt.Errorf("%w: %s", errUnknownView, id), http.StatusNotFound)
		return nil, false
	}
	return v, true
}

func (s *Server) selectableView(w http.ResponseWriter, r *http.Request) (*view, bool) {
	v, ok := s.viewFromRequest(w, r)
	if !ok {
		return nil, false
	}
	if !v.engine.Selectable() {
		respondError(w, r, fmt.Errorf("%w: %s", errNotSelectable, v.engine.ViewID()), http.StatusConflict)
		return nil, false
	}
	return v, true
}

func viewPath(id string) string {
	return "/api/views/" + url.PathEscape(id)
}
