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

// Package grid ties the column registry, row keys, sorting, grouping,
// aggregation, pagination and selection into one processing pass per view.
package grid

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/i18n"
	"github.com/google/taxinomia-grid/core/paging"
	"github.com/google/taxinomia-grid/core/prefs"
	"github.com/google/taxinomia-grid/core/records"
	"github.com/google/taxinomia-grid/core/rowkeys"
	"github.com/google/taxinomia-grid/core/selection"
	"github.com/google/taxinomia-grid/core/sorting"
	"golang.org/x/text/cases"
)

// Config describes one view. Only Columns is required; the zero value of
// every other field enables sorting, filtering, grouping and aggregation.
type Config struct {
	ViewID string
	Title  string

	// Flags are the engine-level capabilities. Nil enables all of them.
	Flags   *columns.Flags
	Columns []columns.Declaration

	// KeyFunc and KeyFields identify rows; see rowkeys.Resolver.
	KeyFunc   rowkeys.Func
	KeyFields []string

	CaseSensitiveSort bool
	PrimaryKeyOnly    bool

	GroupSeparator       string
	HideGroupColumnLabel bool
	GroupScope           grouping.Scope

	// DisableGrouping and DisableAggregation set the initial toggles;
	// remembered preferences override them.
	DisableGrouping    bool
	DisableAggregation bool
	Selectable         bool

	DefaultPageSize int

	Aggregations *aggregates.Registry
	Types        *columns.TypeRegistry
	Slicer       paging.Slicer
	Translator   i18n.Translator
	Preferences  prefs.Store
	Logger       *slog.Logger
}

// Options are the per-pass inputs.
type Options struct {
	OrderBy        sorting.OrderBy
	GroupedColumns []string
	Pagination     paging.Config
	// Filters maps a column name to a case-insensitive substring matched
	// against the formatted cell value.
	Filters map[string]string
}

// Engine processes records for one view. It is safe for concurrent use.
type Engine struct {
	cfg        Config
	set        *columns.Set
	resolver   *rowkeys.Resolver
	aggregator *aggregates.Aggregator
	types      *columns.TypeRegistry
	slicer     paging.Slicer
	translator i18n.Translator
	prefs      *prefs.View
	logger     *slog.Logger

	mu          sync.Mutex
	grouping    bool
	aggregation bool
	selected    *selection.Tracker
	last        *ViewModel
}

// New resolves the configured columns and returns an engine.
func New(cfg Config) *Engine {
	if cfg.Aggregations == nil {
		cfg.Aggregations = aggregates.NewRegistry()
	}
	if cfg.Types == nil {
		cfg.Types = columns.NewTypeRegistry()
	}
	if cfg.Slicer == nil {
		cfg.Slicer = paging.OffsetSlicer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GroupScope == "" {
		cfg.GroupScope = grouping.ScopePage
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = paging.DefaultPageSize
	}
	flags := columns.DefaultFlags()
	if cfg.Flags != nil {
		flags = *cfg.Flags
	}
	e := &Engine{
		cfg:         cfg,
		set:         columns.Resolve(cfg.Columns, flags, cfg.Aggregations),
		resolver:    rowkeys.NewResolver(cfg.KeyFunc, cfg.KeyFields...),
		aggregator:  aggregates.NewAggregator(cfg.Aggregations),
		types:       cfg.Types,
		slicer:      cfg.Slicer,
		translator:  i18n.Or(cfg.Translator),
		prefs:       prefs.NewView(cfg.Preferences, cfg.ViewID),
		logger:      cfg.Logger.With("view", cfg.ViewID),
		grouping:    !cfg.DisableGrouping,
		aggregation: !cfg.DisableAggregation,
		selected:    selection.NewTracker(),
	}
	return e
}

// ViewID returns the configured view id.
func (e *Engine) ViewID() string { return e.cfg.ViewID }

// Title returns the configured title, translated.
func (e *Engine) Title() string { return i18n.Label(e.translator, e.cfg.Title) }

// Columns returns the resolved column set.
func (e *Engine) Columns() *columns.Set { return e.set }

// Types returns the formatter registry.
func (e *Engine) Types() *columns.TypeRegistry { return e.types }

// Selectable reports whether rows of the view can be selected.
func (e *Engine) Selectable() bool { return e.cfg.Selectable }

// RowKey returns the key of rec, or "" when it has none.
func (e *Engine) RowKey(rec records.Record) string {
	key, _ := e.resolver.Resolve(rec)
	return key
}

// Translator returns the translator used for labels.
func (e *Engine) Translator() i18n.Translator { return e.translator }

// Process runs one pass over raw. Elements that are not records are
// skipped; records without a valid unique key are dropped. Neither case is
// an error.
func (e *Engine) Process(raw []any, opts Options) *ViewModel {
	recs, skipped := records.Normalize(raw)
	if len(skipped) > 0 {
		e.logger.Warn("skipped non-record inputs", "count", len(skipped), "indexes", skipped)
	}
	return e.process(recs, opts, len(skipped))
}

// ProcessRecords is Process for input already shaped as records.
func (e *Engine) ProcessRecords(recs []records.Record, opts Options) *ViewModel {
	return e.process(recs, opts, 0)
}

func (e *Engine) process(recs []records.Record, opts Options, skipped int) *ViewModel {
	e.mu.Lock()
	defer e.mu.Unlock()

	resolved := e.resolver.ResolveAll(recs, e.logger)
	filtered := e.filter(resolved.Records, opts.Filters)
	sorted := sorting.Sort(filtered, opts.OrderBy, e.set.Lookup, sorting.Options{
		CaseSensitive:  e.cfg.CaseSensitiveSort,
		PrimaryKeyOnly: e.cfg.PrimaryKeyOnly,
	})

	if opts.Pagination.PageSize <= 0 {
		opts.Pagination.PageSize = e.cfg.DefaultPageSize
	}

	vm := &ViewModel{
		ViewID:              e.cfg.ViewID,
		Title:               i18n.Label(e.translator, e.cfg.Title),
		Columns:             e.set.All,
		VisibleColumns:      e.set.Visible,
		GroupableColumns:    e.set.Groupable,
		AggregatableColumns: e.set.Aggregatable,
		AllData:             sorted,
		RowsByKey:           resolved.ByKey,
		OrderBy:             opts.OrderBy,
		GroupedColumns:      opts.GroupedColumns,
		Filters:             opts.Filters,
		GroupingEnabled:     e.grouping,
		AggregationEnabled:  e.aggregation,
		Skipped:             skipped,
		Invalid:             resolved.Invalid,
		Duplicate:           resolved.Duplicate,
	}

	if e.aggregation {
		vm.Aggregates = e.aggregator.Compute(sorted, e.set.Targets())
	}

	if e.grouping && len(opts.GroupedColumns) > 0 {
		e.paginateGroups(vm, sorted, opts)
	}
	if !vm.Grouped {
		page := e.slicer.Paginate(sorted, len(sorted), paging.Normalize(opts.Pagination, len(sorted)))
		vm.Rows = page.Data
		vm.PaginatedData = page.Data
		vm.Pagination = page.Meta
	}

	vm.PageKeys = make([]string, len(vm.PaginatedData))
	for i, rec := range vm.PaginatedData {
		vm.PageKeys[i], _ = e.resolver.Resolve(rec)
	}
	vm.SelectedKeys = e.selected.Keys()
	vm.AllSelected = e.cfg.Selectable && e.selected.IsAllSelected(vm.PageKeys)

	e.logger.Debug("processed view",
		"records", len(recs),
		"kept", len(resolved.Records),
		"filtered", len(sorted),
		"page", vm.Pagination.CurrentPage,
		"grouped", vm.Grouped,
	)
	e.last = vm
	return vm
}

// paginateGroups fills the grouped part of vm. It leaves vm.Grouped false
// when none of the requested columns can be grouped.
func (e *Engine) paginateGroups(vm *ViewModel, sorted []records.Record, opts Options) {
	g := e.grouper()
	params := paging.Normalize(opts.Pagination, len(sorted))

	switch e.cfg.GroupScope {
	case grouping.ScopeDataset:
		groups := g.Group(sorted, opts.GroupedColumns)
		if groups == nil {
			return
		}
		params = paging.Normalize(opts.Pagination, len(groups))
		start, end := paging.Window(len(groups), params)
		vm.Groups = groups[start:end]
		vm.Pagination = paging.Metadata{
			Total:       len(groups),
			CurrentPage: params.Page,
			PageSize:    params.Limit,
			TotalPages:  paging.TotalPages(len(groups), params.Limit),
		}
		for _, grp := range vm.Groups {
			vm.PaginatedData = append(vm.PaginatedData, grp.Members...)
		}
	default:
		page := e.slicer.Paginate(sorted, len(sorted), params)
		groups := g.Group(page.Data, opts.GroupedColumns)
		if groups == nil {
			return
		}
		vm.Groups = groups
		vm.PaginatedData = page.Data
		vm.Pagination = page.Meta
	}
	vm.Grouped = true
	vm.GroupsByKey = grouping.Index(vm.Groups)
}

func (e *Engine) grouper() *grouping.Grouper {
	opts := []grouping.Option{
		grouping.WithTypes(e.types),
		grouping.WithTranslator(e.translator),
		grouping.WithSeparator(e.cfg.GroupSeparator),
	}
	if e.cfg.HideGroupColumnLabel {
		opts = append(opts, grouping.WithoutColumnLabels())
	}
	if e.aggregation {
		opts = append(opts, grouping.WithAggregates(e.aggregator, e.set.Targets()))
	}
	return grouping.New(e.set.Lookup, opts...)
}

// filter keeps the records whose formatted value contains the filter text
// of every filterable column named in filters.
func (e *Engine) filter(recs []records.Record, filters map[string]string) []records.Record {
	type match struct {
		col    *columns.Column
		needle string
	}
	fold := cases.Fold()
	var active []match
	for name, value := range filters {
		col, ok := e.set.Lookup(name)
		if !ok || !col.Filterable || strings.TrimSpace(value) == "" {
			continue
		}
		active = append(active, match{col: col, needle: fold.String(strings.TrimSpace(value))})
	}
	if len(active) == 0 {
		return recs
	}
	out := make([]records.Record, 0, len(recs))
	for _, rec := range recs {
		keep := true
		for _, m := range active {
			if !strings.Contains(fold.String(m.col.FormattedValue(rec, e.types)), m.needle) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

// Last returns the view model of the most recent pass, or nil.
func (e *Engine) Last() *ViewModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}
