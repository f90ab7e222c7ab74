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
	"fmt"
	"time"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/i18n"
	"github.com/google/taxinomia-grid/core/paging"
	"github.com/google/taxinomia-grid/core/query"
	"github.com/google/taxinomia-grid/core/records"
)

// TimingEntry is one measured step of a request.
type TimingEntry struct {
	Operation  string `json:"operation"`
	DurationMs string `json:"durationMs"`
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []TimingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, TimingEntry{
		Operation:  operation,
		DurationMs: formatMs(duration),
	})
}

// Entries returns all timing entries
func (tc *TimingCollector) Entries() []TimingEntry {
	return tc.entries
}

// TotalMs returns total elapsed time in milliseconds as formatted string
func (tc *TimingCollector) TotalMs() string {
	return formatMs(time.Since(tc.start))
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Microseconds())/1000.0)
}

type viewSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type columnResponse struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Sortable     bool   `json:"sortable"`
	Filterable   bool   `json:"filterable"`
	Groupable    bool   `json:"groupable"`
	Aggregatable bool   `json:"aggregatable"`
	Visible      bool   `json:"visible"`
	Aggregation  string `json:"aggregation,omitempty"`
	// AggregationLabel is the translated function name, prefixed by its
	// symbol for built-in functions.
	AggregationLabel string `json:"aggregationLabel,omitempty"`
	Sort             string `json:"sort,omitempty"`
	Grouped          bool   `json:"grouped"`
	Filter           string `json:"filter,omitempty"`
	SortURL          string `json:"sortURL,omitempty"`
	GroupURL         string `json:"groupURL,omitempty"`
	ClearFilterURL   string `json:"clearFilterURL,omitempty"`
}

type rowResponse struct {
	Key      string            `json:"key"`
	Selected bool              `json:"selected"`
	Cells    map[string]string `json:"cells"`
	Values   map[string]any    `json:"values"`
}

type groupResponse struct {
	Key        string             `json:"key"`
	Label      string             `json:"label"`
	Count      int                `json:"count"`
	Rows       []rowResponse      `json:"rows"`
	Aggregates aggregates.Results `json:"aggregates,omitempty"`
	// DrillURL filters on the group's value of the innermost grouped column
	// and stops grouping by it.
	DrillURL string `json:"drillURL,omitempty"`
}

type selectionResponse struct {
	Keys        []string `json:"keys"`
	Count       int      `json:"count"`
	AllSelected bool     `json:"allSelected"`
}

type droppedResponse struct {
	Skipped   int `json:"skipped"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
}

type linksResponse struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type viewResponse struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Columns            []columnResponse   `json:"columns"`
	Grouped            bool               `json:"grouped"`
	Rows               []rowResponse      `json:"rows,omitempty"`
	Groups             []groupResponse    `json:"groups,omitempty"`
	Aggregates         aggregates.Results `json:"aggregates,omitempty"`
	AggregationLabels  map[string]string  `json:"aggregationLabels,omitempty"`
	Pagination         paging.Metadata    `json:"pagination"`
	OrderBy            []string           `json:"orderBy"`
	GroupedColumns     []string           `json:"groupedColumns"`
	Filters            map[string]string  `json:"filters,omitempty"`
	GroupingEnabled    bool               `json:"groupingEnabled"`
	AggregationEnabled bool               `json:"aggregationEnabled"`
	Selectable         bool               `json:"selectable"`
	Selection          selectionResponse  `json:"selection"`
	Dropped            droppedResponse    `json:"dropped"`
	Links              linksResponse      `json:"links"`
	Timing             []TimingEntry      `json:"timing,omitempty"`
	TotalMs            string             `json:"totalMs,omitempty"`
}

func newSelectionResponse(vm *grid.ViewModel) selectionResponse {
	keys := vm.SelectedKeys
	if keys == nil {
		keys = []string{}
	}
	return selectionResponse{Keys: keys, Count: len(keys), AllSelected: vm.AllSelected}
}

// buildViewResponse renders vm with links computed from the effective query.
func buildViewResponse(engine *grid.Engine, vm *grid.ViewModel, q *query.Query) *viewResponse {
	resp := &viewResponse{
		ID:                 vm.ViewID,
		Title:              vm.Title,
		Grouped:            vm.Grouped,
		Aggregates:         vm.Aggregates,
		Pagination:         vm.Pagination,
		OrderBy:            vm.OrderBy.Strings(),
		GroupedColumns:     vm.GroupedColumns,
		Filters:            vm.Filters,
		GroupingEnabled:    vm.GroupingEnabled,
		AggregationEnabled: vm.AggregationEnabled,
		Selectable:         engine.Selectable(),
		Selection:          newSelectionResponse(vm),
		Dropped:            droppedResponse{Skipped: vm.Skipped, Invalid: vm.Invalid, Duplicate: vm.Duplicate},
	}
	if resp.GroupedColumns == nil {
		resp.GroupedColumns = []string{}
	}

	for _, col := range vm.Columns {
		resp.Columns = append(resp.Columns, buildColumnResponse(engine, col, vm, q))
	}

	resp.AggregationLabels = aggregationLabels(engine, vm)

	if vm.Grouped {
		for _, g := range vm.Groups {
			resp.Groups = append(resp.Groups, buildGroupResponse(engine, vm, g, q))
		}
	} else {
		resp.Rows = buildRows(engine, vm, vm.Rows)
	}

	resp.Links.Self = q.ToURL()
	if vm.Pagination.HasNextPage() {
		resp.Links.Next = q.WithPage(vm.Pagination.CurrentPage + 1).String()
	}
	if vm.Pagination.HasPreviousPage() {
		resp.Links.Prev = q.WithPage(vm.Pagination.CurrentPage - 1).String()
	}
	return resp
}

func buildColumnResponse(engine *grid.Engine, col *columns.Column, vm *grid.ViewModel, q *query.Query) columnResponse {
	c := columnResponse{
		Name:         col.Name,
		Label:        i18n.Label(engine.Translator(), col.DisplayLabel()),
		Type:         string(col.Type),
		Sortable:     col.Sortable,
		Filterable:   col.Filterable,
		Groupable:    col.Groupable,
		Aggregatable: col.Aggregatable,
		Visible:      col.Visible,
		Grouped:      q.IsColumnGrouped(col.Name),
		Filter:       vm.Filters[col.Name],
	}
	if col.Aggregatable {
		c.Aggregation = col.AggregationName
		c.AggregationLabel = aggregationLabel(engine.Translator(), col.AggregationName)
	}
	if order, ok := vm.OrderBy.Find(col.Name); ok {
		c.Sort = order.Direction.String()
	}
	if col.Sortable {
		c.SortURL = q.WithSortToggled(col.Name).String()
	}
	if col.Groupable && vm.GroupingEnabled {
		c.GroupURL = q.WithGroupedColumnToggled(col.Name).String()
	}
	if c.Filter != "" {
		c.ClearFilterURL = q.WithFilter(col.Name, "").String()
	}
	return c
}

// aggregationLabel translates a function name. Built-in functions carry
// their symbol, as in "Σ Somme".
func aggregationLabel(t i18n.Translator, name string) string {
	label := i18n.Label(t, name)
	if sym := aggregates.Symbol(name); sym != name {
		return sym + " " + label
	}
	return label
}

// aggregationLabels labels every function name present in the view or group
// aggregates.
func aggregationLabels(engine *grid.Engine, vm *grid.ViewModel) map[string]string {
	labels := make(map[string]string)
	add := func(results aggregates.Results) {
		for _, fns := range results {
			for name := range fns {
				if _, ok := labels[name]; !ok {
					labels[name] = aggregationLabel(engine.Translator(), name)
				}
			}
		}
	}
	add(vm.Aggregates)
	for _, g := range vm.Groups {
		add(g.Aggregates)
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}

func buildGroupResponse(engine *grid.Engine, vm *grid.ViewModel, g *grouping.GroupedRow, q *query.Query) groupResponse {
	resp := groupResponse{
		Key:        g.GroupKey,
		Label:      g.Label,
		Count:      g.Len(),
		Rows:       buildRows(engine, vm, g.Members),
		Aggregates: g.Aggregates,
	}
	if n := len(vm.GroupedColumns); n > 0 && g.Len() > 0 {
		if col, ok := engine.Columns().Lookup(vm.GroupedColumns[n-1]); ok && col.Filterable {
			if value := col.FormattedValue(g.Members[0], engine.Types()); value != "" {
				resp.DrillURL = q.WithFilterAndUngrouped(col.Name, value).String()
			}
		}
	}
	return resp
}

func buildRows(engine *grid.Engine, vm *grid.ViewModel, recs []records.Record) []rowResponse {
	selected := make(map[string]bool, len(vm.SelectedKeys))
	for _, k := range vm.SelectedKeys {
		selected[k] = true
	}
	rows := make([]rowResponse, 0, len(recs))
	for _, rec := range recs {
		key := engine.RowKey(rec)
		row := rowResponse{
			Key:      key,
			Selected: selected[key],
			Cells:    make(map[string]string, len(vm.VisibleColumns)),
			Values:   make(map[string]any, len(vm.VisibleColumns)),
		}
		for _, col := range vm.VisibleColumns {
			row.Cells[col.Name] = col.FormattedValue(rec, engine.Types())
			row.Values[col.Name] = col.Value(rec)
		}
		rows = append(rows, row)
	}
	return rows
}
