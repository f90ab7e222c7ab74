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

// Package query parses and builds the URLs that carry the state of a grid
// view: sort order, grouping, filters, pagination and column order.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/safehtml"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/paging"
	"github.com/google/taxinomia-grid/core/sorting"
)

// Query represents the parsed state of a view URL
type Query struct {
	// Base path (e.g., "/api/views/orders")
	Path string

	Columns        []string          // Ordered list of visible columns (reordered: filtered, grouped, then others)
	GroupedColumns []string          // Ordered list of columns to group by
	Filters        map[string]string // Column filters (columnName -> filterValue)
	OrderBy        sorting.OrderBy   // Sort keys in priority order
	Page           int               // 1-based page number (0 = unset)
	PageSize       int               // Rows or groups per page (0 = unset)

	// Which parameters were present in the URL. Absent ones fall back to
	// remembered preferences.
	HasSort     bool
	HasGrouped  bool
	HasPageSize bool
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	state := &Query{
		Path:    u.Path,
		Filters: make(map[string]string),
	}

	q := u.Query()

	// Extract columns parameter (format: col1,col2,col3)
	state.Columns = splitList(q.Get("columns"))

	// Extract grouped columns parameter
	_, state.HasGrouped = q["grouped"]
	state.GroupedColumns = splitList(q.Get("grouped"))

	// Extract sort parameter (format: age:asc,name:desc)
	_, state.HasSort = q["sort"]
	state.OrderBy = sorting.ParseOrderBy(q.Get("sort"))
	if state.OrderBy == nil {
		state.OrderBy = sorting.OrderBy{}
	}

	// Extract pagination parameters
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		state.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil && size > 0 {
		state.PageSize = size
		state.HasPageSize = true
	}

	// Extract filter parameters (format: filter:columnName=value)
	for key, values := range q {
		if strings.HasPrefix(key, "filter:") && len(values) > 0 {
			columnName := strings.TrimPrefix(key, "filter:")
			state.Filters[columnName] = values[0]
		}
	}

	// Reorder columns: filtered columns first, then grouped columns, then others
	state.reorderColumns()

	return state
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	clone := &Query{
		Path:           s.Path,
		Columns:        make([]string, len(s.Columns)),
		GroupedColumns: make([]string, len(s.GroupedColumns)),
		Filters:        make(map[string]string, len(s.Filters)),
		OrderBy:        make(sorting.OrderBy, len(s.OrderBy)),
		Page:           s.Page,
		PageSize:       s.PageSize,
		HasSort:        s.HasSort,
		HasGrouped:     s.HasGrouped,
		HasPageSize:    s.HasPageSize,
	}
	copy(clone.Columns, s.Columns)
	copy(clone.GroupedColumns, s.GroupedColumns)
	copy(clone.OrderBy, s.OrderBy)
	for colName, filterValue := range s.Filters {
		clone.Filters[colName] = filterValue
	}
	return clone
}

// reorderColumns reorders the Columns slice to maintain:
// 1. Filtered columns (leftmost) - only columns that are filtered but NOT grouped
// 2. Grouped columns (middle) - in GroupedColumns order (the grouping hierarchy)
// 3. Other columns (rightmost)
// A column both filtered and grouped stays in the grouped section.
func (s *Query) reorderColumns() {
	if len(s.Columns) == 0 {
		return
	}

	groupedCols := make(map[string]bool, len(s.GroupedColumns))
	for _, colName := range s.GroupedColumns {
		groupedCols[colName] = true
	}
	visibleCols := make(map[string]bool, len(s.Columns))
	for _, colName := range s.Columns {
		visibleCols[colName] = true
	}

	var filtered, others []string
	for _, colName := range s.Columns {
		switch {
		case groupedCols[colName]:
			// Added below in GroupedColumns order
		case s.Filters[colName] != "":
			filtered = append(filtered, colName)
		default:
			others = append(others, colName)
		}
	}

	var grouped []string
	for _, colName := range s.GroupedColumns {
		if visibleCols[colName] {
			grouped = append(grouped, colName)
		}
	}

	s.Columns = make([]string, 0, len(filtered)+len(grouped)+len(others))
	s.Columns = append(s.Columns, filtered...)
	s.Columns = append(s.Columns, grouped...)
	s.Columns = append(s.Columns, others...)
}

// Options converts the query into grid options. Parameters absent from the
// URL stay unset so the engine can recall them from preferences.
func (s *Query) Options() grid.Options {
	opts := grid.Options{
		Pagination: paging.Config{CurrentPage: s.Page, PageSize: s.PageSize},
		Filters:    make(map[string]string, len(s.Filters)),
	}
	if s.HasSort {
		opts.OrderBy = append(sorting.OrderBy{}, s.OrderBy...)
	}
	if s.HasGrouped {
		opts.GroupedColumns = append([]string{}, s.GroupedColumns...)
	}
	for k, v := range s.Filters {
		opts.Filters[k] = v
	}
	return opts
}

// FromOptions builds the query that reproduces opts at path.
func FromOptions(path string, opts grid.Options) *Query {
	s := &Query{
		Path:           path,
		Columns:        []string{},
		GroupedColumns: append([]string{}, opts.GroupedColumns...),
		Filters:        make(map[string]string, len(opts.Filters)),
		OrderBy:        append(sorting.OrderBy{}, opts.OrderBy...),
		Page:           opts.Pagination.CurrentPage,
		PageSize:       opts.Pagination.PageSize,
		HasSort:        true,
		HasGrouped:     true,
		HasPageSize:    opts.Pagination.PageSize > 0,
	}
	for k, v := range opts.Filters {
		s.Filters[k] = v
	}
	return s
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()

	if len(s.Columns) > 0 {
		q.Set("columns", strings.Join(s.Columns, ","))
	}
	if len(s.GroupedColumns) > 0 || s.HasGrouped {
		q.Set("grouped", strings.Join(s.GroupedColumns, ","))
	}
	if len(s.OrderBy) > 0 || s.HasSort {
		q.Set("sort", s.OrderBy.String())
	}

	// Add filter parameters in a stable order (format: filter:columnName=value)
	names := make([]string, 0, len(s.Filters))
	for colName, filterValue := range s.Filters {
		if filterValue != "" {
			names = append(names, colName)
		}
	}
	sort.Strings(names)
	for _, colName := range names {
		q.Set("filter:"+colName, s.Filters[colName])
	}

	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(s.PageSize))
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	// URLSanitized sanitizes the input string and returns a URL
	return safehtml.URLSanitized(s.ToURL())
}

// IsColumnGrouped checks if a column is in the grouped columns list
func (s *Query) IsColumnGrouped(column string) bool {
	for _, col := range s.GroupedColumns {
		if col == column {
			return true
		}
	}
	return false
}

// WithPage returns a URL pointing at another page
func (s *Query) WithPage(page int) safehtml.URL {
	newState := s.Clone()
	newState.Page = page
	return newState.ToSafeURL()
}

// WithPageSize returns a URL with a different page size, back on page 1
func (s *Query) WithPageSize(size int) safehtml.URL {
	newState := s.Clone()
	newState.PageSize = size
	newState.HasPageSize = size > 0
	newState.Page = 1
	return newState.ToSafeURL()
}

// WithSortToggled returns a URL where the column cycles through ascending,
// descending and unsorted
func (s *Query) WithSortToggled(column string) safehtml.URL {
	newState := s.Clone()
	newState.OrderBy = s.OrderBy.Toggled(column)
	newState.HasSort = true
	return newState.ToSafeURL()
}

// WithGroupedColumnToggled returns a URL with the grouped column toggled
// If the column is already grouped, it's removed from grouping
// If the column is not grouped, it's added to the end of the grouping order
// This method also reorders the Columns list to ensure grouped columns appear first
func (s *Query) WithGroupedColumnToggled(column string) safehtml.URL {
	newState := s.Clone()
	found := false
	newGrouped := make([]string, 0, len(s.GroupedColumns))

	for _, col := range s.GroupedColumns {
		if col == column {
			found = true
		} else {
			newGrouped = append(newGrouped, col)
		}
	}

	if found {
		// Column was grouped, remove it
		newState.GroupedColumns = newGrouped
	} else {
		// Column was not grouped, add it to the end
		newState.GroupedColumns = append(newGrouped, column)
	}
	newState.HasGrouped = true
	newState.Page = 1

	newState.reorderColumns()

	return newState.ToSafeURL()
}

// WithFilter returns a URL with the filter for column set to value. An empty
// value removes the filter. Filtering moves back to page 1.
func (s *Query) WithFilter(column, value string) safehtml.URL {
	newState := s.Clone()
	if value == "" {
		delete(newState.Filters, column)
	} else {
		newState.Filters[column] = value
	}
	newState.Page = 1
	newState.reorderColumns()
	return newState.ToSafeURL()
}

// WithFilterAndUngrouped returns a URL that adds a filter for the column and removes it from grouping
func (s *Query) WithFilterAndUngrouped(column, value string) safehtml.URL {
	newState := s.Clone()
	newState.Filters[column] = value

	newGrouped := make([]string, 0, len(s.GroupedColumns))
	for _, col := range s.GroupedColumns {
		if col != column {
			newGrouped = append(newGrouped, col)
		}
	}
	newState.GroupedColumns = newGrouped
	newState.HasGrouped = true
	newState.Page = 1

	newState.reorderColumns()

	return newState.ToSafeURL()
}
