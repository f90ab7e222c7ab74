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

package grid

import (
	"context"
	"fmt"

	"github.com/google/taxinomia-grid/core/sorting"
)

// Preference names, stored under "<viewID>.<name>".
const (
	PrefGrouping       = "grouping"
	PrefAggregation    = "aggregation"
	PrefOrderBy        = "orderBy"
	PrefGroupedColumns = "groupedColumns"
	PrefPageSize       = "pageSize"
)

// LoadPreferences reads the grouping and aggregation toggles. Missing
// values keep the configured defaults.
func (e *Engine) LoadPreferences(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	grouping, err := e.prefs.Bool(ctx, PrefGrouping, e.grouping)
	if err != nil {
		return fmt.Errorf("grid: load %s preferences: %w", e.cfg.ViewID, err)
	}
	aggregation, err := e.prefs.Bool(ctx, PrefAggregation, e.aggregation)
	if err != nil {
		return fmt.Errorf("grid: load %s preferences: %w", e.cfg.ViewID, err)
	}
	e.grouping, e.aggregation = grouping, aggregation
	return nil
}

// GroupingEnabled reports the current grouping toggle.
func (e *Engine) GroupingEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grouping
}

// AggregationEnabled reports the current aggregation toggle.
func (e *Engine) AggregationEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aggregation
}

// SetGrouping switches grouping and persists the toggle. The in-memory
// value changes even when persisting fails.
func (e *Engine) SetGrouping(ctx context.Context, on bool) error {
	e.mu.Lock()
	e.grouping = on
	e.mu.Unlock()
	return e.prefs.Set(ctx, PrefGrouping, on)
}

// SetAggregation switches aggregation and persists the toggle.
func (e *Engine) SetAggregation(ctx context.Context, on bool) error {
	e.mu.Lock()
	e.aggregation = on
	e.mu.Unlock()
	return e.prefs.Set(ctx, PrefAggregation, on)
}

// RememberOptions persists the sort order, grouped columns and page size of
// opts.
func (e *Engine) RememberOptions(ctx context.Context, opts Options) error {
	if err := e.prefs.SetStrings(ctx, PrefOrderBy, opts.OrderBy.Strings()); err != nil {
		return err
	}
	if err := e.prefs.SetStrings(ctx, PrefGroupedColumns, opts.GroupedColumns); err != nil {
		return err
	}
	if opts.Pagination.PageSize > 0 {
		if err := e.prefs.Set(ctx, PrefPageSize, opts.Pagination.PageSize); err != nil {
			return err
		}
	}
	return nil
}

// RecallOptions fills the fields of opts left unset from the remembered
// preferences. A nil OrderBy or GroupedColumns is unset; an empty non-nil
// slice is an explicit choice and is kept.
func (e *Engine) RecallOptions(ctx context.Context, opts Options) (Options, error) {
	if opts.OrderBy == nil {
		entries, err := e.prefs.Strings(ctx, PrefOrderBy)
		if err != nil {
			return opts, fmt.Errorf("grid: recall %s: %w", PrefOrderBy, err)
		}
		opts.OrderBy = sorting.OrderByFromStrings(entries)
	}
	if opts.GroupedColumns == nil {
		cols, err := e.prefs.Strings(ctx, PrefGroupedColumns)
		if err != nil {
			return opts, fmt.Errorf("grid: recall %s: %w", PrefGroupedColumns, err)
		}
		opts.GroupedColumns = cols
	}
	if opts.Pagination.PageSize <= 0 {
		size, err := e.prefs.Int(ctx, PrefPageSize, 0)
		if err != nil {
			return opts, fmt.Errorf("grid: recall %s: %w", PrefPageSize, err)
		}
		opts.Pagination.PageSize = size
	}
	return opts, nil
}
