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
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/records"
)

// ToggleSelection flips the selection of row, which may be a record or a
// row key. It reports whether the row is selected afterwards. Grouped rows,
// rows without a valid key and views without selection are ignored.
func (e *Engine) ToggleSelection(row any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.Selectable {
		return false
	}
	key, ok := e.keyOf(row)
	if !ok {
		return false
	}
	selected := e.selected.Toggle(key)
	e.refreshSelection()
	return selected
}

func (e *Engine) keyOf(row any) (string, bool) {
	switch r := row.(type) {
	case *grouping.GroupedRow, grouping.GroupedRow:
		return "", false
	case string:
		if r == "" {
			return "", false
		}
		if e.last != nil {
			if _, known := e.last.RowsByKey[r]; !known {
				return "", false
			}
		}
		return r, true
	}
	rec, ok := records.AsRecord(row)
	if !ok {
		return "", false
	}
	return e.resolver.Resolve(rec)
}

// SelectAll selects every row of the current page and returns the number of
// selected keys.
func (e *Engine) SelectAll() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.Selectable || e.last == nil {
		return e.selected.Count()
	}
	e.selected.SelectAll(e.last.PageKeys)
	e.refreshSelection()
	return e.selected.Count()
}

// ClearSelection deselects every row.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected.Clear()
	e.refreshSelection()
}

// ClearPageSelection deselects the rows of the current page only.
func (e *Engine) ClearPageSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last != nil {
		e.selected.ClearKeys(e.last.PageKeys)
	}
	e.refreshSelection()
}

// SelectedKeys returns the selected row keys in sorted order.
func (e *Engine) SelectedKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected.Keys()
}

// SelectedRecords returns the selected records known to the last pass.
func (e *Engine) SelectedRecords() []records.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return nil
	}
	return e.selected.SelectedRecords(e.last.RowsByKey)
}

// IsAllSelected reports whether every row of the current page is selected.
func (e *Engine) IsAllSelected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return false
	}
	return e.selected.IsAllSelected(e.last.PageKeys)
}

// IsAllSelectedBySize reports whether at least a page size worth of rows is
// selected, without checking which rows they are.
func (e *Engine) IsAllSelectedBySize() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return false
	}
	return e.selected.IsAllSelectedBySize(e.last.Pagination.PageSize)
}

// refreshSelection replaces the last view model with a copy carrying the
// current selection. View models already handed out are not mutated. The
// caller holds e.mu.
func (e *Engine) refreshSelection() {
	if e.last == nil {
		return
	}
	vm := *e.last
	vm.SelectedKeys = e.selected.Keys()
	vm.AllSelected = e.cfg.Selectable && e.selected.IsAllSelected(vm.PageKeys)
	e.last = &vm
}
