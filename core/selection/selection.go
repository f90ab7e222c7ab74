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

// Package selection tracks the set of selected row keys of a view.
package selection

import (
	"sort"

	"github.com/google/taxinomia-grid/core/records"
)

// Tracker is a set of row keys. It is not safe for concurrent use; the grid
// engine serializes access.
type Tracker struct {
	keys map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{keys: map[string]struct{}{}}
}

// Toggle flips the membership of key and reports whether it is now
// selected. Empty keys are ignored.
func (t *Tracker) Toggle(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := t.keys[key]; ok {
		delete(t.keys, key)
		return false
	}
	t.keys[key] = struct{}{}
	return true
}

// Select adds keys.
func (t *Tracker) Select(keys ...string) {
	for _, k := range keys {
		if k != "" {
			t.keys[k] = struct{}{}
		}
	}
}

// Deselect removes keys.
func (t *Tracker) Deselect(keys ...string) {
	for _, k := range keys {
		delete(t.keys, k)
	}
}

// SelectAll adds every key in keys, usually the keys of the current page.
func (t *Tracker) SelectAll(keys []string) {
	t.Select(keys...)
}

// Clear removes every key.
func (t *Tracker) Clear() {
	clear(t.keys)
}

// ClearKeys removes only keys.
func (t *Tracker) ClearKeys(keys []string) {
	t.Deselect(keys...)
}

// Has reports whether key is selected.
func (t *Tracker) Has(key string) bool {
	_, ok := t.keys[key]
	return ok
}

// Count returns the number of selected keys.
func (t *Tracker) Count() int {
	return len(t.keys)
}

// Keys returns the selected keys in sorted order.
func (t *Tracker) Keys() []string {
	out := make([]string, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsAllSelected reports whether every key of pageKeys is selected. An empty
// page is never fully selected.
func (t *Tracker) IsAllSelected(pageKeys []string) bool {
	if len(pageKeys) == 0 {
		return false
	}
	for _, k := range pageKeys {
		if !t.Has(k) {
			return false
		}
	}
	return true
}

// IsAllSelectedBySize reports whether at least pageSize keys are selected,
// regardless of which keys they are.
func (t *Tracker) IsAllSelectedBySize(pageSize int) bool {
	return pageSize > 0 && pageSize <= len(t.keys)
}

// SelectedRecords returns the records of the selected keys known to byKey,
// in key order.
func (t *Tracker) SelectedRecords(byKey map[string]records.Record) []records.Record {
	out := make([]records.Record, 0, len(t.keys))
	for _, k := range t.Keys() {
		if rec, ok := byKey[k]; ok {
			out = append(out, rec)
		}
	}
	return out
}
