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
	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/paging"
	"github.com/google/taxinomia-grid/core/records"
	"github.com/google/taxinomia-grid/core/sorting"
)

// ViewModel is the result of one processing pass.
type ViewModel struct {
	ViewID string
	Title  string

	Columns             []*columns.Column
	VisibleColumns      []*columns.Column
	GroupableColumns    []*columns.Column
	AggregatableColumns []*columns.Column

	// Rows holds the current page when the view is not grouped.
	Rows []records.Record
	// Groups holds the groups of the current page when the view is grouped.
	Groups []*grouping.GroupedRow

	AllData       []records.Record // filtered and sorted, before pagination
	PaginatedData []records.Record // records of the current page
	PageKeys      []string         // row keys of PaginatedData, in order

	RowsByKey   map[string]records.Record
	GroupsByKey map[string]*grouping.GroupedRow

	// Aggregates are computed over AllData.
	Aggregates aggregates.Results
	Pagination paging.Metadata

	OrderBy        sorting.OrderBy
	GroupedColumns []string
	Filters        map[string]string

	SelectedKeys []string
	AllSelected  bool

	Grouped            bool
	GroupingEnabled    bool
	AggregationEnabled bool

	// Skipped counts inputs that were not records; Invalid and Duplicate
	// count records dropped for their row key.
	Skipped   int
	Invalid   int
	Duplicate int
}

// Data returns Groups for a grouped view and Rows otherwise.
func (vm *ViewModel) Data() any {
	if vm.Grouped {
		return vm.Groups
	}
	return vm.Rows
}

// IsSelected reports whether key is in the selection captured by the pass.
func (vm *ViewModel) IsSelected(key string) bool {
	for _, k := range vm.SelectedKeys {
		if k == key {
			return true
		}
	}
	return false
}
