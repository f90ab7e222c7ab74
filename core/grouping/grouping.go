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

// Package grouping collapses records into labelled groups keyed by the
// formatted values of one or more columns.
package grouping

import (
	"regexp"
	"strings"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/i18n"
	"github.com/google/taxinomia-grid/core/records"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// NotAvailable replaces empty values in group labels.
	NotAvailable = "N/A"
	// DefaultSeparator joins the per-column parts of a label.
	DefaultSeparator = ","
)

// Scope selects which records are grouped.
type Scope string

const (
	// ScopePage groups the rows of the current page.
	ScopePage Scope = "page"
	// ScopeDataset groups the whole sorted set and paginates the groups.
	ScopeDataset Scope = "dataset"
)

// ParseScope returns the scope named s, defaulting to ScopePage.
func ParseScope(s string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(s))) == ScopeDataset {
		return ScopeDataset
	}
	return ScopePage
}

// GroupedRow is one group of records sharing a label.
type GroupedRow struct {
	Label      string             `json:"label"`
	GroupKey   string             `json:"groupKey"`
	Members    []records.Record   `json:"members"`
	Aggregates aggregates.Results `json:"aggregates,omitempty"`
}

// Len returns the number of members.
func (g *GroupedRow) Len() int {
	return len(g.Members)
}

// Lookup resolves a field name to its column.
type Lookup func(name string) (*columns.Column, bool)

// Grouper builds groups. The zero value is not usable; use New.
type Grouper struct {
	lookup          Lookup
	types           *columns.TypeRegistry
	translator      i18n.Translator
	separator       string
	hideColumnLabel bool
	aggregator      *aggregates.Aggregator
	targets         []aggregates.Target
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithTypes sets the formatter registry used for label values.
func WithTypes(types *columns.TypeRegistry) Option {
	return func(g *Grouper) { g.types = types }
}

// WithTranslator sets the translator for column labels.
func WithTranslator(t i18n.Translator) Option {
	return func(g *Grouper) { g.translator = t }
}

// WithSeparator overrides DefaultSeparator.
func WithSeparator(sep string) Option {
	return func(g *Grouper) {
		if sep != "" {
			g.separator = sep
		}
	}
}

// WithoutColumnLabels drops the "Label : " prefix from label parts.
func WithoutColumnLabels() Option {
	return func(g *Grouper) { g.hideColumnLabel = true }
}

// WithAggregates computes per-group results for targets.
func WithAggregates(a *aggregates.Aggregator, targets []aggregates.Target) Option {
	return func(g *Grouper) {
		g.aggregator = a
		g.targets = targets
	}
}

// New creates a Grouper resolving columns through lookup.
func New(lookup Lookup, opts ...Option) *Grouper {
	g := &Grouper{
		lookup:     lookup,
		translator: i18n.Identity,
		separator:  DefaultSeparator,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.types == nil {
		g.types = columns.NewTypeRegistry()
	}
	g.translator = i18n.Or(g.translator)
	return g
}

var whitespace = regexp.MustCompile(`\s+`)

// Group partitions rows by the groupable columns named in groupedColumns.
// It returns nil when none of them is a registered groupable column. Groups
// appear in the order their first member appears.
func (g *Grouper) Group(rows []records.Record, groupedColumns []string) []*GroupedRow {
	cols := g.resolve(groupedColumns)
	if len(cols) == 0 {
		return nil
	}

	upper := cases.Upper(language.Und)
	var groups []*GroupedRow
	byKey := map[string]*GroupedRow{}
	for _, rec := range rows {
		label := upper.String(g.label(rec, cols))
		key := whitespace.ReplaceAllString(label, "_")
		grp, ok := byKey[key]
		if !ok {
			grp = &GroupedRow{Label: label, GroupKey: key}
			byKey[key] = grp
			groups = append(groups, grp)
		}
		grp.Members = append(grp.Members, rec)
	}

	if g.aggregator != nil && len(g.targets) > 0 {
		for _, grp := range groups {
			grp.Aggregates = g.aggregator.Compute(grp.Members, g.targets)
		}
	}
	return groups
}

func (g *Grouper) resolve(names []string) []*columns.Column {
	if g.lookup == nil {
		return nil
	}
	cols := make([]*columns.Column, 0, len(names))
	for _, name := range names {
		col, ok := g.lookup(name)
		if !ok || !col.Groupable {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func (g *Grouper) label(rec records.Record, cols []*columns.Column) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		value := NotAvailable
		if !records.IsEmpty(col.Value(rec)) {
			value = col.FormattedValue(rec, g.types)
		}
		if !g.hideColumnLabel {
			value = i18n.Label(g.translator, col.DisplayLabel()) + " : " + value
		}
		parts[i] = value
	}
	return strings.Join(parts, g.separator)
}

// Index maps group keys to their groups.
func Index(groups []*GroupedRow) map[string]*GroupedRow {
	out := make(map[string]*GroupedRow, len(groups))
	for _, grp := range groups {
		out[grp.GroupKey] = grp
	}
	return out
}
