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

// Package sorting orders records by one or more column keys.
package sorting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/records"
	"golang.org/x/text/cases"
)

// Direction is the multiplier applied to a comparison result.
type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection parses "asc" / "desc" case-insensitively. Anything else is
// ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

// MarshalText encodes the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "asc" or "desc".
func (d *Direction) UnmarshalText(text []byte) error {
	*d = ParseDirection(string(text))
	return nil
}

// Order is one sort key.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// OrderBy is an ordered list of sort keys.
type OrderBy []Order

// Fields returns the field names in order.
func (o OrderBy) Fields() []string {
	out := make([]string, len(o))
	for i, e := range o {
		out[i] = e.Field
	}
	return out
}

// Find returns the entry for field.
func (o OrderBy) Find(field string) (Order, bool) {
	for _, e := range o {
		if e.Field == field {
			return e, true
		}
	}
	return Order{}, false
}

// Strings encodes each entry as "field:direction".
func (o OrderBy) Strings() []string {
	out := make([]string, len(o))
	for i, e := range o {
		dir := e.Direction
		if dir != Desc {
			dir = Asc
		}
		out[i] = e.Field + ":" + dir.String()
	}
	return out
}

// String joins Strings with commas, the form accepted by ParseOrderBy.
func (o OrderBy) String() string {
	return strings.Join(o.Strings(), ",")
}

// ParseOrderBy parses "age:asc,name:desc". A missing direction is
// ascending; empty entries are skipped.
func ParseOrderBy(s string) OrderBy {
	return OrderByFromStrings(strings.Split(s, ","))
}

// OrderByFromStrings parses entries of the form produced by Strings.
func OrderByFromStrings(entries []string) OrderBy {
	var out OrderBy
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		field, dir, _ := strings.Cut(entry, ":")
		if field = strings.TrimSpace(field); field == "" {
			continue
		}
		out = append(out, Order{Field: field, Direction: ParseDirection(dir)})
	}
	return out
}

// Toggled returns a copy of o where field cycles asc, desc, removed. A
// field not yet present is appended ascending.
func (o OrderBy) Toggled(field string) OrderBy {
	out := make(OrderBy, 0, len(o)+1)
	found := false
	for _, e := range o {
		if e.Field != field {
			out = append(out, e)
			continue
		}
		found = true
		if e.Direction != Desc {
			out = append(out, Order{Field: field, Direction: Desc})
		}
	}
	if !found {
		out = append(out, Order{Field: field, Direction: Asc})
	}
	return out
}

// Options tune the comparator.
type Options struct {
	// CaseSensitive disables case folding of string and boolean values.
	CaseSensitive bool
	// PrimaryKeyOnly decides every pair on the first usable sort key, without
	// falling through to later keys on ties.
	PrimaryKeyOnly bool
}

// Lookup resolves a field name to its column.
type Lookup func(name string) (*columns.Column, bool)

type sortKey struct {
	col *columns.Column
	dir Direction
}

// Sort returns a stably sorted copy of recs. Fields that are not registered
// sortable columns are ignored; with no usable key the input order is kept.
func Sort(recs []records.Record, orderBy OrderBy, lookup Lookup, opts Options) []records.Record {
	out := slices.Clone(recs)
	keys := resolveKeys(orderBy, lookup)
	if len(keys) == 0 || len(out) < 2 {
		return out
	}
	if opts.PrimaryKeyOnly {
		keys = keys[:1]
	}

	cmp := &comparer{fold: !opts.CaseSensitive, caser: cases.Fold()}
	slices.SortStableFunc(out, func(a, b records.Record) int {
		for _, k := range keys {
			if c := cmp.compare(k.col.Value(a), k.col.Value(b)); c != 0 {
				return c * int(k.dir)
			}
		}
		return 0
	})
	return out
}

func resolveKeys(orderBy OrderBy, lookup Lookup) []sortKey {
	if lookup == nil {
		return nil
	}
	keys := make([]sortKey, 0, len(orderBy))
	for _, o := range orderBy {
		col, ok := lookup(o.Field)
		if !ok || !col.Sortable {
			continue
		}
		dir := o.Direction
		if dir != Desc {
			dir = Asc
		}
		keys = append(keys, sortKey{col: col, dir: dir})
	}
	return keys
}

type comparer struct {
	fold  bool
	caser cases.Caser
}

// compare returns -1, 0 or 1. Empty values normalize to "". When either
// side is a string or bool both sides compare as (optionally folded) text;
// numbers and times compare natively.
func (c *comparer) compare(a, b any) int {
	if records.IsEmpty(a) {
		a = ""
	}
	if records.IsEmpty(b) {
		b = ""
	}
	if isText(a) || isText(b) {
		return strings.Compare(c.text(a), c.text(b))
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := records.ToNumber(a); ok {
		if fb, ok := records.ToNumber(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(c.text(a), c.text(b))
}

func isText(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	return false
}

func (c *comparer) text(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if c.fold {
		return c.caser.String(s)
	}
	return s
}
