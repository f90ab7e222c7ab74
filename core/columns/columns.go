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

// Package columns resolves column declarations into the active column set of
// a view and formats cell values by column type.
package columns

import (
	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/records"
)

// Type names the value type of a column. It selects the formatter used for
// display and grouping.
type Type string

const (
	TypeText     Type = "text"
	TypeNumber   Type = "number"
	TypeCurrency Type = "currency"
	TypeBoolean  Type = "boolean"
	TypeDate     Type = "date"
	TypeDateTime Type = "datetime"
)

// CellValueFunc projects a record into the value of a column.
type CellValueFunc func(records.Record) any

// FormatFunc renders a cell value as display text.
type FormatFunc func(any) string

// Declaration is the raw, caller-supplied description of a column.
// Capabilities are opt-out: a zero Declaration is sortable, filterable,
// groupable, aggregatable and visible as far as the engine flags allow.
type Declaration struct {
	Name  string // must not contain any of the following characters: & = : ,
	Label string
	Type  Type

	DisableSort      bool
	DisableFilter    bool
	DisableGroup     bool
	DisableAggregate bool
	Hidden           bool

	// AggregationName selects a registry function. AggregationFunc, when
	// set, takes precedence and is computed under AggregationName.
	AggregationName string
	AggregationFunc aggregates.Func

	CellValue CellValueFunc
	Format    FormatFunc
}

// Option configures a Declaration built with New.
type Option func(*Declaration)

// New builds a declaration for name with the given type.
func New(name string, typ Type, opts ...Option) Declaration {
	d := Declaration{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Text, Number, Currency, Boolean and Date are shorthands for New.
func Text(name string, opts ...Option) Declaration     { return New(name, TypeText, opts...) }
func Number(name string, opts ...Option) Declaration   { return New(name, TypeNumber, opts...) }
func Currency(name string, opts ...Option) Declaration { return New(name, TypeCurrency, opts...) }
func Boolean(name string, opts ...Option) Declaration  { return New(name, TypeBoolean, opts...) }
func Date(name string, opts ...Option) Declaration     { return New(name, TypeDate, opts...) }

func WithLabel(label string) Option {
	return func(d *Declaration) { d.Label = label }
}

// WithAggregation selects a registered aggregation function by name.
func WithAggregation(name string) Option {
	return func(d *Declaration) { d.AggregationName = name }
}

// WithAggregationFunc attaches a custom aggregation function.
func WithAggregationFunc(name string, fn aggregates.Func) Option {
	return func(d *Declaration) {
		d.AggregationName = name
		d.AggregationFunc = fn
	}
}

func WithCellValue(fn CellValueFunc) Option {
	return func(d *Declaration) { d.CellValue = fn }
}

func WithFormat(fn FormatFunc) Option {
	return func(d *Declaration) { d.Format = fn }
}

func Unsortable() Option     { return func(d *Declaration) { d.DisableSort = true } }
func Unfilterable() Option   { return func(d *Declaration) { d.DisableFilter = true } }
func Ungroupable() Option    { return func(d *Declaration) { d.DisableGroup = true } }
func Unaggregatable() Option { return func(d *Declaration) { d.DisableAggregate = true } }
func Hidden() Option         { return func(d *Declaration) { d.Hidden = true } }

// Flags are the engine-level capability switches.
type Flags struct {
	Sortable     bool
	Filterable   bool
	Groupable    bool
	Aggregatable bool
}

// DefaultFlags enables every capability.
func DefaultFlags() Flags {
	return Flags{Sortable: true, Filterable: true, Groupable: true, Aggregatable: true}
}

// Column is a resolved declaration with its effective capabilities.
type Column struct {
	Name  string
	Label string
	Type  Type

	Sortable     bool
	Filterable   bool
	Groupable    bool
	Aggregatable bool
	Visible      bool

	AggregationName string
	Aggregation     aggregates.Func
	customAgg       bool

	cellValue CellValueFunc
	format    FormatFunc
}

// Value returns the cell value of the column for rec.
func (c *Column) Value(rec records.Record) any {
	if c.cellValue != nil {
		return c.cellValue(rec)
	}
	return rec.Value(c.Name)
}

// FormattedValue renders the cell value of the column for rec using the
// column formatter, or the formatter registered for the column type.
func (c *Column) FormattedValue(rec records.Record, types *TypeRegistry) string {
	v := c.Value(rec)
	if c.format != nil {
		return c.format(v)
	}
	return types.Format(c.Type, v)
}

// DisplayLabel returns the label, falling back to the name.
func (c *Column) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Target describes the column to the aggregation engine.
func (c *Column) Target() aggregates.Target {
	t := aggregates.Target{Column: c.Name}
	if c.cellValue != nil {
		t.Value = c.cellValue
	}
	if c.customAgg {
		t.Custom = c.Aggregation
		t.CustomName = c.AggregationName
	}
	return t
}

// Set is the active column set of a view.
type Set struct {
	All          []*Column
	Visible      []*Column
	Groupable    []*Column
	Aggregatable []*Column
	ByName       map[string]*Column
}

// Lookup returns the column registered under name.
func (s *Set) Lookup(name string) (*Column, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.ByName[name]
	return c, ok
}

// Names returns the names of all columns in declaration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.All))
	for i, c := range s.All {
		names[i] = c.Name
	}
	return names
}

// Targets returns the aggregation targets of the aggregatable columns.
func (s *Set) Targets() []aggregates.Target {
	targets := make([]aggregates.Target, len(s.Aggregatable))
	for i, c := range s.Aggregatable {
		targets[i] = c.Target()
	}
	return targets
}

// Resolve normalizes declarations into a column set. Declarations without a
// name are skipped, and the first declaration of a name wins. Aggregations
// resolve to the declared function, then the registry, then count.
func Resolve(decls []Declaration, flags Flags, registry *aggregates.Registry) *Set {
	set := &Set{ByName: make(map[string]*Column, len(decls))}
	for _, d := range decls {
		if d.Name == "" {
			continue
		}
		if _, dup := set.ByName[d.Name]; dup {
			continue
		}
		typ := d.Type
		if typ == "" {
			typ = TypeText
		}
		c := &Column{
			Name:         d.Name,
			Label:        d.Label,
			Type:         typ,
			Sortable:     flags.Sortable && !d.DisableSort,
			Filterable:   flags.Filterable && !d.DisableFilter,
			Groupable:    flags.Groupable && !d.DisableGroup,
			Aggregatable: flags.Aggregatable && !d.DisableAggregate,
			Visible:      !d.Hidden,
			cellValue:    d.CellValue,
			format:       d.Format,
		}
		c.AggregationName, c.Aggregation, c.customAgg = resolveAggregation(d, registry)

		set.All = append(set.All, c)
		set.ByName[c.Name] = c
		if c.Visible {
			set.Visible = append(set.Visible, c)
		}
		if c.Groupable {
			set.Groupable = append(set.Groupable, c)
		}
		if c.Aggregatable {
			set.Aggregatable = append(set.Aggregatable, c)
		}
	}
	return set
}

func resolveAggregation(d Declaration, registry *aggregates.Registry) (string, aggregates.Func, bool) {
	if d.AggregationFunc != nil {
		name := d.AggregationName
		if name == "" {
			name = d.Name
		}
		return name, d.AggregationFunc, true
	}
	if fn, ok := registry.Lookup(d.AggregationName); ok {
		return d.AggregationName, fn, false
	}
	return aggregates.Count, aggregates.CountFunc(), false
}
