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

package aggregates

import (
	"math"
	"sort"

	"github.com/google/taxinomia-grid/core/records"
)

// Target describes one aggregatable column.
type Target struct {
	Column string
	Value  func(records.Record) any
	// Custom is an extra function supplied by the column declaration. It runs
	// alongside the registry functions under CustomName.
	Custom     Func
	CustomName string
}

// Results holds the reduced value of every function for every column.
type Results map[string]map[string]float64

// Value returns the result of fn for column, or 0.
func (r Results) Value(column, fn string) float64 {
	if r == nil {
		return 0
	}
	return r[column][fn]
}

// Columns returns the aggregated column names in sorted order.
func (r Results) Columns() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregator computes Results for a set of targets against a registry.
type Aggregator struct {
	registry *Registry
}

// NewAggregator creates an aggregator using registry. A nil registry falls
// back to the built-ins.
func NewAggregator(registry *Registry) *Aggregator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Aggregator{registry: registry}
}

// Registry returns the registry the aggregator reads from.
func (a *Aggregator) Registry() *Registry {
	return a.registry
}

// Compute reduces rows for every target using freshly zeroed accumulators.
// Every registered function runs for every target; a target's custom
// function shadows a registered function of the same name.
func (a *Aggregator) Compute(rows []records.Record, targets []Target) Results {
	if len(targets) == 0 {
		return Results{}
	}
	registered := a.registry.Names()

	type plan struct {
		names []string
		funcs []Func
		acc   Accumulator
	}
	plans := make([]plan, len(targets))
	for i, t := range targets {
		p := plan{acc: Accumulator{}}
		custom := t.customName()
		for _, name := range registered {
			if t.Custom != nil && name == custom {
				continue
			}
			p.names = append(p.names, name)
			p.funcs = append(p.funcs, a.registry.Func(name))
		}
		if t.Custom != nil {
			p.names = append(p.names, custom)
			p.funcs = append(p.funcs, t.Custom)
		}
		plans[i] = p
	}

	for index, row := range rows {
		for i, t := range targets {
			var value any
			if t.Value != nil {
				value = t.Value(row)
			} else {
				value = row.Value(t.Column)
			}
			ComputeRow(plans[i].acc, plans[i].names, plans[i].funcs, value, index, rows)
		}
	}

	results := make(Results, len(targets))
	for i, t := range targets {
		values := make(map[string]float64, len(plans[i].names))
		for _, name := range plans[i].names {
			values[name] = finite(plans[i].acc[name])
		}
		results[t.Column] = values
	}
	return results
}

func (t Target) customName() string {
	if t.CustomName != "" {
		return t.CustomName
	}
	return t.Column
}

// ComputeRow applies every function in funcs to value, storing each result
// in acc under the matching name.
func ComputeRow(acc Accumulator, names []string, funcs []Func, value any, index int, rows []records.Record) {
	for i, fn := range funcs {
		acc[names[i]] = fn(acc, value, index, rows)
	}
}

// finite maps the infinities left by min/max over an empty set to 0.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
