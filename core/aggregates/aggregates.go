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

// Package aggregates provides pluggable accumulator functions and the
// running state they reduce into. Every function shares one signature so that
// built-ins and caller-registered functions are interchangeable.
package aggregates

import (
	"math"
	"sort"
	"sync"

	"github.com/google/taxinomia-grid/core/records"
)

// Built-in function names.
const (
	Sum     = "sum"
	Min     = "min"
	Max     = "max"
	Count   = "count"
	Average = "average"
)

// State slots used by the average function.
const (
	avgSumSlot   = "avgSum"
	avgCountSlot = "avgCount"
)

// Accumulator maps a function (or state slot) name to its running value.
// A fresh accumulator is used for every column of every pass and group.
type Accumulator map[string]float64

// Func reduces one value into the accumulator and returns the new result for
// the function. index is the position of the current record in rows.
type Func func(acc Accumulator, value any, index int, rows []records.Record) float64

// Noop is returned for unknown function names.
func Noop(Accumulator, any, int, []records.Record) float64 { return 0 }

func sumFunc(acc Accumulator, value any, _ int, _ []records.Record) float64 {
	v, ok := records.ToNumber(value)
	if !ok {
		return acc[Sum]
	}
	return acc[Sum] + v
}

func countFunc(acc Accumulator, _ any, _ int, _ []records.Record) float64 {
	return acc[Count] + 1
}

func averageFunc(acc Accumulator, value any, _ int, _ []records.Record) float64 {
	if v, ok := records.ToNumber(value); ok {
		acc[avgSumSlot] += v
		acc[avgCountSlot]++
	}
	if acc[avgCountSlot] == 0 {
		return 0
	}
	return acc[avgSumSlot] / acc[avgCountSlot]
}

// min and max seed at the first observed value, so an all-positive column
// reports its real minimum rather than zero.
func minFunc(acc Accumulator, value any, _ int, _ []records.Record) float64 {
	prev, seen := acc[Min]
	if !seen {
		prev = math.Inf(1)
	}
	v, ok := records.ToNumber(value)
	if !ok {
		return prev
	}
	return math.Min(prev, v)
}

func maxFunc(acc Accumulator, value any, _ int, _ []records.Record) float64 {
	prev, seen := acc[Max]
	if !seen {
		prev = math.Inf(-1)
	}
	v, ok := records.ToNumber(value)
	if !ok {
		return prev
	}
	return math.Max(prev, v)
}

// Registry is a name-keyed table of aggregation functions. It is owned by the
// composition root and injected into the engine.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns a registry holding the built-in functions.
func NewRegistry() *Registry {
	return &Registry{
		funcs: map[string]Func{
			Sum:     sumFunc,
			Min:     minFunc,
			Max:     maxFunc,
			Count:   countFunc,
			Average: averageFunc,
		},
	}
}

// Register adds fn under name, replacing any existing function.
func (r *Registry) Register(name string, fn Func) {
	if name == "" || fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Func returns the function registered under name, or Noop.
func (r *Registry) Func(name string) Func {
	if fn, ok := r.Lookup(name); ok {
		return fn
	}
	return Noop
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CountFunc returns the built-in count function, the fallback for columns
// whose aggregation cannot be resolved.
func CountFunc() Func { return countFunc }

// Symbol returns the short display symbol of a built-in function.
func Symbol(name string) string {
	switch name {
	case Sum:
		return "Σ"
	case Average:
		return "μ"
	case Min:
		return "↓"
	case Max:
		return "↑"
	case Count:
		return "#"
	default:
		return name
	}
}
