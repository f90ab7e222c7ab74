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
	"testing"

	"github.com/google/taxinomia-grid/core/records"
)

func ageRows(values ...any) []records.Record {
	rows := make([]records.Record, len(values))
	for i, v := range values {
		rows[i] = records.Record{"id": i + 1, "age": v}
	}
	return rows
}

func TestComputeBuiltins(t *testing.T) {
	agg := NewAggregator(nil)
	rows := ageRows(20, 30, 20, 10.5)

	results := agg.Compute(rows, []Target{{Column: "age"}})

	tests := []struct {
		fn   string
		want float64
	}{
		{Sum, 80.5},
		{Count, 4},
		{Min, 10.5},
		{Max, 30},
		{Average, 80.5 / 4},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got := results.Value("age", tt.fn)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.fn, got, tt.want)
			}
		})
	}
}

func TestMinMaxSeedFromFirstValue(t *testing.T) {
	agg := NewAggregator(nil)

	positive := agg.Compute(ageRows(5, 8), []Target{{Column: "age"}})
	if got := positive.Value("age", Min); got != 5 {
		t.Errorf("min of [5 8] = %v, want 5", got)
	}

	negative := agg.Compute(ageRows(-5, -8), []Target{{Column: "age"}})
	if got := negative.Value("age", Max); got != -5 {
		t.Errorf("max of [-5 -8] = %v, want -5", got)
	}
}

func TestNonNumericValues(t *testing.T) {
	agg := NewAggregator(nil)
	rows := ageRows("12", "n/a", nil, 8)

	results := agg.Compute(rows, []Target{{Column: "age"}})

	if got := results.Value("age", Count); got != 4 {
		t.Errorf("count = %v, want 4", got)
	}
	if got := results.Value("age", Sum); got != 20 {
		t.Errorf("sum = %v, want 20", got)
	}
	if got := results.Value("age", Average); got != 10 {
		t.Errorf("average = %v, want 10", got)
	}
}

func TestNonFiniteValuesIgnored(t *testing.T) {
	agg := NewAggregator(nil)
	rows := ageRows(5, "NaN", 7, "Inf", "-infinity", math.NaN(), math.Inf(1))

	results := agg.Compute(rows, []Target{{Column: "age"}})

	tests := []struct {
		fn   string
		want float64
	}{
		{Sum, 12},
		{Min, 5},
		{Max, 7},
		{Average, 6},
		{Count, 7},
	}
	for _, tt := range tests {
		if got := results.Value("age", tt.fn); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.fn, got, tt.want)
		}
	}
}

func TestEmptyRowsReportZero(t *testing.T) {
	agg := NewAggregator(nil)
	results := agg.Compute(nil, []Target{{Column: "age"}})

	for _, fn := range []string{Sum, Min, Max, Count, Average} {
		if got := results.Value("age", fn); got != 0 {
			t.Errorf("%s over no rows = %v, want 0", fn, got)
		}
	}
}

func TestSumCountAverageProperty(t *testing.T) {
	agg := NewAggregator(nil)
	datasets := [][]any{
		{1, 2, 3, 4, 5},
		{0.1, 0.2, 0.3},
		{-10, 10, 7.25},
		{42},
	}
	for _, ds := range datasets {
		var sum float64
		for _, v := range ds {
			f, _ := records.ToNumber(v)
			sum += f
		}
		results := agg.Compute(ageRows(ds...), []Target{{Column: "age"}})

		if got := results.Value("age", Sum); math.Abs(got-sum) > 1e-9 {
			t.Errorf("sum(%v) = %v, want %v", ds, got, sum)
		}
		if got := results.Value("age", Count); got != float64(len(ds)) {
			t.Errorf("count(%v) = %v, want %d", ds, got, len(ds))
		}
		want := sum / float64(len(ds))
		if got := results.Value("age", Average); math.Abs(got-want) > 1e-9 {
			t.Errorf("average(%v) = %v, want %v", ds, got, want)
		}
	}
}

func TestRegistryCustomFunctions(t *testing.T) {
	reg := NewRegistry()
	reg.Register("sumOfSquares", func(acc Accumulator, value any, _ int, _ []records.Record) float64 {
		v, _ := records.ToNumber(value)
		return acc["sumOfSquares"] + v*v
	})

	agg := NewAggregator(reg)
	results := agg.Compute(ageRows(1, 2, 3), []Target{{Column: "age"}})

	if got := results.Value("age", "sumOfSquares"); got != 14 {
		t.Errorf("sumOfSquares = %v, want 14", got)
	}
	if got := reg.Func("unknown")(Accumulator{}, 5, 0, nil); got != 0 {
		t.Errorf("unknown function returned %v, want 0", got)
	}
	if _, ok := reg.Lookup("unknown"); ok {
		t.Error("Lookup(unknown) reported a function")
	}
}

func TestTargetCustomShadowsRegistered(t *testing.T) {
	agg := NewAggregator(nil)
	double := func(acc Accumulator, value any, _ int, _ []records.Record) float64 {
		v, _ := records.ToNumber(value)
		return acc[Sum] + 2*v
	}

	results := agg.Compute(ageRows(1, 2), []Target{{Column: "age", Custom: double, CustomName: Sum}})

	if got := results.Value("age", Sum); got != 6 {
		t.Errorf("shadowed sum = %v, want 6", got)
	}
	if got := results.Value("age", Count); got != 2 {
		t.Errorf("count = %v, want 2", got)
	}
}

func TestTargetValueAccessor(t *testing.T) {
	agg := NewAggregator(nil)
	rows := []records.Record{{"price": 2, "qty": 3}, {"price": 5, "qty": 2}}
	total := func(r records.Record) any {
		p, _ := records.ToNumber(r["price"])
		q, _ := records.ToNumber(r["qty"])
		return p * q
	}

	results := agg.Compute(rows, []Target{{Column: "total", Value: total}})

	if got := results.Value("total", Sum); got != 16 {
		t.Errorf("sum(total) = %v, want 16", got)
	}
}
