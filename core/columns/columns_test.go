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

package columns

import (
	"testing"
	"time"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/records"
	"github.com/shopspring/decimal"
)

func TestResolveCapabilities(t *testing.T) {
	decls := []Declaration{
		Number("age"),
		Text("name", Unsortable(), Ungroupable()),
		Text("notes", Hidden(), Unaggregatable(), Unfilterable()),
	}

	t.Run("engine flags enabled", func(t *testing.T) {
		set := Resolve(decls, DefaultFlags(), aggregates.NewRegistry())

		if len(set.All) != 3 {
			t.Fatalf("len(All) = %d, want 3", len(set.All))
		}
		name, _ := set.Lookup("name")
		if name.Sortable || name.Groupable {
			t.Errorf("name: sortable=%v groupable=%v, want both false", name.Sortable, name.Groupable)
		}
		if !name.Filterable || !name.Aggregatable || !name.Visible {
			t.Errorf("name: filterable=%v aggregatable=%v visible=%v, want all true", name.Filterable, name.Aggregatable, name.Visible)
		}
		if got := len(set.Visible); got != 2 {
			t.Errorf("len(Visible) = %d, want 2", got)
		}
		if got := len(set.Groupable); got != 2 {
			t.Errorf("len(Groupable) = %d, want 2", got)
		}
		if got := len(set.Aggregatable); got != 2 {
			t.Errorf("len(Aggregatable) = %d, want 2", got)
		}
	})

	t.Run("engine flag disables column", func(t *testing.T) {
		flags := DefaultFlags()
		flags.Sortable = false
		flags.Groupable = false
		set := Resolve(decls, flags, aggregates.NewRegistry())

		for _, c := range set.All {
			if c.Sortable {
				t.Errorf("%s sortable with engine flag off", c.Name)
			}
		}
		if len(set.Groupable) != 0 {
			t.Errorf("len(Groupable) = %d, want 0", len(set.Groupable))
		}
	})
}

func TestResolveSkipsUnnamedAndDuplicates(t *testing.T) {
	set := Resolve([]Declaration{
		{Name: ""},
		Text("id", WithLabel("First")),
		Text("id", WithLabel("Second")),
	}, DefaultFlags(), nil)

	if got := set.Names(); len(got) != 1 || got[0] != "id" {
		t.Fatalf("Names() = %v, want [id]", got)
	}
	if c, _ := set.Lookup("id"); c.Label != "First" {
		t.Errorf("Label = %q, want %q", c.Label, "First")
	}
	if c, _ := set.Lookup("id"); c.Type != TypeText {
		t.Errorf("Type = %q, want %q", c.Type, TypeText)
	}
}

func TestResolveAggregation(t *testing.T) {
	reg := aggregates.NewRegistry()
	custom := func(acc aggregates.Accumulator, _ any, _ int, _ []records.Record) float64 { return acc["custom"] + 2 }

	set := Resolve([]Declaration{
		Number("byName", WithAggregation(aggregates.Sum)),
		Number("unknown", WithAggregation("median")),
		Number("none"),
		Number("fn", WithAggregationFunc("custom", custom)),
	}, DefaultFlags(), reg)

	tests := []struct {
		column string
		want   string
	}{
		{"byName", aggregates.Sum},
		{"unknown", aggregates.Count},
		{"none", aggregates.Count},
		{"fn", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			c, _ := set.Lookup(tt.column)
			if c.AggregationName != tt.want {
				t.Errorf("AggregationName = %q, want %q", c.AggregationName, tt.want)
			}
			if c.Aggregation == nil {
				t.Error("Aggregation is nil")
			}
		})
	}

	fn, _ := set.Lookup("fn")
	target := fn.Target()
	if target.Custom == nil || target.CustomName != "custom" {
		t.Errorf("Target() = %+v, want custom function named custom", target)
	}
	byName, _ := set.Lookup("byName")
	if byName.Target().Custom != nil {
		t.Error("registry aggregation exposed as custom target")
	}
}

func TestColumnValue(t *testing.T) {
	set := Resolve([]Declaration{
		Number("age"),
		Number("double", WithCellValue(func(r records.Record) any {
			v, _ := records.ToNumber(r["age"])
			return v * 2
		})),
		Text("upper", WithFormat(func(v any) string { return "<" + v.(string) + ">" })),
	}, DefaultFlags(), nil)
	rec := records.Record{"age": 21, "upper": "x"}
	types := NewTypeRegistry()

	age, _ := set.Lookup("age")
	if got := age.FormattedValue(rec, types); got != "21" {
		t.Errorf("age formatted = %q, want %q", got, "21")
	}
	double, _ := set.Lookup("double")
	if got := double.Value(rec); got != 42.0 {
		t.Errorf("double value = %v, want 42", got)
	}
	upper, _ := set.Lookup("upper")
	if got := upper.FormattedValue(rec, types); got != "<x>" {
		t.Errorf("upper formatted = %q, want %q", got, "<x>")
	}
}

func TestTypeRegistryFormat(t *testing.T) {
	types := NewTypeRegistry()
	day := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		typ  Type
		in   any
		want string
	}{
		{"empty", TypeNumber, nil, ""},
		{"blank string", TypeText, "  ", ""},
		{"integer", TypeNumber, 20, "20"},
		{"float", TypeNumber, 3.14159, "3.14"},
		{"numeric string", TypeNumber, "7.5", "7.5"},
		{"currency float", TypeCurrency, 12.5, "12.50"},
		{"currency decimal", TypeCurrency, decimal.RequireFromString("3.456"), "3.46"},
		{"currency string", TypeCurrency, "9", "9.00"},
		{"boolean", TypeBoolean, true, "true"},
		{"boolean number", TypeBoolean, 0, "false"},
		{"date", TypeDate, day, "2024-03-09"},
		{"datetime", TypeDateTime, day, "2024-03-09 14:30"},
		{"date string", TypeDate, "2024-03-09T14:30:00Z", "2024-03-09"},
		{"unknown type", Type("geo"), "x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := types.Format(tt.typ, tt.in); got != tt.want {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.typ, tt.in, got, tt.want)
			}
		})
	}
}

func TestTypeRegistryOverride(t *testing.T) {
	types := NewTypeRegistry()
	types.Register(TypeBoolean, func(v any) string {
		if v == true {
			return "yes"
		}
		return "no"
	})
	if got := types.Format(TypeBoolean, true); got != "yes" {
		t.Errorf("Format = %q, want %q", got, "yes")
	}

	var nilRegistry *TypeRegistry
	if got := nilRegistry.Format(TypeNumber, 5); got != "5" {
		t.Errorf("nil registry Format = %q, want %q", got, "5")
	}
}
