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

package sorting

import (
	"testing"
	"time"

	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/records"
)

func lookupFor(decls ...columns.Declaration) Lookup {
	set := columns.Resolve(decls, columns.DefaultFlags(), nil)
	return set.Lookup
}

func ids(recs []records.Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r["id"]
	}
	return out
}

func equalIDs(got []records.Record, want ...any) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

// TestSortAgesStable covers three records sorted by age ascending.
func TestSortAgesStable(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "age": 20},
		{"id": 2, "age": 30},
		{"id": 3, "age": 20},
	}
	lookup := lookupFor(columns.Number("id"), columns.Number("age"))

	got := Sort(recs, OrderBy{{Field: "age", Direction: Asc}}, lookup, Options{})

	if !equalIDs(got, 1, 3, 2) {
		t.Errorf("order = %v, want [1 3 2]", ids(got))
	}
	if !equalIDs(recs, 1, 2, 3) {
		t.Errorf("input mutated: %v", ids(recs))
	}
}

func TestSortDirections(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "score": 2.5},
		{"id": 2, "score": 10},
		{"id": 3, "score": -1},
	}
	lookup := lookupFor(columns.Number("score"))

	asc := Sort(recs, OrderBy{{Field: "score", Direction: Asc}}, lookup, Options{})
	if !equalIDs(asc, 3, 1, 2) {
		t.Errorf("asc = %v, want [3 1 2]", ids(asc))
	}
	desc := Sort(recs, OrderBy{{Field: "score", Direction: Desc}}, lookup, Options{})
	if !equalIDs(desc, 2, 1, 3) {
		t.Errorf("desc = %v, want [2 1 3]", ids(desc))
	}
}

func TestSortMultiKey(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "region": "north", "amount": 5},
		{"id": 2, "region": "south", "amount": 1},
		{"id": 3, "region": "north", "amount": 9},
		{"id": 4, "region": "south", "amount": 7},
	}
	lookup := lookupFor(columns.Text("region"), columns.Number("amount"))
	orderBy := OrderBy{{Field: "region", Direction: Asc}, {Field: "amount", Direction: Desc}}

	t.Run("lexicographic", func(t *testing.T) {
		got := Sort(recs, orderBy, lookup, Options{})
		if !equalIDs(got, 3, 1, 4, 2) {
			t.Errorf("order = %v, want [3 1 4 2]", ids(got))
		}
	})

	t.Run("primary key only", func(t *testing.T) {
		got := Sort(recs, orderBy, lookup, Options{PrimaryKeyOnly: true})
		if !equalIDs(got, 1, 3, 2, 4) {
			t.Errorf("order = %v, want [1 3 2 4]", ids(got))
		}
	})
}

func TestSortCaseFolding(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "name": "bravo"},
		{"id": 2, "name": "Alpha"},
		{"id": 3, "name": "alpha"},
		{"id": 4, "name": "Charlie"},
	}
	lookup := lookupFor(columns.Text("name"))
	orderBy := OrderBy{{Field: "name", Direction: Asc}}

	folded := Sort(recs, orderBy, lookup, Options{})
	if !equalIDs(folded, 2, 3, 1, 4) {
		t.Errorf("folded = %v, want [2 3 1 4]", ids(folded))
	}
	sensitive := Sort(recs, orderBy, lookup, Options{CaseSensitive: true})
	if !equalIDs(sensitive, 2, 4, 3, 1) {
		t.Errorf("case sensitive = %v, want [2 4 3 1]", ids(sensitive))
	}
}

func TestSortIgnoresUnknownAndUnsortable(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "secret": 3},
		{"id": 2, "secret": 1},
		{"id": 3, "secret": 2},
	}
	lookup := lookupFor(columns.Number("secret", columns.Unsortable()))

	got := Sort(recs, OrderBy{{Field: "missing"}, {Field: "secret"}}, lookup, Options{})

	if !equalIDs(got, 1, 2, 3) {
		t.Errorf("order = %v, want input order", ids(got))
	}
}

func TestSortEmptyValuesAndMixedTypes(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	recs := []records.Record{
		{"id": 1, "when": day(3), "flag": true},
		{"id": 2, "when": nil, "flag": false},
		{"id": 3, "when": day(1), "flag": nil},
	}
	lookup := lookupFor(columns.Date("when"), columns.Boolean("flag"))

	byWhen := Sort(recs, OrderBy{{Field: "when"}}, lookup, Options{})
	if !equalIDs(byWhen, 2, 3, 1) {
		t.Errorf("by when = %v, want [2 3 1]", ids(byWhen))
	}
	byFlag := Sort(recs, OrderBy{{Field: "flag"}}, lookup, Options{})
	if !equalIDs(byFlag, 3, 2, 1) {
		t.Errorf("by flag = %v, want [3 2 1]", ids(byFlag))
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{"asc": Asc, "DESC": Desc, " desc ": Desc, "": Asc, "sideways": Asc}
	for in, want := range tests {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOrderByCodec(t *testing.T) {
	o := ParseOrderBy(" age:asc, name:DESC,,region ,:desc")
	if got := o.String(); got != "age:asc,name:desc,region:asc" {
		t.Errorf("String() = %q, want %q", got, "age:asc,name:desc,region:asc")
	}
	if len(ParseOrderBy("")) != 0 {
		t.Error("ParseOrderBy(\"\") is not empty")
	}
	if e, ok := o.Find("name"); !ok || e.Direction != Desc {
		t.Errorf("Find(name) = %+v, %v", e, ok)
	}
}

func TestOrderByToggled(t *testing.T) {
	o := OrderBy{{Field: "age", Direction: Asc}}

	steps := []string{"age:desc", "", "age:asc"}
	for _, want := range steps {
		o = o.Toggled("age")
		if got := o.String(); got != want {
			t.Fatalf("Toggled = %q, want %q", got, want)
		}
	}
	if got := o.Toggled("name").String(); got != "age:asc,name:asc" {
		t.Errorf("Toggled(name) = %q", got)
	}
}
