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

package records

import (
	"math"
	"slices"
	"testing"
	"time"
)

type reading string

func (r reading) String() string { return string(r) }

func TestGet(t *testing.T) {
	rec := Record{
		"name":          "Ann",
		"customer.name": "flat wins",
		"address": map[string]any{
			"city": "Lyon",
			"geo":  Record{"lat": 45.76},
		},
		"tags": []string{"a"},
	}

	tests := []struct {
		field  string
		want   any
		wantOK bool
	}{
		{"name", "Ann", true},
		{"customer.name", "flat wins", true},
		{"address.city", "Lyon", true},
		{"address.geo.lat", 45.76, true},
		{"address.zip", nil, false},
		{"tags.0", nil, false},
		{"name.first", nil, false},
		{"missing", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := rec.Get(tt.field)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Get(%q) = %v, %v; want %v, %v", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	var empty Record
	if v, ok := empty.Get("name"); ok || v != nil {
		t.Errorf("nil record Get = %v, %v; want nil, false", v, ok)
	}
}

func TestIsEmpty(t *testing.T) {
	var nilRecord *Record
	var nilTime *time.Time
	zero := 0

	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"blank string", "  \t", true},
		{"text", "x", false},
		{"zero time", time.Time{}, true},
		{"time", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"typed nil record pointer", nilRecord, true},
		{"typed nil time pointer", nilTime, true},
		{"pointer to zero", &zero, false},
		{"zero int", 0, false},
		{"false", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.v); got != tt.want {
				t.Errorf("IsEmpty(%#v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		want   float64
		wantOK bool
	}{
		{"int", 42, 42, true},
		{"uint8", uint8(7), 7, true},
		{"float32", float32(1.5), 1.5, true},
		{"numeric string", " 12.5 ", 12.5, true},
		{"stringer", reading("21.5"), 21.5, true},
		{"non-numeric stringer", reading("warm"), 0, false},
		{"text", "n/a", 0, false},
		{"empty", "", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"NaN string", "NaN", 0, false},
		{"Inf string", "Inf", 0, false},
		{"negative infinity string", "-infinity", 0, false},
		{"NaN stringer", reading("nan"), 0, false},
		{"NaN float", math.NaN(), 0, false},
		{"Inf float", math.Inf(-1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.v)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ToNumber(%#v) = %v, %v; want %v, %v", tt.v, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	raw := []any{
		Record{"id": 1},
		"not a row",
		map[string]any{"id": 2},
		nil,
		Record(nil),
		42,
		map[string]any(nil),
	}

	recs, skipped := Normalize(raw)

	if len(recs) != 2 || recs[0]["id"] != 1 || recs[1]["id"] != 2 {
		t.Errorf("records = %v, want ids 1 and 2", recs)
	}
	if want := []int{1, 3, 4, 5, 6}; !slices.Equal(skipped, want) {
		t.Errorf("skipped = %v, want %v", skipped, want)
	}

	if recs, skipped := Normalize(nil); len(recs) != 0 || skipped != nil {
		t.Errorf("Normalize(nil) = %v, %v", recs, skipped)
	}
}

func TestFromRecords(t *testing.T) {
	recs := []Record{{"id": 1}, {"id": 2}}
	raw := FromRecords(recs)
	back, skipped := Normalize(raw)
	if len(back) != 2 || len(skipped) != 0 || back[1]["id"] != 2 {
		t.Errorf("Normalize(FromRecords) = %v, %v", back, skipped)
	}
}
