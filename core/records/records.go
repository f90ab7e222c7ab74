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

// Package records defines the opaque row type consumed by the grid engine.
// The engine never assumes a schema; fields are reached by name through
// column definitions.
package records

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Record is one row of input data.
type Record map[string]any

// Get returns the value stored under field. Dotted names ("customer.name")
// walk nested records when no flat field of that name exists.
func (r Record) Get(field string) (any, bool) {
	if r == nil || field == "" {
		return nil, false
	}
	if v, ok := r[field]; ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	var cur any = r
	for _, part := range strings.Split(field, ".") {
		m, ok := AsRecord(cur)
		if !ok {
			return nil, false
		}
		v, exists := m[part]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Value returns the value stored under field, or nil.
func (r Record) Value(field string) any {
	v, _ := r.Get(field)
	return v
}

// AsRecord converts v to a Record if it is an object-like value.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, m != nil
	case map[string]any:
		return Record(m), m != nil
	default:
		return nil, false
	}
}

// Normalize keeps the object-like elements of raw and reports the indices of
// the skipped ones.
func Normalize(raw []any) ([]Record, []int) {
	out := make([]Record, 0, len(raw))
	var skipped []int
	for i, v := range raw {
		rec, ok := AsRecord(v)
		if !ok {
			skipped = append(skipped, i)
			continue
		}
		out = append(out, rec)
	}
	return out, skipped
}

// FromRecords widens a typed slice into the raw input form.
func FromRecords(recs []Record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}

// IsEmpty reports whether v counts as an absent cell value.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case time.Time:
		return x.IsZero()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return true
	}
	return false
}

// ToNumber converts numeric values (and numeric strings) to float64. NaN and
// infinities are not numbers here.
func ToNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case fmt.Stringer:
		return parseNumber(x.String())
	case string:
		return parseNumber(x)
	}
	return 0, false
}

// IsNumeric reports whether v is a Go numeric type.
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
