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
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/taxinomia-grid/core/records"
	"github.com/shopspring/decimal"
)

// TypeRegistry maps column types to formatters. It is owned by the
// composition root; Register overrides an existing entry.
type TypeRegistry struct {
	mu         sync.RWMutex
	formatters map[Type]FormatFunc
}

// NewTypeRegistry returns a registry holding the built-in formatters.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		formatters: map[Type]FormatFunc{
			TypeText:     formatText,
			TypeNumber:   formatNumber,
			TypeCurrency: formatCurrency,
			TypeBoolean:  formatBoolean,
			TypeDate:     formatTime("2006-01-02"),
			TypeDateTime: formatTime("2006-01-02 15:04"),
		},
	}
}

// Register installs fn as the formatter for typ.
func (r *TypeRegistry) Register(typ Type, fn FormatFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[typ] = fn
}

// Format renders v with the formatter of typ. Unknown types and a nil
// registry fall back to text. Empty values render as "".
func (r *TypeRegistry) Format(typ Type, v any) string {
	if records.IsEmpty(v) {
		return ""
	}
	fn := formatText
	if r != nil {
		r.mu.RLock()
		if f, ok := r.formatters[typ]; ok {
			fn = f
		}
		r.mu.RUnlock()
	}
	return fn(v)
}

func formatText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return formatFloat(x)
	}
	return fmt.Sprint(v)
}

func formatNumber(v any) string {
	f, ok := records.ToNumber(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return formatFloat(f)
}

// formatFloat prints integers without a fraction and other values with at
// most two decimals, trailing zeros trimmed.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return decimal.NewFromFloat(f).Round(2).String()
}

func formatCurrency(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.StringFixed(2)
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return x
		}
		return d.StringFixed(2)
	}
	f, ok := records.ToNumber(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

func formatBoolean(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return strconv.FormatBool(b)
		}
		return x
	}
	if f, ok := records.ToNumber(v); ok {
		return strconv.FormatBool(f != 0)
	}
	return fmt.Sprint(v)
}

func formatTime(layout string) FormatFunc {
	return func(v any) string {
		switch x := v.(type) {
		case time.Time:
			return x.Format(layout)
		case string:
			for _, in := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if t, err := time.Parse(in, x); err == nil {
					return t.Format(layout)
				}
			}
			return x
		}
		return fmt.Sprint(v)
	}
}
