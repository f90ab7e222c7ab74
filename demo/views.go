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

package demo

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/taxinomia-grid/core/aggregates"
	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/grid"
	"github.com/google/taxinomia-grid/core/grouping"
	"github.com/google/taxinomia-grid/core/i18n"
	"github.com/google/taxinomia-grid/core/prefs"
	"github.com/google/taxinomia-grid/core/records"
	"github.com/google/taxinomia-grid/datasources"
)

// NonEmpty is the name of the demo aggregation counting non-empty values.
const NonEmpty = "nonEmpty"

// Env carries the shared collaborators and defaults of every view. It is
// built once by the composition root.
type Env struct {
	Aggregations *aggregates.Registry
	Types        *columns.TypeRegistry
	Translator   i18n.Translator
	Preferences  prefs.Store
	Logger       *slog.Logger

	DefaultPageSize   int
	GroupSeparator    string
	GroupScope        grouping.Scope
	CaseSensitiveSort bool
	PrimaryKeyOnly    bool
}

// RegisterAggregations adds the demo aggregation functions to reg.
func RegisterAggregations(reg *aggregates.Registry) {
	reg.Register(NonEmpty, func(acc aggregates.Accumulator, value any, _ int, _ []records.Record) float64 {
		if records.IsEmpty(value) {
			return acc[NonEmpty]
		}
		return acc[NonEmpty] + 1
	})
}

// Distinct returns an aggregation counting the distinct values of field.
// It compares the current value against the rows before index, so it only
// needs the running count in the accumulator.
func Distinct(field string) aggregates.Func {
	return func(acc aggregates.Accumulator, value any, index int, rows []records.Record) float64 {
		name := "distinct"
		want := fmt.Sprint(value)
		for _, prev := range rows[:index] {
			if fmt.Sprint(prev.Value(field)) == want {
				return acc[name]
			}
		}
		return acc[name] + 1
	}
}

func (env Env) base(id, title string) grid.Config {
	return grid.Config{
		ViewID:            id,
		Title:             title,
		CaseSensitiveSort: env.CaseSensitiveSort,
		PrimaryKeyOnly:    env.PrimaryKeyOnly,
		GroupSeparator:    env.GroupSeparator,
		GroupScope:        env.GroupScope,
		DefaultPageSize:   env.DefaultPageSize,
		Aggregations:      env.Aggregations,
		Types:             env.Types,
		Translator:        env.Translator,
		Preferences:       env.Preferences,
		Logger:            env.Logger,
	}
}

// OrdersConfig declares the orders view, keyed by order id.
func OrdersConfig(env Env) grid.Config {
	cfg := env.base(OrdersSource, "Orders")
	cfg.KeyFields = []string{"order_id"}
	cfg.Selectable = true
	cfg.Columns = []columns.Declaration{
		columns.Number("order_id", columns.WithLabel("Order"), columns.Ungroupable(), columns.Unaggregatable()),
		columns.Text("customer", columns.WithLabel("Customer"), columns.WithAggregationFunc("distinct", Distinct("customer"))),
		columns.Text("status", columns.WithLabel("Status"), columns.Unaggregatable()),
		columns.Text("region", columns.WithLabel("Region"), columns.Unaggregatable()),
		columns.Text("category", columns.WithLabel("Category"), columns.Unaggregatable()),
		columns.Currency("amount", columns.WithLabel("Amount"), columns.WithAggregation(aggregates.Sum)),
		columns.Number("quantity", columns.WithLabel("Quantity"), columns.WithAggregation(aggregates.Average)),
		columns.Currency("total",
			columns.WithLabel("Total"),
			columns.WithAggregation(aggregates.Sum),
			columns.WithCellValue(lineTotal),
			columns.Unfilterable(),
		),
		columns.Boolean("priority", columns.WithLabel("Priority"), columns.Unaggregatable()),
		columns.Date("ordered_at", columns.WithLabel("Ordered"), columns.Unaggregatable()),
	}
	return cfg
}

// lineTotal is amount times quantity, rounded to cents.
func lineTotal(rec records.Record) any {
	amount, ok := records.ToNumber(rec.Value("amount"))
	if !ok {
		return nil
	}
	qty, ok := records.ToNumber(rec.Value("quantity"))
	if !ok {
		return nil
	}
	return math.Round(amount*qty*100) / 100
}

// CustomersConfig declares the customers view. Customers without an id are
// dropped by the engine.
func CustomersConfig(env Env) grid.Config {
	cfg := env.base(CustomersSource, "Customers")
	cfg.KeyFunc = func(rec records.Record) string {
		id, _ := rec.Value("id").(string)
		return strings.TrimSpace(id)
	}
	cfg.Selectable = true
	cfg.Columns = []columns.Declaration{
		columns.Text("id", columns.Hidden(), columns.Ungroupable(), columns.Unaggregatable()),
		columns.Text("name", columns.WithLabel("Name"), columns.Unaggregatable()),
		columns.Text("country", columns.WithLabel("Country"), columns.WithAggregation(NonEmpty)),
		columns.Boolean("vip", columns.WithLabel("VIP"), columns.Unaggregatable()),
		columns.Number("employees", columns.WithLabel("Employees"), columns.WithAggregation(aggregates.Max)),
		columns.Date("since", columns.WithLabel("Since"), columns.Unaggregatable(), columns.Ungroupable()),
	}
	return cfg
}

// DatasetConfig declares a view over a dataset loaded from a configured
// file. Rows are keyed by content and the view is read-only.
func DatasetConfig(env Env, ds *datasources.Dataset) grid.Config {
	cfg := env.base(ds.Name, ds.Name)
	cfg.Columns = ds.Declarations()
	return cfg
}
