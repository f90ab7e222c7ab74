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

// Package demo holds the sample datasets and view declarations served by the
// taxinomia-grid binary.
package demo

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/taxinomia-grid/datasources"
)

//go:embed data/orders.csv
var ordersCSV string

//go:embed data/customers.json
var customersJSON []byte

// Source names of the embedded datasets. They double as view ids.
const (
	OrdersSource    = "orders"
	CustomersSource = "customers"
)

// LoadDatasets parses the embedded datasets and registers them with m.
func LoadDatasets(ctx context.Context, m *datasources.Manager) error {
	orders, err := datasources.NewCsvLoader().LoadReader(ctx, strings.NewReader(ordersCSV), nil)
	if err != nil {
		return fmt.Errorf("demo: load %s: %w", OrdersSource, err)
	}
	m.RegisterDataset(OrdersSource, orders)

	customers, err := datasources.NewJsonLoader().LoadBytes(ctx, customersJSON)
	if err != nil {
		return fmt.Errorf("demo: load %s: %w", CustomersSource, err)
	}
	if customers.Skipped > 0 {
		slog.Warn("skipped non-object customer entries", "count", customers.Skipped)
	}
	m.RegisterDataset(CustomersSource, customers)

	slog.Info("demo datasets loaded",
		"orders", len(orders.Records),
		"customers", len(customers.Records),
	)
	return nil
}
