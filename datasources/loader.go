/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

// Package datasources loads record sets from files and other sources
// behind a common Loader interface, with per-column label annotations.
package datasources

import (
	"context"

	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/records"
)

// ColumnType represents the data type of a column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeDatetime
)

// String returns the string representation of the column type.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// GridType maps the column type onto a grid column type.
func (t ColumnType) GridType() columns.Type {
	switch t {
	case TypeInt64, TypeFloat64:
		return columns.TypeNumber
	case TypeBool:
		return columns.TypeBoolean
	case TypeDatetime:
		return columns.TypeDateTime
	default:
		return columns.TypeText
	}
}

// ColumnSchema represents a single column discovered from a data source.
type ColumnSchema struct {
	Name  string
	Type  ColumnType
	Label string
}

// Dataset is the loaded content of one source.
type Dataset struct {
	Name    string
	Columns []*ColumnSchema
	Records []records.Record
	// Skipped counts input elements that were not records.
	Skipped int
}

// Raw returns the records as engine input.
func (d *Dataset) Raw() []any {
	return records.FromRecords(d.Records)
}

// Declarations returns one column declaration per discovered column,
// using the column label when set.
func (d *Dataset) Declarations(opts ...columns.Option) []columns.Declaration {
	decls := make([]columns.Declaration, 0, len(d.Columns))
	for _, col := range d.Columns {
		colOpts := append([]columns.Option{}, opts...)
		if col.Label != "" {
			colOpts = append(colOpts, columns.WithLabel(col.Label))
		}
		if col.Type == TypeInt64 || col.Type == TypeFloat64 {
			colOpts = append(colOpts, columns.WithAggregation("sum"))
		}
		decls = append(decls, columns.New(col.Name, col.Type.GridType(), colOpts...))
	}
	return decls
}

// Loader is the interface that all data source loaders implement.
// Built-in loaders exist for "csv" and "json".
type Loader interface {
	// SourceType returns the type identifier used in source definitions
	// (e.g., "csv", "json").
	SourceType() string

	// Load reads the source described by config.
	Load(ctx context.Context, config map[string]string) (*Dataset, error)
}

// ApplyLabels sets column labels from annotations (column name -> label).
func ApplyLabels(ds *Dataset, labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	for _, col := range ds.Columns {
		if label, ok := labels[col.Name]; ok && label != "" {
			col.Label = label
		}
	}
}
