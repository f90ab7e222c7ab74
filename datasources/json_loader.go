/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package datasources

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/taxinomia-grid/core/records"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// JsonLoader implements Loader for files holding a JSON array of objects.
// Elements that are not objects are skipped and counted in Dataset.Skipped.
//
// Required config keys:
//   - file_path: Path to the JSON file
type JsonLoader struct{}

// NewJsonLoader creates a new JSON loader.
func NewJsonLoader() *JsonLoader {
	return &JsonLoader{}
}

// SourceType returns "json".
func (l *JsonLoader) SourceType() string {
	return "json"
}

// Load reads the JSON file named by config["file_path"].
func (l *JsonLoader) Load(ctx context.Context, config map[string]string) (*Dataset, error) {
	filePath := config["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return l.LoadBytes(ctx, data)
}

// LoadBytes decodes a JSON array of objects.
func (l *JsonLoader) LoadBytes(ctx context.Context, data []byte) (*Dataset, error) {
	list := &structpb.ListValue{}
	if err := protojson.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("failed to parse JSON array: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds := &Dataset{}
	types := make(map[string]ColumnType)
	seen := make(map[string]bool)
	for _, v := range list.GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			ds.Skipped++
			continue
		}
		rec := records.Record(obj.AsMap())
		for name, val := range rec {
			seen[name] = true
			if val != nil {
				types[name] = mergeType(types, name, val)
			}
		}
		ds.Records = append(ds.Records, rec)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ds.Columns = append(ds.Columns, &ColumnSchema{Name: name, Type: types[name]})
	}
	return ds, nil
}

// mergeType widens the type seen so far for a column with the type of val.
// Conflicting kinds fall back to string.
func mergeType(seen map[string]ColumnType, name string, val any) ColumnType {
	prev, ok := seen[name]
	var typ ColumnType
	switch v := val.(type) {
	case float64:
		if v == float64(int64(v)) {
			typ = TypeInt64
		} else {
			typ = TypeFloat64
		}
	case bool:
		typ = TypeBool
	default:
		typ = TypeString
	}
	if !ok {
		return typ
	}
	switch {
	case prev == typ:
		return typ
	case (prev == TypeInt64 && typ == TypeFloat64) || (prev == TypeFloat64 && typ == TypeInt64):
		return TypeFloat64
	}
	return TypeString
}
