/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package datasources

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/taxinomia-grid/core/records"
)

// CsvLoader implements Loader for CSV files. Column types are inferred
// from a sample of the data: int, float, bool, or string.
//
// Required config keys:
//   - file_path: Path to the CSV file
//
// Optional config keys:
//   - has_header: "true" or "false" (default: "true")
//   - delimiter: Field delimiter (default: ",")
//   - sample_size: Rows sampled for type inference (default: 100)
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load reads the CSV file named by config["file_path"].
func (l *CsvLoader) Load(ctx context.Context, config map[string]string) (*Dataset, error) {
	filePath := config["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return l.LoadReader(ctx, file, config)
}

// LoadReader reads CSV data from r using the optional keys of config.
func (l *CsvLoader) LoadReader(ctx context.Context, r io.Reader, config map[string]string) (*Dataset, error) {
	hasHeader := config["has_header"] != "false"

	reader := csv.NewReader(r)
	if d := config["delimiter"]; d != "" {
		delimiter, _ := utf8.DecodeRuneInString(d)
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Determine column names
	var columnNames []string
	dataRows := rows
	if hasHeader {
		for _, h := range rows[0] {
			columnNames = append(columnNames, strings.TrimSpace(h))
		}
		dataRows = rows[1:]
	} else {
		// Generate column names: col_0, col_1, etc.
		for i := range rows[0] {
			columnNames = append(columnNames, fmt.Sprintf("col_%d", i))
		}
	}

	sampleSize := 100
	if n, err := strconv.Atoi(config["sample_size"]); err == nil && n > 0 {
		sampleSize = n
	}

	ds := &Dataset{Columns: make([]*ColumnSchema, len(columnNames))}
	for i, name := range columnNames {
		ds.Columns[i] = &ColumnSchema{Name: name, Type: inferColumnType(i, dataRows, sampleSize)}
	}

	ds.Records = make([]records.Record, 0, len(dataRows))
	for _, row := range dataRows {
		rec := make(records.Record, len(columnNames))
		for i, col := range ds.Columns {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			rec[col.Name] = convertCell(cell, col.Type)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// inferColumnType samples up to sampleSize rows to determine a column type.
// Empty cells do not vote.
func inferColumnType(colIdx int, rows [][]string, sampleSize int) ColumnType {
	if sampleSize > len(rows) {
		sampleSize = len(rows)
	}

	isInt := true
	isFloat := true
	isBool := true
	seen := false

	for i := 0; i < sampleSize; i++ {
		if colIdx >= len(rows[i]) {
			continue
		}
		val := strings.TrimSpace(rows[i][colIdx])
		if val == "" {
			continue
		}
		seen = true

		if isInt {
			if _, err := strconv.ParseInt(val, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(val, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(val); !ok {
				isBool = false
			}
		}
	}

	switch {
	case !seen:
		return TypeString
	case isInt:
		return TypeInt64
	case isFloat:
		return TypeFloat64
	case isBool:
		return TypeBool
	}
	return TypeString
}

func parseBool(val string) (bool, bool) {
	switch strings.ToLower(val) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// convertCell converts a cell to the column type. Empty cells and cells that
// do not parse become nil.
func convertCell(cell string, typ ColumnType) any {
	if cell == "" {
		return nil
	}
	switch typ {
	case TypeInt64:
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return v
		}
		return nil
	case TypeFloat64:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v
		}
		return nil
	case TypeBool:
		if v, ok := parseBool(cell); ok {
			return v
		}
		return nil
	}
	return cell
}
