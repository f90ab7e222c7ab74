/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package datasources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/taxinomia-grid/core/columns"
	"github.com/google/taxinomia-grid/core/records"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestManagerLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "orders.csv", "id,customer,amount\n1,alice,10.5\n2,bob,3\n")

	manager := NewManager()
	manager.SetBaseDir(dir)
	manager.AddSource(Source{
		Name:   "orders",
		Type:   "csv",
		Config: map[string]string{"file_path": "orders.csv"},
		Labels: map[string]string{"amount": "Amount"},
	})

	if manager.IsLoaded("orders") {
		t.Error("orders should not be loaded yet")
	}

	ds, err := manager.Load(context.Background(), "orders")
	if err != nil {
		t.Fatalf("failed to load data: %v", err)
	}
	if !manager.IsLoaded("orders") {
		t.Error("orders should be loaded now")
	}
	if ds.Name != "orders" || len(ds.Records) != 2 {
		t.Fatalf("got dataset %q with %d records", ds.Name, len(ds.Records))
	}
	if ds.Columns[2].Label != "Amount" || ds.Columns[2].Type != TypeFloat64 {
		t.Errorf("amount column = %+v", ds.Columns[2])
	}

	again, _ := manager.Load(context.Background(), "orders")
	if again != ds {
		t.Error("second Load should return the cached dataset")
	}

	manager.InvalidateCache("orders")
	if manager.IsLoaded("orders") {
		t.Error("orders should not be cached after InvalidateCache")
	}
}

func TestManagerErrors(t *testing.T) {
	manager := NewManager()

	if _, err := manager.Load(context.Background(), "missing"); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("unknown source error = %v, want ErrUnknownSource", err)
	}

	manager.AddSource(Source{Name: "sheet", Type: "xlsx"})
	if _, err := manager.Load(context.Background(), "sheet"); !errors.Is(err, ErrNoLoader) {
		t.Errorf("unknown type error = %v, want ErrNoLoader", err)
	}

	manager.AddSource(Source{Name: "gone", Type: "csv", Config: map[string]string{"file_path": "/does/not/exist.csv"}})
	if _, err := manager.Load(context.Background(), "gone"); err == nil || !strings.Contains(err.Error(), "gone") {
		t.Errorf("missing file error = %v", err)
	}
	if manager.IsLoaded("gone") {
		t.Error("failed loads must not be cached")
	}
}

func TestManagerRegisterDataset(t *testing.T) {
	manager := NewManager()
	ds := &Dataset{Records: []records.Record{{"id": 1}}}
	manager.RegisterDataset("inline", ds)
	manager.AddSource(Source{Name: "other", Type: "csv"})

	names := manager.SourceNames()
	if len(names) != 2 || names[0] != "inline" || names[1] != "other" {
		t.Errorf("SourceNames() = %v", names)
	}

	manager.InvalidateCache("inline")
	got, err := manager.Load(context.Background(), "inline")
	if err != nil || got != ds {
		t.Errorf("Load(inline) = %v, %v; registered datasets survive InvalidateCache", got, err)
	}
}

type countingLoader struct {
	calls   atomic.Int32
	release chan struct{}
}

func (l *countingLoader) SourceType() string { return "slow" }

func (l *countingLoader) Load(ctx context.Context, config map[string]string) (*Dataset, error) {
	l.calls.Add(1)
	<-l.release
	return &Dataset{Records: []records.Record{{"id": 1}}}, nil
}

func TestManagerSharesConcurrentLoads(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	manager := NewManager()
	manager.RegisterLoader(loader)
	manager.AddSource(Source{Name: "slow", Type: "slow"})

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Dataset, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = manager.Load(context.Background(), "slow")
		}(i)
	}
	close(loader.release)
	wg.Wait()

	for i, ds := range results {
		if ds == nil {
			t.Fatalf("result %d is nil", i)
		}
	}
	if calls := loader.calls.Load(); calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestResolveConfigPaths(t *testing.T) {
	cfg := map[string]string{"file_path": "data/a.csv", "delimiter": ";"}
	got := resolveConfigPaths(cfg, "/srv")
	if got["file_path"] != filepath.Join("/srv", "data/a.csv") || got["delimiter"] != ";" {
		t.Errorf("resolveConfigPaths() = %v", got)
	}
	abs := map[string]string{"file_path": "/abs/a.csv"}
	if got := resolveConfigPaths(abs, "/srv"); got["file_path"] != "/abs/a.csv" {
		t.Errorf("absolute path rewritten to %q", got["file_path"])
	}
}

func TestDatasetDeclarations(t *testing.T) {
	ds := &Dataset{Columns: []*ColumnSchema{
		{Name: "name", Type: TypeString},
		{Name: "qty", Type: TypeInt64, Label: "Quantity"},
		{Name: "active", Type: TypeBool},
	}}
	decls := ds.Declarations()
	if len(decls) != 3 {
		t.Fatalf("got %d declarations", len(decls))
	}
	if decls[0].Type != columns.TypeText || decls[1].Type != columns.TypeNumber || decls[2].Type != columns.TypeBoolean {
		t.Errorf("types = %v %v %v", decls[0].Type, decls[1].Type, decls[2].Type)
	}
	if decls[1].Label != "Quantity" || decls[1].AggregationName != "sum" {
		t.Errorf("qty declaration = %+v", decls[1])
	}
}
