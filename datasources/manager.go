/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package datasources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownSource is returned when a source name was never added.
	ErrUnknownSource = errors.New("datasources: unknown source")
	// ErrNoLoader is returned when no loader handles a source type.
	ErrNoLoader = errors.New("datasources: no loader for source type")
)

// Source describes one data source: its loader type, the loader config and
// optional column labels applied after loading.
type Source struct {
	Name   string
	Type   string
	Config map[string]string
	Labels map[string]string
}

// Manager handles loading and caching of data sources.
// Sources are registered eagerly; data is loaded lazily on demand.
type Manager struct {
	mu sync.RWMutex

	// Source metadata indexed by name
	sources map[string]*Source

	// Cached datasets indexed by source name - populated lazily
	datasets map[string]*Dataset

	// Registered loaders indexed by source type
	loaders map[string]Loader

	// Base directory for resolving relative paths
	baseDir string

	group singleflight.Group
}

// NewManager creates a manager with the csv and json loaders registered.
func NewManager() *Manager {
	m := &Manager{
		sources:  make(map[string]*Source),
		datasets: make(map[string]*Dataset),
		loaders:  make(map[string]Loader),
	}
	m.RegisterLoader(NewCsvLoader())
	m.RegisterLoader(NewJsonLoader())
	return m
}

// RegisterLoader registers a loader for its source type.
// If a loader is already registered for this type, it will be replaced.
func (m *Manager) RegisterLoader(loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// SetBaseDir sets the base directory for resolving relative file paths.
func (m *Manager) SetBaseDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseDir = dir
}

// AddSource registers a source. Adding a name again replaces the source and
// drops its cached data.
func (m *Manager) AddSource(source Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source.Name] = &source
	delete(m.datasets, source.Name)
}

// RegisterDataset registers data built in code under name.
func (m *Manager) RegisterDataset(name string, ds *Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds.Name = name
	m.sources[name] = &Source{Name: name, Type: "memory"}
	m.datasets[name] = ds
}

// SourceNames returns all source names in sorted order.
func (m *Manager) SourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the dataset of a source, loading it on first use.
// Concurrent first loads of the same source share one loader call.
func (m *Manager) Load(ctx context.Context, name string) (*Dataset, error) {
	m.mu.RLock()
	if ds, ok := m.datasets[name]; ok {
		m.mu.RUnlock()
		return ds, nil
	}
	source, ok := m.sources[name]
	var loader Loader
	if ok {
		loader = m.loaders[source.Type]
	}
	baseDir := m.baseDir
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: %s (source %s)", ErrNoLoader, source.Type, name)
	}

	v, err, _ := m.group.Do(name, func() (any, error) {
		m.mu.RLock()
		cached, ok := m.datasets[name]
		m.mu.RUnlock()
		if ok {
			return cached, nil
		}

		ds, err := loader.Load(ctx, resolveConfigPaths(source.Config, baseDir))
		if err != nil {
			return nil, fmt.Errorf("failed to load source %s: %w", name, err)
		}
		ds.Name = name
		ApplyLabels(ds, source.Labels)

		m.mu.Lock()
		// A source replaced while loading keeps its new state.
		if m.sources[name] == source {
			m.datasets[name] = ds
		}
		m.mu.Unlock()
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// resolveConfigPaths resolves relative file paths in config to absolute paths.
func resolveConfigPaths(config map[string]string, baseDir string) map[string]string {
	if baseDir == "" {
		return config
	}

	resolved := make(map[string]string, len(config))
	for k, v := range config {
		if k == "file_path" && v != "" && !filepath.IsAbs(v) {
			resolved[k] = filepath.Join(baseDir, v)
		} else {
			resolved[k] = v
		}
	}
	return resolved
}

// InvalidateCache drops the cached data of a source so the next Load reads
// it again. Datasets registered in code are kept.
func (m *Manager) InvalidateCache(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sources[name]; ok && s.Type == "memory" {
		return
	}
	delete(m.datasets, name)
}

// IsLoaded reports whether a source's data is cached.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.datasets[name]
	return ok
}
