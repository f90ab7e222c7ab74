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

// Package prefs persists per-view user preferences such as toggles, sort
// order and page size.
//
// Three stores are provided: MemoryStore for tests and single-process use,
// FileStore for a JSON document on disk and PostgresStore for a shared
// database table. View scopes a store to one grid view.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrNotFound is returned by Store.Get when no value is stored under a name.
var ErrNotFound = errors.New("prefs: not found")

// Store is a name-keyed preference store. Values are JSON-compatible:
// bool, float64, int, string, []string, []any and map[string]any.
type Store interface {
	Get(ctx context.Context, name string) (any, error)
	Set(ctx context.Context, name string, value any) error
}

// MemoryStore keeps preferences in a map.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]any{}}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// View scopes a Store to one view. Keys are stored as "<viewID>.<name>".
type View struct {
	store Store
	id    string
}

// NewView returns the preferences of view id. A nil store yields a View
// whose reads report defaults and whose writes are dropped.
func NewView(store Store, id string) *View {
	return &View{store: store, id: id}
}

// ID returns the view id.
func (v *View) ID() string {
	return v.id
}

// Key returns the fully qualified store key for name.
func (v *View) Key(name string) string {
	return v.id + "." + name
}

// Get reads name. It returns ErrNotFound when the view has no store.
func (v *View) Get(ctx context.Context, name string) (any, error) {
	if v == nil || v.store == nil {
		return nil, ErrNotFound
	}
	val, err := v.store.Get(ctx, v.Key(name))
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set writes name.
func (v *View) Set(ctx context.Context, name string, value any) error {
	if v == nil || v.store == nil {
		return nil
	}
	if err := v.store.Set(ctx, v.Key(name), value); err != nil {
		return fmt.Errorf("prefs: set %s: %w", v.Key(name), err)
	}
	return nil
}

// Bool reads a boolean, returning def when it is missing or not a bool.
func (v *View) Bool(ctx context.Context, name string, def bool) (bool, error) {
	val, err := v.Get(ctx, name)
	if err != nil {
		return def, ignoreNotFound(err)
	}
	if b, ok := val.(bool); ok {
		return b, nil
	}
	return def, nil
}

// Int reads an integer. Numbers decoded from JSON arrive as float64 and are
// truncated; numeric strings are parsed.
func (v *View) Int(ctx context.Context, name string, def int) (int, error) {
	val, err := v.Get(ctx, name)
	if err != nil {
		return def, ignoreNotFound(err)
	}
	switch x := val.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n, nil
		}
	}
	return def, nil
}

// Strings reads a list of strings. Non-string elements are skipped.
func (v *View) Strings(ctx context.Context, name string) ([]string, error) {
	val, err := v.Get(ctx, name)
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	switch x := val.(type) {
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, nil
}

// SetStrings writes a list of strings.
func (v *View) SetStrings(ctx context.Context, name string, values []string) error {
	list := make([]any, len(values))
	for i, s := range values {
		list[i] = s
	}
	return v.Set(ctx, name, list)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
