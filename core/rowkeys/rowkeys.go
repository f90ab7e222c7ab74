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

// Package rowkeys computes the stable string identity of records.
package rowkeys

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/taxinomia-grid/core/records"
	"github.com/google/uuid"
)

// Func is a caller-supplied key function. An empty result marks the record
// as invalid.
type Func func(records.Record) string

// namespace scopes content-derived keys so they never collide with keys
// produced by other uuid v5 users.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("taxinomia-grid/rowkeys"))

// Resolver resolves row keys with priority: key function, key fields,
// content-derived fallback.
type Resolver struct {
	fn     Func
	fields []string
}

// NewResolver creates a resolver. Both arguments are optional.
func NewResolver(fn Func, fields ...string) *Resolver {
	return &Resolver{fn: fn, fields: fields}
}

// Resolve returns the key of rec and whether it is valid.
func (r *Resolver) Resolve(rec records.Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	var key string
	switch {
	case r.fn != nil:
		key = r.fn(rec)
	case len(r.fields) > 0:
		key = r.fieldKey(rec)
	default:
		key = contentKey(rec)
	}
	return key, key != ""
}

func (r *Resolver) fieldKey(rec records.Record) string {
	parts := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		v, ok := rec.Get(f)
		if !ok || records.IsEmpty(v) {
			return ""
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "-")
}

// contentKey derives a key from the record's canonical JSON encoding; map
// keys are encoded in sorted order, so equal records share a key.
func contentKey(rec records.Record) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return uuid.NewSHA1(namespace, data).String()
}

// Resolved is the outcome of resolving every record of a pass.
type Resolved struct {
	Records []records.Record
	// Keys[i] is the key of Records[i].
	Keys  []string
	ByKey map[string]records.Record
	// Invalid and Duplicate count the dropped records.
	Invalid   int
	Duplicate int
}

// ResolveAll keys every record, dropping records whose key is invalid or
// already taken by an earlier record. Drops are logged at warn level.
func (r *Resolver) ResolveAll(recs []records.Record, logger *slog.Logger) *Resolved {
	if logger == nil {
		logger = slog.Default()
	}
	out := &Resolved{
		Records: make([]records.Record, 0, len(recs)),
		Keys:    make([]string, 0, len(recs)),
		ByKey:   make(map[string]records.Record, len(recs)),
	}
	for i, rec := range recs {
		key, ok := r.Resolve(rec)
		if !ok {
			out.Invalid++
			logger.Warn("dropping record with invalid row key", "index", i)
			continue
		}
		if _, dup := out.ByKey[key]; dup {
			out.Duplicate++
			logger.Warn("dropping record with duplicate row key", "index", i, "key", key)
			continue
		}
		out.ByKey[key] = rec
		out.Records = append(out.Records, rec)
		out.Keys = append(out.Keys, key)
	}
	return out
}
