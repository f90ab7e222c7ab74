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

// Package paging normalizes pagination parameters and slices ordered
// collections into pages.
package paging

import "github.com/google/taxinomia-grid/core/records"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Config is the caller's pagination request. Zero or negative values fall
// back to the defaults.
type Config struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	Disabled    bool `json:"disabled,omitempty"`
}

// Params are the normalized inputs handed to a Slicer.
type Params struct {
	Total int
	Limit int
	Page  int
}

// Metadata describes a sliced view of an ordered collection.
type Metadata struct {
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

// HasNextPage reports whether a page follows the current one.
func (m Metadata) HasNextPage() bool {
	return m.CurrentPage < m.TotalPages
}

// HasPreviousPage reports whether a page precedes the current one.
func (m Metadata) HasPreviousPage() bool {
	return m.CurrentPage > 1
}

// Page is a slice of records with its metadata.
type Page struct {
	Data []records.Record
	Meta Metadata
}

// Normalize clamps cfg and attaches the collection size. A disabled
// configuration yields a single page holding every record.
func Normalize(cfg Config, total int) Params {
	if total < 0 {
		total = 0
	}
	if cfg.Disabled {
		size := total
		if size < 1 {
			size = DefaultPageSize
		}
		return Params{Total: total, Limit: size, Page: DefaultPage}
	}
	page := cfg.CurrentPage
	if page <= 0 {
		page = DefaultPage
	}
	size := cfg.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return Params{Total: total, Limit: size, Page: page}
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Slicer cuts one page out of an ordered collection.
type Slicer interface {
	Paginate(all []records.Record, total int, p Params) Page
}

// SlicerFunc adapts a function to the Slicer interface.
type SlicerFunc func(all []records.Record, total int, p Params) Page

// Paginate calls f.
func (f SlicerFunc) Paginate(all []records.Record, total int, p Params) Page {
	return f(all, total, p)
}

// OffsetSlicer slices by offset. Pages past the end yield an empty slice but
// keep the requested page number.
type OffsetSlicer struct{}

// Paginate implements Slicer.
func (OffsetSlicer) Paginate(all []records.Record, total int, p Params) Page {
	meta := Metadata{
		Total:       total,
		CurrentPage: p.Page,
		PageSize:    p.Limit,
		TotalPages:  TotalPages(total, p.Limit),
	}
	start := (p.Page - 1) * p.Limit
	if start < 0 || start >= len(all) {
		return Page{Data: []records.Record{}, Meta: meta}
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return Page{Data: all[start:end], Meta: meta}
}

// Window returns the [start, end) bounds of page p over n items, clamped to
// n. It is used for paginating collections other than records.
func Window(n int, p Params) (int, int) {
	start := (p.Page - 1) * p.Limit
	if start < 0 || start >= n {
		return n, n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
