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

// Package i18n provides the translation boundary used for group labels and
// column headers.
package i18n

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator maps a message key to display text.
type Translator interface {
	Translate(key string, args ...any) string
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(key string, args ...any) string

// Translate calls f.
func (f TranslatorFunc) Translate(key string, args ...any) string {
	return f(key, args...)
}

// Identity returns keys unchanged, formatting them when arguments are given.
var Identity Translator = TranslatorFunc(identity)

func identity(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

// Or returns t, or Identity when t is nil.
func Or(t Translator) Translator {
	if t == nil {
		return Identity
	}
	return t
}

// Catalog is a Translator backed by an x/text message catalog. Keys without
// a registered message fall through to Identity.
type Catalog struct {
	mu      sync.Mutex
	tag     language.Tag
	builder *catalog.Builder
	printer *message.Printer
	known   map[string]bool
}

// NewCatalog creates an empty catalog printing in tag.
func NewCatalog(tag language.Tag) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(tag))
	return &Catalog{
		tag:     tag,
		builder: b,
		known:   map[string]bool{},
	}
}

// Language returns the catalog language.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

// Set registers msg for key. The message uses fmt verbs for arguments.
func (c *Catalog) Set(key, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.builder.SetString(c.tag, key, msg); err != nil {
		return fmt.Errorf("i18n: set %q: %w", key, err)
	}
	c.known[key] = true
	c.printer = nil
	return nil
}

// SetAll registers every entry of messages.
func (c *Catalog) SetAll(messages map[string]string) error {
	for k, v := range messages {
		if err := c.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Translate implements Translator.
func (c *Catalog) Translate(key string, args ...any) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.known[key] {
		return identity(key, args...)
	}
	if c.printer == nil {
		c.printer = message.NewPrinter(c.tag, message.Catalog(c.builder))
	}
	return c.printer.Sprintf(key, args...)
}

// ParseLanguage parses a BCP 47 tag, returning language.Und when s is empty
// or malformed.
func ParseLanguage(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

// Label translates a column label, returning the label itself when no
// translation exists.
func Label(t Translator, label string) string {
	if label == "" {
		return ""
	}
	return Or(t).Translate(label)
}
