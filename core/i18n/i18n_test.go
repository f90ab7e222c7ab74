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

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestIdentity(t *testing.T) {
	if got := Identity.Translate("Age"); got != "Age" {
		t.Errorf("Translate(Age) = %q, want Age", got)
	}
	if got := Identity.Translate("%d rows", 3); got != "3 rows" {
		t.Errorf("Translate with args = %q, want %q", got, "3 rows")
	}
	if got := Or(nil).Translate("x"); got != "x" {
		t.Errorf("Or(nil) = %q, want x", got)
	}
}

func TestCatalogTranslate(t *testing.T) {
	c := NewCatalog(language.German)
	if err := c.SetAll(map[string]string{
		"Age":     "Alter",
		"%d rows": "%d Zeilen",
	}); err != nil {
		t.Fatalf("SetAll: %v", err)
	}

	tests := []struct {
		key  string
		args []any
		want string
	}{
		{"Age", nil, "Alter"},
		{"%d rows", []any{4}, "4 Zeilen"},
		{"Region", nil, "Region"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := c.Translate(tt.key, tt.args...); got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
	if c.Language() != language.German {
		t.Errorf("Language() = %v, want de", c.Language())
	}
}

func TestParseLanguage(t *testing.T) {
	if got := ParseLanguage("fr-CA"); got.String() != "fr-CA" {
		t.Errorf("ParseLanguage(fr-CA) = %v", got)
	}
	if got := ParseLanguage("not a tag!"); got != language.Und {
		t.Errorf("ParseLanguage(bad) = %v, want und", got)
	}
	if got := ParseLanguage(""); got != language.Und {
		t.Errorf("ParseLanguage(\"\") = %v, want und", got)
	}
}

func TestLabel(t *testing.T) {
	tr := TranslatorFunc(func(key string, _ ...any) string { return "<" + key + ">" })
	if got := Label(tr, "Age"); got != "<Age>" {
		t.Errorf("Label = %q, want <Age>", got)
	}
	if got := Label(tr, ""); got != "" {
		t.Errorf("Label(\"\") = %q, want empty", got)
	}
}
