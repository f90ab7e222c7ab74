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

package demo

import (
	_ "embed"
	"fmt"

	"github.com/google/taxinomia-grid/core/i18n"
	"golang.org/x/text/language"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

//go:embed data/messages.json
var messagesJSON []byte

// Languages returns the languages with bundled translations, English first.
func Languages() ([]language.Tag, error) {
	doc, err := parseMessages()
	if err != nil {
		return nil, err
	}
	tags := []language.Tag{language.English}
	for name := range doc.GetFields() {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("demo: bad language %q in messages: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Catalog returns a translator for the bundled language closest to want.
// English labels are the message keys, so English gets an empty catalog.
func Catalog(want language.Tag) (*i18n.Catalog, error) {
	doc, err := parseMessages()
	if err != nil {
		return nil, err
	}
	supported, err := Languages()
	if err != nil {
		return nil, err
	}
	_, index, _ := language.NewMatcher(supported).Match(want)
	tag := supported[index]

	cat := i18n.NewCatalog(tag)
	base, _ := tag.Base()
	entries := doc.GetFields()[base.String()].GetStructValue()
	for key, value := range entries.GetFields() {
		if err := cat.Set(key, value.GetStringValue()); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func parseMessages() (*structpb.Struct, error) {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(messagesJSON, doc); err != nil {
		return nil, fmt.Errorf("demo: parse messages: %w", err)
	}
	return doc, nil
}
