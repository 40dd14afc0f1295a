/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed scene.schema.json
var schemaBytes []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// ErrNoElements indicates the payload parsed as JSON but carries no shape list.
var ErrNoElements = errors.New("scene: payload has no elements array")

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	})
	return schema, schemaErr
}

// ValidateBytes checks raw scene JSON against the embedded file-format schema.
// It returns nil for conforming documents and a joined error otherwise.
func ValidateBytes(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile scene schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate scene: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("scene does not conform to schema: %s", strings.Join(msgs, "; "))
}

// Parse decodes and validates raw scene JSON. A payload without an elements
// array is rejected; a missing appState falls back to defaults. The returned
// scene always has non-nil Elements.
func Parse(data []byte) (Scene, error) {
	var raw struct {
		Elements *[]Element              `json:"elements"`
		AppState *AppState               `json:"appState"`
		Files    map[string]AttachedFile `json:"files"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Scene{}, fmt.Errorf("parse scene: %w", err)
	}
	if raw.Elements == nil {
		return Scene{}, ErrNoElements
	}
	if err := ValidateBytes(data); err != nil {
		return Scene{}, err
	}
	s := Scene{Elements: *raw.Elements, Files: raw.Files}
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	if raw.AppState != nil {
		s.AppState = *raw.AppState
	} else {
		s.AppState = DefaultAppState()
	}
	return s, nil
}

// Serialize encodes a scene in the human-readable file format.
func Serialize(s Scene) ([]byte, error) {
	if s.Elements == nil {
		s.Elements = []Element{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return append(data, '\n'), nil
}
