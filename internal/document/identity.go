/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document tracks which host-side document the live scene belongs
// to: its display name, whether a storage location is known, and an abstract
// handle usable by generic save/open consumers.
package document

import "strings"

// UnsavedName is the display name of a scene with no associated document.
const UnsavedName = "Unsaved"

// Recognized scene-file suffixes, stripped (case-insensitively) when
// deriving a display name. Longest first so ".sketch.json" wins over ".json".
var knownSuffixes = []string{".sketch.json", ".sketch", ".json"}

// DisplayName derives a user-facing name from a raw file name. Empty input
// yields UnsavedName.
func DisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return UnsavedName
	}
	lower := strings.ToLower(name)
	for _, suf := range knownSuffixes {
		if strings.HasSuffix(lower, suf) && len(name) > len(suf) {
			return name[:len(name)-len(suf)]
		}
	}
	return name
}

// Identity is the current scene-to-document association. Zero value is the
// unassociated state. Mutated only by the round-trip coordinator and the
// dirty machine's clear-detection path.
type Identity struct {
	displayName string
	known       bool
	handle      *Handle
}

// NewIdentity returns an unassociated identity.
func NewIdentity() *Identity {
	return &Identity{displayName: UnsavedName}
}

// DisplayName returns the current display name, UnsavedName if none.
func (id *Identity) DisplayName() string {
	if id.displayName == "" {
		return UnsavedName
	}
	return id.displayName
}

// HasKnownLocation reports whether the scene is tied to a host-side document.
func (id *Identity) HasKnownLocation() bool { return id.known }

// Handle returns the current document handle, nil if unassociated.
func (id *Identity) Handle() *Handle { return id.handle }

// Associate stores the handle as current and adopts its name. known marks
// whether a concrete storage location exists (a plain name from appState
// does not).
func (id *Identity) Associate(h *Handle, known bool) {
	id.handle = h
	id.known = known
	if h != nil {
		id.displayName = DisplayName(h.Name)
	}
}

// SetDisplayName updates only the user-facing name.
func (id *Identity) SetDisplayName(raw string) { id.displayName = DisplayName(raw) }

// Clear resets to the unassociated state. Idempotent.
func (id *Identity) Clear() {
	id.displayName = UnsavedName
	id.known = false
	id.handle = nil
}
