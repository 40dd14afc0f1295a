/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"encoding/json"
	"time"

	"gosketchpad/internal/scene"
	"gosketchpad/internal/undo"
)

// MemoryConfig tunes the in-memory engine.
type MemoryConfig struct {
	// SettleEvents is how many change notifications one ReplaceScene emits
	// while the engine settles. Zero means 3, matching the absorption window
	// the dirty machine defaults to.
	SettleEvents int
	// History configures the undo stack. Zero values pick the undo package
	// defaults.
	History undo.Config
}

// Memory is the reference Engine implementation backing the desktop shell
// and the coordinator tests. It stores one scene, bumps element versions on
// every user mutation, and emits the same settle-noise cadence a real
// embedded engine shows on programmatic replacement.
//
// Not safe for concurrent use: all access happens on the UI event goroutine,
// mirroring the single-threaded model of the embedded engine.
type Memory struct {
	cfg      MemoryConfig
	current  scene.Scene
	ready    bool
	history  *undo.Manager
	onChange []func()
	onReady  []func()
}

// NewMemory creates an unmounted engine holding the canonical empty scene.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.SettleEvents <= 0 {
		cfg.SettleEvents = 3
	}
	return &Memory{
		cfg:     cfg,
		current: scene.Empty(),
		history: undo.NewManager(cfg.History),
	}
}

// Mount marks the engine ready and runs the registered readiness callbacks.
func (m *Memory) Mount() {
	if m.ready {
		return
	}
	m.ready = true
	for _, fn := range m.onReady {
		fn()
	}
}

func (m *Memory) Ready() bool { return m.ready }

func (m *Memory) Elements() []scene.Element {
	return append([]scene.Element(nil), m.current.Elements...)
}

func (m *Memory) AppState() scene.AppState { return m.current.AppState }

func (m *Memory) Scene() scene.Scene {
	s := m.current
	s.Elements = append([]scene.Element(nil), m.current.Elements...)
	return s
}

func (m *Memory) OnChange(fn func()) { m.onChange = append(m.onChange, fn) }

func (m *Memory) OnReady(fn func()) {
	m.onReady = append(m.onReady, fn)
	if m.ready {
		fn()
	}
}

// ReplaceScene swaps the scene programmatically and emits the settle-noise
// cadence. History is dropped: the previous document's undo stack must not
// leak into the new one.
func (m *Memory) ReplaceScene(s scene.Scene) {
	if s.Elements == nil {
		s.Elements = []scene.Element{}
	}
	m.current = s
	m.history.Clear()
	for i := 0; i < m.cfg.SettleEvents; i++ {
		m.fire()
	}
}

// SetName updates scene metadata only.
func (m *Memory) SetName(name string) {
	m.current.AppState.Name = name
	m.fire()
}

// UpsertElement is a user edit: an existing element's version is bumped, a
// new element starts at version 1.
func (m *Memory) UpsertElement(el scene.Element) {
	m.snapshot()
	for i := range m.current.Elements {
		if m.current.Elements[i].ID == el.ID {
			el.Version = m.current.Elements[i].Version + 1
			m.current.Elements[i] = el
			m.fire()
			return
		}
	}
	if el.Version == 0 {
		el.Version = 1
	}
	m.current.Elements = append(m.current.Elements, el)
	m.fire()
}

// TombstoneElement is a user delete: the element is retained with its
// deleted flag set and version bumped.
func (m *Memory) TombstoneElement(id string) {
	m.snapshot()
	for i := range m.current.Elements {
		if m.current.Elements[i].ID == id && !m.current.Elements[i].IsDeleted {
			m.current.Elements[i].IsDeleted = true
			m.current.Elements[i].Version++
			m.fire()
			return
		}
	}
}

// TombstoneAll clears the canvas the way the eraser-all tool does.
func (m *Memory) TombstoneAll() {
	m.snapshot()
	changed := false
	for i := range m.current.Elements {
		if !m.current.Elements[i].IsDeleted {
			m.current.Elements[i].IsDeleted = true
			m.current.Elements[i].Version++
			changed = true
		}
	}
	if changed {
		m.fire()
	}
}

// SetAppState is a user edit to the view settings.
func (m *Memory) SetAppState(st scene.AppState) {
	m.snapshot()
	m.current.AppState = st
	m.fire()
}

// Undo restores the previous snapshot, if any. Fires one change event, the
// same generic notification as any other mutation.
func (m *Memory) Undo() bool {
	cur, err := json.Marshal(m.current)
	if err != nil {
		return false
	}
	s, ok := m.history.Undo(undo.Snapshot{Blob: cur, TS: time.Now()})
	if !ok {
		return false
	}
	var restored scene.Scene
	if json.Unmarshal(s.Blob, &restored) != nil {
		return false
	}
	m.current = restored
	m.fire()
	return true
}

// Redo re-applies an undone snapshot.
func (m *Memory) Redo() bool {
	cur, err := json.Marshal(m.current)
	if err != nil {
		return false
	}
	s, ok := m.history.Redo(undo.Snapshot{Blob: cur, TS: time.Now()})
	if !ok {
		return false
	}
	var restored scene.Scene
	if json.Unmarshal(s.Blob, &restored) != nil {
		return false
	}
	m.current = restored
	m.fire()
	return true
}

func (m *Memory) snapshot() {
	blob, err := json.Marshal(m.current)
	if err != nil {
		return
	}
	m.history.Push(undo.Snapshot{Blob: blob, TS: time.Now()})
}

func (m *Memory) fire() {
	for _, fn := range m.onChange {
		fn()
	}
}
