/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"testing"

	"gosketchpad/internal/scene"
)

func TestMemoryStartsEmptyAndUnmounted(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	if m.Ready() {
		t.Fatalf("engine must start unmounted")
	}
	if scene.SignatureOf(m.Scene()) != scene.EmptySignature() {
		t.Fatalf("engine must start with the canonical empty scene")
	}
	mounted := false
	m.OnReady(func() { mounted = true })
	m.Mount()
	if !m.Ready() || !mounted {
		t.Fatalf("mount must mark ready and fire callbacks")
	}
	// Registering after mount fires immediately.
	late := false
	m.OnReady(func() { late = true })
	if !late {
		t.Fatalf("late OnReady must fire immediately")
	}
}

func TestUpsertBumpsVersionAndFiresOnce(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	events := 0
	m.OnChange(func() { events++ })

	m.UpsertElement(scene.Element{ID: "a", Type: scene.TypeRectangle})
	if events != 1 {
		t.Fatalf("user edit must fire exactly one event, got %d", events)
	}
	if m.Elements()[0].Version != 1 {
		t.Fatalf("new element must start at version 1")
	}

	m.UpsertElement(scene.Element{ID: "a", Type: scene.TypeRectangle, Width: 10})
	if m.Elements()[0].Version != 2 {
		t.Fatalf("mutation must bump version, got %d", m.Elements()[0].Version)
	}
}

func TestReplaceSceneEmitsSettleEvents(t *testing.T) {
	m := NewMemory(MemoryConfig{SettleEvents: 3})
	events := 0
	m.OnChange(func() { events++ })

	m.ReplaceScene(scene.Scene{Elements: []scene.Element{{ID: "x", Version: 1}}})
	if events != 3 {
		t.Fatalf("programmatic replacement must emit the settle cadence, got %d", events)
	}
	if len(m.Elements()) != 1 || m.Elements()[0].ID != "x" {
		t.Fatalf("scene not replaced: %+v", m.Elements())
	}
}

func TestTombstoneRetainsElements(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	m.UpsertElement(scene.Element{ID: "a"})
	m.UpsertElement(scene.Element{ID: "b"})
	m.TombstoneAll()
	els := m.Elements()
	if len(els) != 2 {
		t.Fatalf("tombstoned elements must be retained, got %d", len(els))
	}
	for _, el := range els {
		if !el.IsDeleted || el.Version != 2 {
			t.Fatalf("tombstone must set flag and bump version: %+v", el)
		}
	}
	if scene.NonDeletedCount(els) != 0 {
		t.Fatalf("no visible elements expected")
	}
}

func TestUndoRestoresPreviousState(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	m.UpsertElement(scene.Element{ID: "a"})
	m.UpsertElement(scene.Element{ID: "b"})
	if !m.Undo() {
		t.Fatalf("undo failed")
	}
	if len(m.Elements()) != 1 || m.Elements()[0].ID != "a" {
		t.Fatalf("undo must restore the pre-mutation scene: %+v", m.Elements())
	}
	if !m.Redo() {
		t.Fatalf("redo failed")
	}
	els := m.Elements()
	if len(els) != 2 || els[1].ID != "b" {
		t.Fatalf("redo must restore element b: got %+v", els)
	}
	if !m.Undo() {
		t.Fatalf("undo after redo failed")
	}
	if len(m.Elements()) != 1 || m.Elements()[0].ID != "a" {
		t.Fatalf("undo after redo must return to the pre-mutation scene: %+v", m.Elements())
	}
}

func TestReplaceSceneDropsHistory(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	m.UpsertElement(scene.Element{ID: "a"})
	m.ReplaceScene(scene.Empty())
	if m.Undo() {
		t.Fatalf("undo across a document boundary must not be possible")
	}
}
