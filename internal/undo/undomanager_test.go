/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 10 * time.Millisecond})
	m.Push(Snapshot{Blob: []byte("a"), TS: time.Now()})
	m.Push(Snapshot{Blob: []byte("b"), TS: time.Now().Add(20 * time.Millisecond)})
	if _, depth := m.Stats(); depth != 2 {
		t.Fatalf("expected 2 snapshots, got %d", depth)
	}
	live := Snapshot{Blob: []byte("live"), TS: time.Now().Add(40 * time.Millisecond)}
	s, ok := m.Undo(live)
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(s)
	if !ok || string(s.Blob) != "live" {
		t.Fatalf("redo must return the parked live state, got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestUndoUndoRedoRedoRoundTrip(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Blob: []byte("s0"), TS: t0})
	m.Push(Snapshot{Blob: []byte("s1"), TS: t0.Add(10 * time.Millisecond)})
	live := Snapshot{Blob: []byte("s2"), TS: t0.Add(20 * time.Millisecond)}

	s, ok := m.Undo(live)
	if !ok || string(s.Blob) != "s1" {
		t.Fatalf("first undo expected 's1', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Undo(s)
	if !ok || string(s.Blob) != "s0" {
		t.Fatalf("second undo expected 's0', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(s)
	if !ok || string(s.Blob) != "s1" {
		t.Fatalf("first redo expected 's1', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(s)
	if !ok || string(s.Blob) != "s2" {
		t.Fatalf("second redo must restore the newest state 's2', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := m.Redo(s); ok {
		t.Fatalf("redo past the newest state must fail")
	}
}

func TestCoalesce(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)}) // coalesce
	if _, depth := m.Stats(); depth != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", depth)
	}
	s, ok := m.Undo(Snapshot{Blob: []byte("3"), TS: t0.Add(60 * time.Millisecond)})
	if !ok || string(s.Blob) != "2" {
		t.Fatalf("expected coalesced snapshot '2', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxDepth: 2, MinInterval: 1 * time.Millisecond})
	for i := 0; i < 10; i++ {
		m.Push(Snapshot{Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Millisecond)})
	}
	bytes, depth := m.Stats()
	if depth > 2 {
		t.Fatalf("expected MaxDepth cap to limit to 2, got %d", depth)
	}
	if bytes > 20 {
		t.Fatalf("expected MaxBytes cap, got %d", bytes)
	}
}

func TestRedoInvalidatedByNewChange(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Blob: []byte("a"), TS: t0})
	m.Push(Snapshot{Blob: []byte("b"), TS: t0.Add(10 * time.Millisecond)})
	if _, ok := m.Undo(Snapshot{Blob: []byte("live"), TS: t0.Add(20 * time.Millisecond)}); !ok {
		t.Fatalf("undo failed")
	}
	m.Push(Snapshot{Blob: []byte("c"), TS: t0.Add(30 * time.Millisecond)})
	if _, ok := m.Redo(Snapshot{Blob: []byte("c"), TS: t0.Add(40 * time.Millisecond)}); ok {
		t.Fatalf("redo must be invalidated by a new change")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	m.Push(Snapshot{Blob: []byte("a"), TS: time.Now()})
	m.Clear()
	if bytes, depth := m.Stats(); bytes != 0 || depth != 0 {
		t.Fatalf("clear left state: bytes=%d depth=%d", bytes, depth)
	}
	if _, ok := m.Undo(Snapshot{Blob: []byte("live"), TS: time.Now()}); ok {
		t.Fatalf("undo after clear must fail")
	}
}
