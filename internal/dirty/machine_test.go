/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dirty

import (
	"testing"

	"gosketchpad/internal/scene"
)

func sig(parts string) string { return parts + "::#ffffff:light:" }

func TestEditFlipsDirty(t *testing.T) {
	m := NewMachine(sig("a:1:0"), 1, Config{})
	if m.IsDirty() {
		t.Fatalf("fresh machine must be clean")
	}
	if out := m.Observe(sig("a:2:0"), 1); out != OutcomeEdit {
		t.Fatalf("expected edit, got %v", out)
	}
	if !m.IsDirty() {
		t.Fatalf("edit must set dirty")
	}
	// identical signature again keeps dirty set but is not a new edit
	if out := m.Observe(sig("a:2:0"), 1); out != OutcomeNoChange {
		t.Fatalf("expected noChange, got %v", out)
	}
	if !m.IsDirty() {
		t.Fatalf("noChange must not clear dirty")
	}
}

func TestSuppressNextAbsorbsOneEvent(t *testing.T) {
	m := NewMachine(sig("a:1:0"), 1, Config{})
	m.SuppressNext()
	if out := m.Observe(sig("a:5:0"), 1); out != OutcomeSuppressed {
		t.Fatalf("expected suppressed, got %v", out)
	}
	if m.IsDirty() {
		t.Fatalf("suppressed change must not flip dirty")
	}
	if m.LastSignature() != sig("a:5:0") {
		t.Fatalf("suppression must still rebase the signature")
	}
	// Suppression is one-shot: the next delta is a genuine edit.
	if out := m.Observe(sig("a:6:0"), 1); out != OutcomeEdit {
		t.Fatalf("expected edit after suppression consumed, got %v", out)
	}
}

func TestSkipCounterAbsorption(t *testing.T) {
	m := NewMachine(sig("a:1:0"), 1, Config{SettleEvents: 3})
	// Pretend the user had unsaved work, then loaded a file.
	m.Observe(sig("a:2:0"), 1)
	if !m.IsDirty() {
		t.Fatalf("precondition: dirty before load")
	}

	loaded := sig("x:1:0|y:1:0")
	m.ExpectLoad(loaded)

	// The engine settles in exactly three internal events, the last carrying
	// the final scene.
	if out := m.Observe(sig(""), 0); out != OutcomeSkipped {
		t.Fatalf("event 1: expected skipped, got %v", out)
	}
	if out := m.Observe(sig("x:1:0"), 1); out != OutcomeSkipped {
		t.Fatalf("event 2: expected skipped, got %v", out)
	}
	if out := m.Observe(loaded, 2); out != OutcomeLoadSettled {
		t.Fatalf("event 3: expected loadSettled, got %v", out)
	}
	if m.IsDirty() {
		t.Fatalf("machine must be clean after load settles")
	}
	if m.LastSignature() != loaded {
		t.Fatalf("baseline must be the loaded signature, got %q", m.LastSignature())
	}

	// A genuine edit immediately after must flip to dirty.
	if out := m.Observe(sig("x:2:0|y:1:0"), 2); out != OutcomeEdit {
		t.Fatalf("post-load edit: expected edit, got %v", out)
	}
	if !m.IsDirty() {
		t.Fatalf("post-load edit must set dirty")
	}
}

func TestExpectedSignatureAfterSkipWindow(t *testing.T) {
	m := NewMachine(sig("a:1:0"), 1, Config{SettleEvents: 1})
	loaded := sig("z:1:0")
	m.ExpectLoad(loaded)
	if out := m.Observe(sig(""), 0); out != OutcomeSkipped {
		t.Fatalf("expected skipped, got %v", out)
	}
	// Final settle event arrives after the counter ran out: rule 2 catches it.
	if out := m.Observe(loaded, 1); out != OutcomeLoadSettled {
		t.Fatalf("expected loadSettled, got %v", out)
	}
	if m.IsDirty() {
		t.Fatalf("settled load must be clean")
	}
}

func TestClearToEmptyResetsIdentity(t *testing.T) {
	cleared := false
	m := NewMachine(sig("a:1:0|b:1:0"), 2, Config{OnClear: func() { cleared = true }})
	m.Observe(sig("a:2:0|b:1:0"), 2)
	if !m.IsDirty() {
		t.Fatalf("precondition: dirty")
	}

	// Every shape tombstoned: the canvas is visually empty.
	if out := m.Observe(sig("a:3:1|b:2:1"), 0); out != OutcomeCleared {
		t.Fatalf("expected cleared, got %v", out)
	}
	if m.IsDirty() {
		t.Fatalf("a fully cleared canvas has no unsaved content")
	}
	if !cleared {
		t.Fatalf("OnClear must fire")
	}
	if m.LastSignature() != scene.EmptySignature() {
		t.Fatalf("baseline must reset to the canonical empty signature, got %q", m.LastSignature())
	}
}

func TestClearSuppressedDuringLoad(t *testing.T) {
	// During a programmatic load the transient empty state must not be
	// classified as a clear event.
	cleared := false
	m := NewMachine(sig("a:1:0"), 1, Config{SettleEvents: 1, OnClear: func() { cleared = true }})
	m.ExpectLoad(sig("b:1:0"))
	if out := m.Observe(sig(""), 0); out != OutcomeSkipped {
		t.Fatalf("expected skipped, got %v", out)
	}
	if cleared {
		t.Fatalf("clear detection must not fire inside the absorption window")
	}
	// Expectation still armed: an empty observation is not a clear either.
	if out := m.Observe(sig(""), 0); out == OutcomeCleared {
		t.Fatalf("clear detection must not fire while a load expectation is pending")
	}
	if cleared {
		t.Fatalf("OnClear fired during pending load")
	}
}

func TestSuppressedClearDoesNotDetachIdentity(t *testing.T) {
	cleared := false
	m := NewMachine(sig("a:1:0"), 1, Config{OnClear: func() { cleared = true }})
	m.SuppressNext()
	if out := m.Observe(sig("a:2:1"), 0); out != OutcomeSuppressed {
		t.Fatalf("expected suppressed, got %v", out)
	}
	if cleared {
		t.Fatalf("suppressed transition must not count as a clear")
	}
}

func TestRebase(t *testing.T) {
	m := NewMachine(sig("a:1:0"), 1, Config{})
	m.Observe(sig("a:2:0"), 1)
	if !m.IsDirty() {
		t.Fatalf("precondition: dirty")
	}
	m.Rebase(sig("a:2:0"))
	if m.IsDirty() {
		t.Fatalf("rebase must return to clean")
	}
	if out := m.Observe(sig("a:2:0"), 1); out != OutcomeNoChange {
		t.Fatalf("expected noChange after rebase, got %v", out)
	}
}

func TestDefaultSettleEvents(t *testing.T) {
	m := NewMachine("", 0, Config{})
	if m.SettleEvents() != DefaultSettleEvents {
		t.Fatalf("expected default settle window %d, got %d", DefaultSettleEvents, m.SettleEvents())
	}
}
