/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dirty tracks whether the live scene has diverged from its last
// known saved or loaded state.
//
// The engine fires one generic change notification for every scene mutation,
// user-driven or programmatic. The Machine classifies each notification as a
// genuine edit, load settle-noise, or a clear-to-empty event, and maintains
// the single "unsaved changes" flag. All gating state (skip counter, expected
// post-load signature, one-shot suppression) lives here so the precedence of
// the classification rules is enforced in one place.
package dirty

import (
	"log/slog"

	applog "gosketchpad/internal/log"
	"gosketchpad/internal/scene"
)

// DefaultSettleEvents is how many engine-internal change notifications one
// programmatic scene replacement is assumed to emit while settling. The value
// is empirical and engine-dependent; override it via Config.
const DefaultSettleEvents = 3

// Outcome reports how an observation was classified.
type Outcome int

const (
	// OutcomeSkipped means the event was absorbed by the skip counter.
	OutcomeSkipped Outcome = iota
	// OutcomeLoadSettled means the expected post-load signature arrived.
	OutcomeLoadSettled
	// OutcomeCleared means the scene transitioned to zero visible shapes.
	OutcomeCleared
	// OutcomeSuppressed means a one-shot suppression consumed the event.
	OutcomeSuppressed
	// OutcomeEdit means the signature changed and the scene is now dirty.
	OutcomeEdit
	// OutcomeNoChange means the signature matched the last known one.
	OutcomeNoChange
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeLoadSettled:
		return "loadSettled"
	case OutcomeCleared:
		return "cleared"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeEdit:
		return "edit"
	default:
		return "noChange"
	}
}

// Config tunes the machine.
type Config struct {
	// SettleEvents is the skip-counter value armed by ExpectLoad when the
	// caller does not pass an explicit count. Zero means DefaultSettleEvents.
	SettleEvents int
	// OnClear is invoked when a populated scene transitions to empty, so the
	// file identity can be detached. Optional.
	OnClear func()
}

// Machine is the dirty-state machine. It is not safe for concurrent use; the
// engine delivers change notifications sequentially on a single goroutine.
type Machine struct {
	cfg Config
	log *slog.Logger

	dirty         bool
	lastSignature string
	suppressNext  bool
	expectedSig   string
	hasExpected   bool
	skip          int
	hadVisible    bool
}

// NewMachine seeds the machine Clean with the signature of whatever scene is
// present at hydration time.
func NewMachine(seedSignature string, visibleCount int, cfg Config) *Machine {
	if cfg.SettleEvents <= 0 {
		cfg.SettleEvents = DefaultSettleEvents
	}
	return &Machine{
		cfg:           cfg,
		log:           applog.WithComponent("dirty"),
		lastSignature: seedSignature,
		hadVisible:    visibleCount > 0,
	}
}

// IsDirty reports whether the scene has unsaved changes.
func (m *Machine) IsDirty() bool { return m.dirty }

// LastSignature returns the signature the machine considers saved/loaded.
func (m *Machine) LastSignature() string { return m.lastSignature }

// SettleEvents returns the configured absorption window.
func (m *Machine) SettleEvents() int { return m.cfg.SettleEvents }

// ExpectLoad arms the machine for a programmatic scene replacement: the next
// skip-counter events are absorbed unconditionally, and the given signature,
// once observed, marks the load as settled. Must be called before the engine
// is mutated so the mutation's own change events are classified correctly.
func (m *Machine) ExpectLoad(signature string) {
	m.expectedSig = signature
	m.hasExpected = true
	m.skip = m.cfg.SettleEvents
}

// SuppressNext arms a one-shot suppression: the next change notification
// updates the baseline signature without flipping the dirty flag. Used for
// small programmatic mutations such as re-associating file metadata.
func (m *Machine) SuppressNext() { m.suppressNext = true }

// Rebase marks the current live signature as saved: the machine returns to
// Clean without waiting for a change notification.
func (m *Machine) Rebase(signature string) {
	m.lastSignature = signature
	m.dirty = false
}

// Observe classifies one scene-change notification. The rules are evaluated
// in strict precedence; a single event during a load can satisfy several of
// them and must never be classified as a user edit.
func (m *Machine) Observe(signature string, visibleCount int) Outcome {
	out := m.classify(signature, visibleCount)
	m.hadVisible = visibleCount > 0
	m.log.Debug("change observed",
		slog.String("outcome", out.String()),
		slog.Bool("dirty", m.dirty),
		slog.Int("skip", m.skip),
	)
	return out
}

func (m *Machine) classify(signature string, visibleCount int) Outcome {
	// 1. Absorb settle-noise from a programmatic replacement. If the event
	// already carries the expected post-load signature, the load has settled
	// and the pending expectation is consumed here; otherwise a load whose
	// final event falls inside the absorption window would leave a stale
	// dirty flag behind.
	if m.skip > 0 {
		m.skip--
		m.lastSignature = signature
		if m.hasExpected && signature == m.expectedSig {
			m.hasExpected = false
			m.expectedSig = ""
			m.dirty = false
			return OutcomeLoadSettled
		}
		return OutcomeSkipped
	}

	// 2. The load reached its expected final state.
	if m.hasExpected && signature == m.expectedSig {
		m.hasExpected = false
		m.expectedSig = ""
		m.dirty = false
		m.lastSignature = signature
		return OutcomeLoadSettled
	}

	// 3. Clear-to-empty: a fully cleared canvas has no unsaved content.
	if m.hadVisible && visibleCount == 0 && !m.suppressNext && !m.hasExpected {
		m.dirty = false
		m.lastSignature = scene.EmptySignature()
		if m.cfg.OnClear != nil {
			m.cfg.OnClear()
		}
		return OutcomeCleared
	}

	// 4. One-shot suppression.
	if m.suppressNext {
		m.suppressNext = false
		m.lastSignature = signature
		return OutcomeSuppressed
	}

	// 5. Generic compare.
	changed := signature != m.lastSignature
	m.lastSignature = signature
	if changed {
		m.dirty = true
		return OutcomeEdit
	}
	return OutcomeNoChange
}
