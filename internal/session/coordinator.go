/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session sequences asynchronous load and save round-trips between
// the drawing engine and the host bridge. It owns startup hydration, the
// single outstanding open request, and the suppression handshake that keeps
// programmatic scene replacement from being misread as user edits.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gosketchpad/internal/bridge"
	"gosketchpad/internal/dirty"
	"gosketchpad/internal/document"
	"gosketchpad/internal/engine"
	applog "gosketchpad/internal/log"
	"gosketchpad/internal/scene"
	"gosketchpad/internal/storage"
)

// ErrEngineNotReady means a save was requested before the engine mounted.
var ErrEngineNotReady = errors.New("session: engine has no content ready")

// Tone is the severity of a status banner.
type Tone int

const (
	ToneOK Tone = iota
	ToneWarn
	ToneErr
)

// Status is a transient user-visible message. The UI auto-dismisses it; no
// modal blocks interaction on failure.
type Status struct {
	Text string
	Tone Tone
}

// Config wires the coordinator's collaborators.
type Config struct {
	// SettleEvents overrides the dirty machine's absorption window.
	SettleEvents int
	// Store is the local fallback used when the host bridge lacks load/save
	// capabilities. Optional.
	Store *storage.Store
	// OnStatus receives status banners. Optional.
	OnStatus func(Status)
	// Clock is substituted in tests. Defaults to time.Now.
	Clock func() time.Time
}

// Coordinator reconciles the mutable, event-driven canvas with asynchronous
// host round-trips. Single-goroutine discipline: engine callbacks and host
// callbacks run to completion before the next is processed, so no internal
// locking is needed, only correct sequencing.
type Coordinator struct {
	eng      engine.Engine
	host     *bridge.Adapter
	machine  *dirty.Machine
	identity *document.Identity
	store    *storage.Store
	onStatus func(Status)
	clock    func() time.Time
	log      *slog.Logger

	openSlot  bridge.OpenSlot
	pending   *pendingLoad // one-slot buffer while the engine is unmounted
	lastSaved time.Time

	// liveName mirrors the engine's scene name on every change event. It is
	// deliberately not gated by the suppression machinery.
	liveName string
}

type pendingLoad struct {
	scene  scene.Scene
	handle *document.Handle
	known  bool
}

// New builds a coordinator over an engine and a host adapter. The dirty
// machine is seeded with the engine's current signature.
func New(eng engine.Engine, host *bridge.Adapter, cfg Config) *Coordinator {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	c := &Coordinator{
		eng:      eng,
		host:     host,
		identity: document.NewIdentity(),
		store:    cfg.Store,
		onStatus: cfg.OnStatus,
		clock:    cfg.Clock,
		log:      applog.WithComponent("session"),
	}
	c.machine = dirty.NewMachine(
		scene.Signature(eng.Elements(), eng.AppState()),
		scene.NonDeletedCount(eng.Elements()),
		dirty.Config{
			SettleEvents: cfg.SettleEvents,
			OnClear:      c.identity.Clear,
		},
	)
	eng.OnChange(c.observeChange)
	eng.OnReady(c.applyPending)
	return c
}

// IsDirty reports whether the scene has unsaved changes.
func (c *Coordinator) IsDirty() bool { return c.machine.IsDirty() }

// DisplayName returns the current document display name.
func (c *Coordinator) DisplayName() string { return c.identity.DisplayName() }

// Identity exposes the file identity tracker.
func (c *Coordinator) Identity() *document.Identity { return c.identity }

// LastSaved returns when the host last acknowledged a save (zero if never).
func (c *Coordinator) LastSaved() time.Time { return c.lastSaved }

// LiveSceneName returns the engine's scene name as of the latest change
// event, ungated by suppression.
func (c *Coordinator) LiveSceneName() string { return c.liveName }

// OpenOutstanding reports whether an open request is waiting for the host.
func (c *Coordinator) OpenOutstanding() bool { return c.openSlot.Outstanding() }

func (c *Coordinator) observeChange() {
	c.liveName = c.eng.AppState().Name
	sig := scene.Signature(c.eng.Elements(), c.eng.AppState())
	c.machine.Observe(sig, scene.NonDeletedCount(c.eng.Elements()))
}

func (c *Coordinator) status(tone Tone, text string) {
	if c.onStatus != nil {
		c.onStatus(Status{Text: text, Tone: tone})
	}
}

// Hydrate restores the previous session's scene before any user interaction:
// the host's synchronous read wins, the local store is the fallback. The
// dirty baseline is seeded by the load expectation, after the engine
// settles, never before.
func (c *Coordinator) Hydrate(ctx context.Context) {
	raw, ok := c.host.LoadScene()
	if !ok && c.store != nil {
		var err error
		raw, ok, err = c.store.LastScene(ctx)
		if err != nil {
			c.log.Warn("local store read failed", slog.Any("err", err))
			ok = false
		}
	}
	if !ok || raw == "" {
		// Nothing persisted: the engine keeps its canonical empty scene and
		// the baseline already matches it.
		c.log.Info("hydrate: no previous scene")
		return
	}

	parsed, err := scene.Parse([]byte(raw))
	if err != nil {
		c.log.Warn("hydrate: stored scene unreadable", slog.Any("err", err))
		c.status(ToneErr, "Stored scene could not be read")
		return
	}
	name, known := c.host.CurrentFileName()
	if !known || name == "" {
		name = parsed.AppState.Name
		known = false
	}
	c.apply(parsed, c.newHandle(name), known)
	c.log.Info("hydrated", slog.String("name", c.identity.DisplayName()))
}

// newHandle wraps a file name in a handle flushing through the save ladder.
// Empty names produce no handle.
func (c *Coordinator) newHandle(name string) *document.Handle {
	if name == "" {
		return nil
	}
	return document.NewHandle(name, nil, c.flushHandle, c.identity.HasKnownLocation)
}

// apply replaces the engine scene programmatically. The skip counter and the
// expected signature are armed before the engine is touched so the cascade
// of settle events is absorbed, and the one-slot pending buffer catches
// scenes that arrive before the engine mounts.
func (c *Coordinator) apply(s scene.Scene, h *document.Handle, known bool) {
	if !c.eng.Ready() {
		c.pending = &pendingLoad{scene: s, handle: h, known: known}
		c.log.Debug("engine not ready, scene buffered")
		return
	}
	c.machine.ExpectLoad(scene.SignatureOf(s))
	c.eng.ReplaceScene(s)

	if h != nil {
		c.identity.Associate(h, known)
	} else {
		c.identity.Clear()
	}
}

func (c *Coordinator) applyPending() {
	if c.pending == nil {
		return
	}
	p := c.pending
	c.pending = nil
	c.apply(p.scene, p.handle, p.known)
}

// HandleSceneLoaded receives raw scene content from the host after an open
// or initial load. Malformed content produces an error banner and leaves the
// current scene untouched; a pending open request is rejected so callers
// unwind.
func (c *Coordinator) HandleSceneLoaded(rawJSON string, fileName string) {
	parsed, err := scene.Parse([]byte(rawJSON))
	if err != nil {
		c.log.Warn("scene payload rejected", slog.Any("err", err), slog.String("fileName", fileName))
		c.status(ToneErr, "Could not read the selected scene")
		c.openSlot.Reject(fmt.Errorf("%w: %v", bridge.ErrOpenAborted, err))
		return
	}
	name := fileName
	known := fileName != ""
	if name == "" {
		// appState.name is the fallback when the host provides none.
		name = parsed.AppState.Name
	}
	h := c.newHandle(name)
	c.apply(parsed, h, known)

	if h != nil {
		c.openSlot.Resolve([]*document.Handle{h})
	} else {
		c.openSlot.Resolve(nil)
	}
	c.status(ToneOK, "Opened "+document.DisplayName(name))
}

// envelope builds the rich outbound payload for serialized scene data.
func (c *Coordinator) envelope(data []byte) bridge.Envelope {
	sum := sha256.Sum256(data)
	return bridge.Envelope{
		JSON:          string(data),
		ByteLength:    len(data),
		ContentSHA256: hex.EncodeToString(sum[:]),
		SuggestedName: c.identity.DisplayName(),
		CreatedAt:     c.clock(),
	}
}

// PerformSave serializes the live scene and walks the outbound capability
// ladder, preferring the current known location. Without any host save
// capability it falls back to the local store; with neither, the action is
// reported unavailable and does not proceed.
func (c *Coordinator) PerformSave(ctx context.Context) error {
	if !c.eng.Ready() {
		c.status(ToneWarn, "Nothing to save yet")
		return ErrEngineNotReady
	}
	data, err := scene.Serialize(c.eng.Scene())
	if err != nil {
		c.status(ToneErr, "Could not serialize the scene")
		return err
	}

	d, err := c.host.Save(c.envelope(data), bridge.TargetAuto, c.identity.HasKnownLocation())
	if errors.Is(err, bridge.ErrUnavailable) {
		return c.saveToStore(ctx, data)
	}
	if err != nil {
		c.status(ToneErr, "Save failed: "+err.Error())
		return err
	}
	c.log.Info("save dispatched", slog.String("method", d.Method), slog.Bool("legacy", d.Legacy))
	return nil
}

// SaveAs unconditionally targets a new host location.
func (c *Coordinator) SaveAs(ctx context.Context) error {
	if !c.eng.Ready() {
		c.status(ToneWarn, "Nothing to save yet")
		return ErrEngineNotReady
	}
	data, err := scene.Serialize(c.eng.Scene())
	if err != nil {
		c.status(ToneErr, "Could not serialize the scene")
		return err
	}
	d, err := c.host.Save(c.envelope(data), bridge.TargetNewDocument, false)
	if errors.Is(err, bridge.ErrUnavailable) {
		return c.saveToStore(ctx, data)
	}
	if err != nil {
		c.status(ToneErr, "Save failed: "+err.Error())
		return err
	}
	c.log.Info("save-as dispatched", slog.String("method", d.Method))
	return nil
}

func (c *Coordinator) saveToStore(ctx context.Context, data []byte) error {
	if c.store == nil {
		c.status(ToneWarn, "Saving is not available")
		return fmt.Errorf("save: %w", bridge.ErrUnavailable)
	}
	if err := c.store.SaveLastScene(ctx, string(data)); err != nil {
		c.status(ToneErr, "Local save failed")
		return err
	}
	c.machine.Rebase(scene.Signature(c.eng.Elements(), c.eng.AppState()))
	c.lastSaved = c.clock()
	c.status(ToneOK, "Saved locally")
	return nil
}

// OpenFromDocument asks the host to present its file picker. The chosen
// file's handles arrive through resolve once the host calls back with the
// scene content; reject fires on host failure. At most one request may be
// outstanding: a second one is rejected immediately with ErrOpenPending
// instead of clobbering the first request's callbacks.
func (c *Coordinator) OpenFromDocument(resolve func([]*document.Handle), reject func(error)) error {
	if err := c.openSlot.Begin(resolve, reject); err != nil {
		c.status(ToneWarn, "A file dialog is already open")
		return err
	}
	if err := c.host.OpenSceneFromDocument(); err != nil {
		c.openSlot.Reject(err)
		if errors.Is(err, bridge.ErrUnavailable) {
			c.status(ToneWarn, "Opening files is not available")
		} else {
			c.status(ToneErr, "Could not open the file picker")
		}
		return err
	}
	return nil
}

// flushHandle is the write-session flush path: content accumulated by a
// generic save consumer goes out through the same capability ladder as an
// explicit save.
func (c *Coordinator) flushHandle(content []byte, toCurrent bool) error {
	target := bridge.TargetNewDocument
	hasLocation := false
	if toCurrent {
		target = bridge.TargetAuto
		hasLocation = true
	}
	_, err := c.host.Save(c.envelope(content), target, hasLocation)
	return err
}

// HandleNativeMessage validates and dispatches an inbound host payload.
func (c *Coordinator) HandleNativeMessage(payload []byte) {
	msg := c.host.DecodeMessage(payload)

	if !msg.Success {
		text := "Operation failed"
		if msg.Message != "" {
			text = msg.Message
		}
		c.status(ToneErr, text)
		// An outstanding open must not hang on a host failure.
		if c.openSlot.Reject(fmt.Errorf("%w: %s", bridge.ErrOpenAborted, text)) {
			c.log.Warn("pending open rejected by host failure", slog.String("message", text))
		}
		return
	}

	switch msg.Event {
	case bridge.EventSaveComplete:
		c.completeSave(msg)
	case bridge.EventExportComplete:
		c.status(ToneOK, "Export finished")
	default:
		if msg.Message != "" {
			c.status(ToneOK, msg.Message)
		}
	}
}

// completeSave re-associates the file identity with its now-known location
// and resets the dirty state. The metadata write into the engine is wrapped
// in a one-shot suppression so its own change event is not misread as an
// edit.
func (c *Coordinator) completeSave(msg bridge.Message) {
	c.lastSaved = c.clock()

	name := msg.FileName
	if name == "" {
		name = c.identity.DisplayName()
	}
	h := document.NewHandle(name, nil, c.flushHandle, c.identity.HasKnownLocation)
	c.identity.Associate(h, true)

	c.machine.SuppressNext()
	c.eng.SetName(c.identity.DisplayName())
	c.machine.Rebase(scene.Signature(c.eng.Elements(), c.eng.AppState()))

	c.status(ToneOK, "Saved "+c.identity.DisplayName())
	c.log.Info("save acknowledged", slog.String("name", c.identity.DisplayName()))
}
