/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	applog "gosketchpad/internal/log"
)

// ErrUnavailable means no host capability exists for the requested action.
// Callers surface it as a warning status, never as a crash.
var ErrUnavailable = errors.New("bridge: capability unavailable")

// SaveTarget selects which outbound save chain the adapter walks.
type SaveTarget int

const (
	// TargetAuto prefers the current known location when one exists, then
	// falls back through generic and new-location methods.
	TargetAuto SaveTarget = iota
	// TargetNewDocument unconditionally asks the host for a new location.
	TargetNewDocument
)

// Dispatch is the tagged result of a capability probe: which host method was
// called and whether it was a legacy plain-string one.
type Dispatch struct {
	Method string
	Legacy bool
}

// Adapter wraps a host and performs ranked capability dispatch. The host is
// injected at construction so tests substitute a fake without global state.
type Adapter struct {
	host any
	log  *slog.Logger
}

// NewAdapter wraps the given host. A nil host is legal and simply has no
// capabilities (browser-only operation).
func NewAdapter(host any) *Adapter {
	return &Adapter{host: host, log: applog.WithComponent("bridge")}
}

// saveAttempt is one rung of the outbound fallback ladder.
type saveAttempt struct {
	method string
	legacy bool
	call   func(env Envelope) (bool, error)
}

func (a *Adapter) attemptPersistCurrent(env Envelope) (bool, error) {
	if h, ok := a.host.(CurrentDocumentPersister); ok {
		return true, h.PersistSceneToCurrentDocument(env)
	}
	return false, nil
}

func (a *Adapter) attemptSaveCurrent(env Envelope) (bool, error) {
	if h, ok := a.host.(LegacyCurrentDocumentSaver); ok {
		return true, h.SaveSceneToCurrentDocument(env.JSON)
	}
	return false, nil
}

func (a *Adapter) attemptPersist(env Envelope) (bool, error) {
	if h, ok := a.host.(ScenePersister); ok {
		return true, h.PersistScene(env)
	}
	return false, nil
}

func (a *Adapter) attemptSave(env Envelope) (bool, error) {
	if h, ok := a.host.(LegacySceneSaver); ok {
		return true, h.SaveScene(env.JSON)
	}
	return false, nil
}

func (a *Adapter) attemptPersistDocument(env Envelope) (bool, error) {
	if h, ok := a.host.(DocumentPersister); ok {
		return true, h.PersistSceneToDocument(env)
	}
	return false, nil
}

func (a *Adapter) attemptSaveDocument(env Envelope) (bool, error) {
	if h, ok := a.host.(LegacyDocumentSaver); ok {
		return true, h.SaveSceneToDocument(env.JSON)
	}
	return false, nil
}

// Save walks the ranked capability list for the given target and calls the
// first method the host implements. hasLocation gates the current-document
// rungs of the TargetAuto ladder.
func (a *Adapter) Save(env Envelope, target SaveTarget, hasLocation bool) (Dispatch, error) {
	var ladder []saveAttempt
	switch target {
	case TargetNewDocument:
		ladder = []saveAttempt{
			{"persistSceneToDocument", false, a.attemptPersistDocument},
			{"saveSceneToDocument", true, a.attemptSaveDocument},
		}
	default:
		if hasLocation {
			ladder = append(ladder,
				saveAttempt{"persistSceneToCurrentDocument", false, a.attemptPersistCurrent},
				saveAttempt{"saveSceneToCurrentDocument", true, a.attemptSaveCurrent},
			)
		}
		ladder = append(ladder,
			saveAttempt{"persistScene", false, a.attemptPersist},
			saveAttempt{"saveScene", true, a.attemptSave},
			saveAttempt{"persistSceneToDocument", false, a.attemptPersistDocument},
			saveAttempt{"saveSceneToDocument", true, a.attemptSaveDocument},
		)
	}

	for _, att := range ladder {
		matched, err := att.call(env)
		if !matched {
			continue
		}
		if err != nil {
			return Dispatch{}, fmt.Errorf("host %s: %w", att.method, err)
		}
		a.log.Debug("scene dispatched", slog.String("method", att.method), slog.Bool("legacy", att.legacy))
		return Dispatch{Method: att.method, Legacy: att.legacy}, nil
	}
	return Dispatch{}, fmt.Errorf("save: %w", ErrUnavailable)
}

// OpenSceneFromDocument asks the host to present its file picker.
func (a *Adapter) OpenSceneFromDocument() error {
	if h, ok := a.host.(DocumentOpener); ok {
		return h.OpenSceneFromDocument()
	}
	return fmt.Errorf("open: %w", ErrUnavailable)
}

// LoadScene performs the synchronous startup read. ok is false when the host
// lacks the capability or has no stored scene.
func (a *Adapter) LoadScene() (string, bool) {
	if h, ok := a.host.(SceneLoader); ok {
		return h.LoadScene()
	}
	return "", false
}

// CurrentFileName queries the host for the current document name.
func (a *Adapter) CurrentFileName() (string, bool) {
	if h, ok := a.host.(FileNameProvider); ok {
		return h.CurrentFileName()
	}
	return "", false
}

// ExportPNG delivers a rendered PNG data URL to the host.
func (a *Adapter) ExportPNG(dataURL string) error {
	if h, ok := a.host.(PNGExporter); ok {
		return h.ExportPNG(dataURL)
	}
	return fmt.Errorf("export png: %w", ErrUnavailable)
}

// ExportSVG delivers a rendered SVG data URL to the host.
func (a *Adapter) ExportSVG(dataURL string) error {
	if h, ok := a.host.(SVGExporter); ok {
		return h.ExportSVG(dataURL)
	}
	return fmt.Errorf("export svg: %w", ErrUnavailable)
}

// CanSave reports whether any outbound save capability exists at all.
func (a *Adapter) CanSave() bool {
	switch a.host.(type) {
	case ScenePersister, DocumentPersister, CurrentDocumentPersister,
		LegacySceneSaver, LegacyDocumentSaver, LegacyCurrentDocumentSaver:
		return true
	}
	return false
}
