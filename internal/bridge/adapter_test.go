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
	"testing"
)

// Fake hosts composed from individual capabilities.

type legacyDocHost struct {
	savedJSON string
}

func (h *legacyDocHost) SaveSceneToDocument(json string) error {
	h.savedJSON = json
	return nil
}

type richHost struct {
	calls []string
	env   Envelope
}

func (h *richHost) PersistScene(env Envelope) error {
	h.calls = append(h.calls, "persistScene")
	h.env = env
	return nil
}
func (h *richHost) PersistSceneToDocument(env Envelope) error {
	h.calls = append(h.calls, "persistSceneToDocument")
	h.env = env
	return nil
}
func (h *richHost) PersistSceneToCurrentDocument(env Envelope) error {
	h.calls = append(h.calls, "persistSceneToCurrentDocument")
	h.env = env
	return nil
}
func (h *richHost) SaveScene(string) error { h.calls = append(h.calls, "saveScene"); return nil }

func TestSaveFallsBackToOnlyLegacyDocumentSaver(t *testing.T) {
	host := &legacyDocHost{}
	a := NewAdapter(host)
	d, err := a.Save(Envelope{JSON: `{"elements":[]}`}, TargetAuto, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.Method != "saveSceneToDocument" || !d.Legacy {
		t.Fatalf("unexpected dispatch: %+v", d)
	}
	if host.savedJSON != `{"elements":[]}` {
		t.Fatalf("legacy saver must receive raw JSON, got %q", host.savedJSON)
	}
}

func TestSavePrefersCurrentDocumentWhenLocationKnown(t *testing.T) {
	host := &richHost{}
	a := NewAdapter(host)
	d, err := a.Save(Envelope{JSON: "{}"}, TargetAuto, true)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.Method != "persistSceneToCurrentDocument" || d.Legacy {
		t.Fatalf("unexpected dispatch: %+v", d)
	}
}

func TestSaveSkipsCurrentDocumentWithoutLocation(t *testing.T) {
	host := &richHost{}
	a := NewAdapter(host)
	d, err := a.Save(Envelope{JSON: "{}"}, TargetAuto, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.Method != "persistScene" {
		t.Fatalf("expected generic rich method, got %+v", d)
	}
}

func TestSaveAsTargetsNewDocumentOnly(t *testing.T) {
	host := &richHost{}
	a := NewAdapter(host)
	d, err := a.Save(Envelope{JSON: "{}"}, TargetNewDocument, true)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if d.Method != "persistSceneToDocument" {
		t.Fatalf("save-as must use the new-location variant, got %+v", d)
	}
}

func TestSaveUnavailableWithoutCapabilities(t *testing.T) {
	a := NewAdapter(nil)
	if _, err := a.Save(Envelope{}, TargetAuto, false); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if a.CanSave() {
		t.Fatalf("nil host must report no save capability")
	}
	if NewAdapter(&legacyDocHost{}).CanSave() != true {
		t.Fatalf("legacy saver must count as save capability")
	}
}

type failingHost struct{}

func (failingHost) SaveScene(string) error { return errors.New("disk full") }

func TestSaveHostErrorPropagates(t *testing.T) {
	a := NewAdapter(failingHost{})
	if _, err := a.Save(Envelope{JSON: "{}"}, TargetAuto, false); err == nil {
		t.Fatalf("host error must propagate")
	}
}

type loaderHost struct{ json string }

func (h loaderHost) LoadScene() (string, bool) { return h.json, h.json != "" }

func TestLoadSceneProbe(t *testing.T) {
	if s, ok := NewAdapter(nil).LoadScene(); ok || s != "" {
		t.Fatalf("nil host must report no stored scene")
	}
	if s, ok := NewAdapter(loaderHost{json: "{}"}).LoadScene(); !ok || s != "{}" {
		t.Fatalf("loader host not probed: %q %v", s, ok)
	}
}

func TestOpenAndExportUnavailable(t *testing.T) {
	a := NewAdapter(struct{}{})
	if err := a.OpenSceneFromDocument(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := a.ExportPNG("data:"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := a.ExportSVG("data:"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
