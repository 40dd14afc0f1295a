/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "testing"

func grid(n int) *int { return &n }

func TestSignatureFormat(t *testing.T) {
	els := []Element{
		{ID: "a", Version: 3},
		{ID: "b", Version: 1, IsDeleted: true},
	}
	st := AppState{ViewBackgroundColor: "#ffffff", Theme: "dark", GridSize: grid(20)}
	got := Signature(els, st)
	want := "a:3:0|b:1:1::#ffffff:dark:20"
	if got != want {
		t.Fatalf("signature mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestSignatureDeterminismAndSensitivity(t *testing.T) {
	els := []Element{{ID: "a", Version: 1}, {ID: "b", Version: 2}}
	st := AppState{ViewBackgroundColor: "#fff", Theme: "light"}

	if Signature(els, st) != Signature(els, st) {
		t.Fatalf("equal inputs must yield equal signatures")
	}

	bumped := []Element{{ID: "a", Version: 2}, {ID: "b", Version: 2}}
	if Signature(bumped, st) == Signature(els, st) {
		t.Fatalf("version bump must change signature")
	}

	tombstoned := []Element{{ID: "a", Version: 1, IsDeleted: true}, {ID: "b", Version: 2}}
	if Signature(tombstoned, st) == Signature(els, st) {
		t.Fatalf("tombstone flip must change signature")
	}

	// Order sensitivity is deliberate: reordering alone changes the string.
	reordered := []Element{{ID: "b", Version: 2}, {ID: "a", Version: 1}}
	if Signature(reordered, st) == Signature(els, st) {
		t.Fatalf("reordering must change signature")
	}
}

func TestSignatureMissingViewFields(t *testing.T) {
	got := Signature(nil, AppState{})
	if got != "::::" {
		t.Fatalf("missing view fields must render empty, got %q", got)
	}
}

func TestEmptySignature(t *testing.T) {
	want := "::#ffffff:light:"
	if got := EmptySignature(); got != want {
		t.Fatalf("empty signature: got %q want %q", got, want)
	}
}
