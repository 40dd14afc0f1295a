/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene defines the drawable scene data model, its JSON file format,
// and the signature fingerprint used for cheap change detection.
//
// The drawing engine owns the live scene; this package only describes the
// serialized shape of it and derives signatures from it.
package scene

// Element is a single drawable shape as the engine serializes it.
// Only ID, Version and IsDeleted participate in change detection; the
// geometry and style fields are carried through for persistence and export.
type Element struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	Version         int         `json:"version"`
	IsDeleted       bool        `json:"isDeleted"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	Angle           float64     `json:"angle,omitempty"`
	StrokeColor     string      `json:"strokeColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	StrokeWidth     float64     `json:"strokeWidth,omitempty"`
	Points          [][]float64 `json:"points,omitempty"`
	Text            string      `json:"text,omitempty"`
	FileID          string      `json:"fileId,omitempty"`
}

// Element types the export and reference engine understand. The signature
// machinery is agnostic to the type; unknown types pass through untouched.
const (
	TypeRectangle = "rectangle"
	TypeEllipse   = "ellipse"
	TypeLine      = "line"
	TypeArrow     = "arrow"
	TypeFreedraw  = "freedraw"
	TypeText      = "text"
	TypeImage     = "image"
)

// AppState carries the view settings that participate in the signature
// plus auxiliary fields the file format persists.
type AppState struct {
	ViewBackgroundColor string  `json:"viewBackgroundColor,omitempty"`
	Theme               string  `json:"theme,omitempty"`
	GridSize            *int    `json:"gridSize,omitempty"`
	Name                string  `json:"name,omitempty"`
	Zoom                float64 `json:"zoom,omitempty"`
	ScrollX             float64 `json:"scrollX,omitempty"`
	ScrollY             float64 `json:"scrollY,omitempty"`
}

// AttachedFile is a binary blob referenced by image elements, stored as a
// data URL inside the scene file.
type AttachedFile struct {
	MimeType string `json:"mimeType"`
	DataURL  string `json:"dataURL"`
}

// Scene is the complete serializable drawing state.
type Scene struct {
	Elements []Element               `json:"elements"`
	AppState AppState                `json:"appState"`
	Files    map[string]AttachedFile `json:"files,omitempty"`
}

// DefaultAppState returns the view settings of a freshly created canvas.
func DefaultAppState() AppState {
	return AppState{ViewBackgroundColor: "#ffffff", Theme: "light", Zoom: 1}
}

// Empty returns the canonical empty scene.
func Empty() Scene {
	return Scene{Elements: []Element{}, AppState: DefaultAppState()}
}

// NonDeletedCount reports how many elements are not tombstoned.
func NonDeletedCount(elements []Element) int {
	n := 0
	for _, el := range elements {
		if !el.IsDeleted {
			n++
		}
	}
	return n
}
