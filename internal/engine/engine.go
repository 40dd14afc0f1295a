/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine defines the imperative contract of the drawing engine as
// this application consumes it. The engine is a black box: shape rendering,
// hit-testing and its own undo internals are not modeled here, only the
// scene access and mutation surface the synchronization layer needs.
package engine

import "gosketchpad/internal/scene"

// Engine is the black-box drawing engine surface. A change notification
// fires for every scene mutation, user-driven or programmatic; observers
// must classify them (see the dirty package).
type Engine interface {
	// Ready reports whether the engine is mounted and can accept scenes.
	Ready() bool
	// Elements returns the current shape list, tombstones included.
	Elements() []scene.Element
	// AppState returns the current view settings.
	AppState() scene.AppState
	// Scene returns a copy of the full drawable state.
	Scene() scene.Scene
	// ReplaceScene swaps the whole scene programmatically. The engine fires
	// several internal change notifications while it settles.
	ReplaceScene(s scene.Scene)
	// SetName updates the scene's metadata name. Fires one change event.
	SetName(name string)
	// OnChange registers a scene-change observer. Observers run
	// synchronously, in registration order, on the engine's event goroutine.
	OnChange(fn func())
	// OnReady registers a callback invoked once the engine mounts.
	OnReady(fn func())
}
