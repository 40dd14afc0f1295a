/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bridge is the boundary to the embedding host application. A host
// implements whichever capability interfaces it supports; the adapter probes
// them in a fixed, ranked order so call sites never re-implement the
// fallback chain. Inbound host payloads are validated structurally before
// anything downstream sees them.
package bridge

import "time"

// Envelope is the rich outbound save payload. Legacy hosts receive only the
// raw JSON string.
type Envelope struct {
	JSON          string    `json:"json"`
	ByteLength    int       `json:"byteLength"`
	ContentSHA256 string    `json:"contentSha256,omitempty"`
	SuggestedName string    `json:"suggestedName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Rich envelope-accepting save capabilities, preferred over the legacy ones.
type (
	// ScenePersister saves to whatever location the host deems current.
	ScenePersister interface {
		PersistScene(env Envelope) error
	}
	// DocumentPersister saves to a new host-chosen location.
	DocumentPersister interface {
		PersistSceneToDocument(env Envelope) error
	}
	// CurrentDocumentPersister saves to the already-known location.
	CurrentDocumentPersister interface {
		PersistSceneToCurrentDocument(env Envelope) error
	}
)

// Legacy plain-string save capabilities.
type (
	LegacySceneSaver interface {
		SaveScene(json string) error
	}
	LegacyDocumentSaver interface {
		SaveSceneToDocument(json string) error
	}
	LegacyCurrentDocumentSaver interface {
		SaveSceneToCurrentDocument(json string) error
	}
)

// DocumentOpener triggers the host-side file picker. The chosen file arrives
// asynchronously through the scene-loaded callback.
type DocumentOpener interface {
	OpenSceneFromDocument() error
}

// SceneLoader is the synchronous "last known scene" read used at startup.
type SceneLoader interface {
	LoadScene() (json string, ok bool)
}

// FileNameProvider is the synchronous current-document name query.
type FileNameProvider interface {
	CurrentFileName() (name string, ok bool)
}

// Export delivery, fire and forget.
type (
	PNGExporter interface {
		ExportPNG(dataURL string) error
	}
	SVGExporter interface {
		ExportSVG(dataURL string) error
	}
)
