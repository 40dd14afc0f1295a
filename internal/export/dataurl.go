/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"gosketchpad/internal/scene"
)

// PNGDataURL renders the scene and wraps the PNG bytes in a data URL, the
// form host export capabilities expect.
func PNGDataURL(s scene.Scene, opt PNGOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteScenePNG(s, &buf, opt); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SVGDataURL renders the scene and wraps the SVG markup in a data URL.
func SVGDataURL(s scene.Scene, opt SVGOptions) (string, error) {
	var buf bytes.Buffer
	if err := WriteSceneSVG(s, &buf, opt); err != nil {
		return "", err
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL splits a data URL into its media type and raw bytes.
func DecodeDataURL(u string) (mediaType string, data []byte, err error) {
	if !strings.HasPrefix(u, "data:") {
		return "", nil, fmt.Errorf("not a data url")
	}
	rest := u[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, fmt.Errorf("malformed data url")
	}
	meta := rest[:comma]
	payload := rest[comma+1:]
	mediaType = meta
	if i := strings.IndexByte(meta, ';'); i >= 0 {
		mediaType = meta[:i]
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data url: %w", err)
		}
		return mediaType, data, nil
	}
	return mediaType, []byte(payload), nil
}
