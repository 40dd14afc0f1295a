/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders scenes to PNG, SVG and PDF. Deleted elements never
// render; the canvas is sized to the visible content plus padding.
package export

import (
	"image/color"
	"strconv"
	"strings"

	"gosketchpad/internal/scene"
)

// Bounds is the axis-aligned box enclosing all visible elements.
type Bounds struct {
	X, Y          float64
	Width, Height float64
}

// SceneBounds computes the enclosing box of the non-deleted elements. Empty
// scenes yield a zero box at the origin.
func SceneBounds(elements []scene.Element) Bounds {
	first := true
	var minX, minY, maxX, maxY float64
	for _, el := range elements {
		if el.IsDeleted {
			continue
		}
		x0, y0 := el.X, el.Y
		x1, y1 := el.X+el.Width, el.Y+el.Height
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		// Freedraw points are relative to the element origin.
		for _, p := range el.Points {
			if len(p) < 2 {
				continue
			}
			px, py := el.X+p[0], el.Y+p[1]
			if px < x0 {
				x0 = px
			}
			if py < y0 {
				y0 = py
			}
			if px > x1 {
				x1 = px
			}
			if py > y1 {
				y1 = py
			}
		}
		if first {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			first = false
			continue
		}
		if x0 < minX {
			minX = x0
		}
		if y0 < minY {
			minY = y0
		}
		if x1 > maxX {
			maxX = x1
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	if first {
		return Bounds{}
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// parseHexColor accepts #rgb, #rrggbb and #rrggbbaa. Anything unparseable
// (including "transparent") comes back with ok=false.
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		var b strings.Builder
		for _, c := range hex {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		hex = b.String()
	case 6, 8:
	default:
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	c := color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:8], 16, 16)
		if err != nil {
			return color.RGBA{}, false
		}
		c.A = uint8(a)
	}
	return c, true
}
