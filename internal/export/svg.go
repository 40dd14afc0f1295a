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
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gosketchpad/internal/scene"
)

// SVGOptions controls SVG export behavior. The coordinate system matches the
// scene; a viewBox maps content onto the output size.
type SVGOptions struct {
	Padding    float64
	Background string
	FontFamily string
}

// WriteSceneSVG renders the visible elements of a scene to w as standalone SVG.
func WriteSceneSVG(s scene.Scene, w io.Writer, opt SVGOptions) error {
	pad := opt.Padding
	if pad <= 0 {
		pad = defaultPadding
	}
	b := SceneBounds(s.Elements)
	width := b.Width + 2*pad
	height := b.Height + 2*pad
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	bg := opt.Background
	if bg == "" {
		bg = s.AppState.ViewBackgroundColor
	}
	if bg == "" {
		bg = "#ffffff"
	}
	font := opt.FontFamily
	if font == "" {
		font = "Helvetica, Arial, sans-serif"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		num(width), num(height), num(b.X-pad), num(b.Y-pad), num(width), num(height))
	fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		num(b.X-pad), num(b.Y-pad), num(width), num(height), esc(bg))

	for _, el := range s.Elements {
		if el.IsDeleted {
			continue
		}
		writeSVGElement(&buf, el, font)
	}
	buf.WriteString("</svg>\n")
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportSceneSVG renders the scene into an SVG file at path.
func ExportSceneSVG(s scene.Scene, path string, opt SVGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	if err := WriteSceneSVG(s, f, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close svg: %w", err)
	}
	return nil
}

func writeSVGElement(buf *bytes.Buffer, el scene.Element, font string) {
	stroke := el.StrokeColor
	if stroke == "" {
		stroke = "#000000"
	}
	fill := el.BackgroundColor
	if fill == "" {
		fill = "none"
	}
	sw := el.StrokeWidth
	if sw <= 0 {
		sw = 1
	}
	style := fmt.Sprintf(`stroke="%s" stroke-width="%s" fill="%s"`, esc(stroke), num(sw), esc(fill))

	var transform string
	if el.Angle != 0 {
		cx := el.X + el.Width/2
		cy := el.Y + el.Height/2
		transform = fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(el.Angle*180/math.Pi), num(cx), num(cy))
	}

	switch el.Type {
	case scene.TypeRectangle, scene.TypeImage:
		fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s" %s%s/>`+"\n",
			num(el.X), num(el.Y), num(el.Width), num(el.Height), style, transform)
	case scene.TypeEllipse:
		fmt.Fprintf(buf, `  <ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s%s/>`+"\n",
			num(el.X+el.Width/2), num(el.Y+el.Height/2), num(el.Width/2), num(el.Height/2), style, transform)
	case scene.TypeLine, scene.TypeArrow, scene.TypeFreedraw:
		pts := polylinePoints(el)
		if pts == "" {
			return
		}
		fmt.Fprintf(buf, `  <polyline points="%s" stroke="%s" stroke-width="%s" fill="none"%s/>`+"\n",
			pts, esc(stroke), num(sw), transform)
	case scene.TypeText:
		fmt.Fprintf(buf, `  <text x="%s" y="%s" font-family="%s" fill="%s"%s>%s</text>`+"\n",
			num(el.X), num(el.Y+el.Height), esc(font), esc(stroke), transform, esc(el.Text))
	}
}

func polylinePoints(el scene.Element) string {
	if len(el.Points) == 0 {
		// Endpoint pair derived from the bounding box.
		return fmt.Sprintf("%s,%s %s,%s", num(el.X), num(el.Y), num(el.X+el.Width), num(el.Y+el.Height))
	}
	parts := make([]string, 0, len(el.Points))
	for _, p := range el.Points {
		if len(p) < 2 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s,%s", num(el.X+p[0]), num(el.Y+p[1])))
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
