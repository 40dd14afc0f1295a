/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"gosketchpad/internal/scene"
)

// PDFOptions controls PDF export behavior. Units are points (pt); scene
// coordinates map 1:1 onto the page. Vector text uses built-in Helvetica for
// portability.
type PDFOptions struct {
	Padding    float64
	Background string
	Title      string
	FontSizePt float64
}

// WriteScenePDF renders the visible elements of a scene as a single-page PDF.
func WriteScenePDF(s scene.Scene, w io.Writer, opt PDFOptions) error {
	pad := opt.Padding
	if pad <= 0 {
		pad = defaultPadding
	}
	fontSize := opt.FontSizePt
	if fontSize <= 0 {
		fontSize = 12
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

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
		OrientationStr: "",
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.AddPage()

	bgName := opt.Background
	if bgName == "" {
		bgName = s.AppState.ViewBackgroundColor
	}
	if bg, ok := parseHexColor(bgName); ok {
		pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
		pdf.Rect(0, 0, width, height, "F")
	}

	// Scene-to-page translation.
	tx := func(x float64) float64 { return x - b.X + pad }
	ty := func(y float64) float64 { return y - b.Y + pad }

	for _, el := range s.Elements {
		if el.IsDeleted {
			continue
		}
		drawPDFElement(pdf, el, tx, ty)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportScenePDF renders the scene into a PDF file at outPath.
func ExportScenePDF(s scene.Scene, outPath string, opt PDFOptions) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WriteScenePDF(s, f, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}

func drawPDFElement(pdf *gofpdf.Fpdf, el scene.Element, tx, ty func(float64) float64) {
	stroke, ok := parseHexColor(el.StrokeColor)
	if !ok {
		stroke = color.RGBA{A: 255}
	}
	pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	lw := el.StrokeWidth
	if lw <= 0 {
		lw = 1
	}
	pdf.SetLineWidth(lw)

	styleStr := "D"
	if fill, ok := parseHexColor(el.BackgroundColor); ok {
		pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		styleStr = "FD"
	}

	x, y := tx(el.X), ty(el.Y)
	switch el.Type {
	case scene.TypeRectangle, scene.TypeImage:
		pdf.Rect(x, y, el.Width, el.Height, styleStr)
	case scene.TypeEllipse:
		pdf.Ellipse(x+el.Width/2, y+el.Height/2, el.Width/2, el.Height/2, 0, styleStr)
	case scene.TypeLine, scene.TypeArrow, scene.TypeFreedraw:
		drawPDFPolyline(pdf, el, tx, ty)
		if el.Type == scene.TypeArrow {
			drawPDFArrowHead(pdf, el, tx, ty)
		}
	case scene.TypeText:
		pdf.SetTextColor(int(stroke.R), int(stroke.G), int(stroke.B))
		pdf.Text(x, y+el.Height, el.Text)
	}
}

func drawPDFPolyline(pdf *gofpdf.Fpdf, el scene.Element, tx, ty func(float64) float64) {
	if len(el.Points) < 2 {
		pdf.Line(tx(el.X), ty(el.Y), tx(el.X+el.Width), ty(el.Y+el.Height))
		return
	}
	var px, py float64
	first := true
	for _, p := range el.Points {
		if len(p) < 2 {
			continue
		}
		x, y := tx(el.X+p[0]), ty(el.Y+p[1])
		if !first {
			pdf.Line(px, py, x, y)
		}
		px, py = x, y
		first = false
	}
}

func drawPDFArrowHead(pdf *gofpdf.Fpdf, el scene.Element, tx, ty func(float64) float64) {
	x0, y0 := tx(el.X), ty(el.Y)
	x1, y1 := tx(el.X+el.Width), ty(el.Y+el.Height)
	if n := len(el.Points); n >= 2 {
		p0, p1 := el.Points[n-2], el.Points[n-1]
		if len(p0) >= 2 && len(p1) >= 2 {
			x0, y0 = tx(el.X+p0[0]), ty(el.Y+p0[1])
			x1, y1 = tx(el.X+p1[0]), ty(el.Y+p1[1])
		}
	}
	ang := math.Atan2(y1-y0, x1-x0)
	const ln = 6.0
	for _, da := range []float64{math.Pi - 0.5, math.Pi + 0.5} {
		pdf.Line(x1, y1, x1+ln*math.Cos(ang+da), y1+ln*math.Sin(ang+da))
	}
}
