//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"gosketchpad/internal/bridge"
	"gosketchpad/internal/config"
	"gosketchpad/internal/crash"
	"gosketchpad/internal/document"
	"gosketchpad/internal/engine"
	"gosketchpad/internal/export"
	applog "gosketchpad/internal/log"
	"gosketchpad/internal/scene"
	"gosketchpad/internal/session"
	"gosketchpad/internal/storage"
	"gosketchpad/internal/telemetry"
	"gosketchpad/internal/undo"
)

const prefLastScenePath = "scene.lastPath"

// desktopHost is the bridge host for the Fyne shell: file dialogs back the
// open/save capabilities, the last-opened path backs the synchronous
// startup read, and completions come back as native messages.
type desktopHost struct {
	win         fyne.Window
	prefs       fyne.Preferences
	currentPath string
	log         *slog.Logger

	// sceneJSON returns the serialized live scene for save operations.
	sceneJSON func() ([]byte, error)
	// onLoaded delivers picked scene content back into the session.
	onLoaded func(rawJSON, fileName string)
	// deliver pushes a native message payload into the session.
	deliver func(payload []byte)
}

func (h *desktopHost) notify(event string, success bool, message, fileName string) {
	payload, _ := json.Marshal(map[string]any{
		"event":    event,
		"success":  success,
		"message":  message,
		"fileName": fileName,
	})
	h.deliver(payload)
}

// LoadScene reads the previously open scene file, if it still exists.
func (h *desktopHost) LoadScene() (string, bool) {
	path := h.prefs.String(prefLastScenePath)
	if path == "" {
		return "", false
	}
	data, recovered, err := storage.ReadSceneFile(path)
	if err != nil {
		h.log.Warn("last scene unreadable", slog.String("path", path), slog.Any("err", err))
		return "", false
	}
	if recovered {
		h.log.Warn("last scene restored from backup", slog.String("path", path))
	}
	h.currentPath = path
	return string(data), true
}

func (h *desktopHost) CurrentFileName() (string, bool) {
	if h.currentPath == "" {
		return "", false
	}
	return filepath.Base(h.currentPath), true
}

// OpenSceneFromDocument shows the file picker; the chosen scene arrives
// through the scene-loaded callback.
func (h *desktopHost) OpenSceneFromDocument() error {
	open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
		if err != nil {
			h.notify(bridge.EventNativeMessage, false, err.Error(), "")
			return
		}
		if ur == nil {
			h.notify(bridge.EventNativeMessage, false, "open canceled", "")
			return
		}
		path := ur.URI().Path()
		_ = ur.Close()
		data, recovered, err := storage.ReadSceneFile(path)
		if err != nil {
			h.notify(bridge.EventNativeMessage, false, err.Error(), "")
			return
		}
		if recovered {
			h.log.Warn("scene restored from backup", slog.String("path", path))
		}
		h.currentPath = path
		h.prefs.SetString(prefLastScenePath, path)
		h.onLoaded(string(data), filepath.Base(path))
	}, h.win)
	open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json", ".sketch"}))
	open.Show()
	return nil
}

// PersistSceneToCurrentDocument writes to the known path without a dialog.
func (h *desktopHost) PersistSceneToCurrentDocument(env bridge.Envelope) error {
	if h.currentPath == "" {
		return fmt.Errorf("no current document")
	}
	if err := storage.WriteSceneFile(h.currentPath, []byte(env.JSON)); err != nil {
		h.notify(bridge.EventSaveComplete, false, err.Error(), "")
		return nil
	}
	h.notify(bridge.EventSaveComplete, true, "", filepath.Base(h.currentPath))
	return nil
}

// PersistSceneToDocument asks for a new location, then writes there.
func (h *desktopHost) PersistSceneToDocument(env bridge.Envelope) error {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			h.notify(bridge.EventSaveComplete, false, err.Error(), "")
			return
		}
		if uc == nil {
			h.notify(bridge.EventNativeMessage, false, "save canceled", "")
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()
		if !strings.HasSuffix(strings.ToLower(path), ".sketch.json") {
			path += ".sketch.json"
		}
		if err := storage.WriteSceneFile(path, []byte(env.JSON)); err != nil {
			h.notify(bridge.EventSaveComplete, false, err.Error(), "")
			return
		}
		h.currentPath = path
		h.prefs.SetString(prefLastScenePath, path)
		h.notify(bridge.EventSaveComplete, true, "", filepath.Base(path))
	}, h.win)
	name := env.SuggestedName
	if name == "" {
		name = "scene"
	}
	save.SetFileName(name + ".sketch.json")
	save.Show()
	return nil
}

func (h *desktopHost) exportTo(ext string, write func(path string) error) error {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			h.notify(bridge.EventExportComplete, false, err.Error(), "")
			return
		}
		if uc == nil {
			return
		}
		path := uc.URI().Path()
		_ = uc.Close()
		if !strings.HasSuffix(strings.ToLower(path), ext) {
			path += ext
		}
		if err := write(path); err != nil {
			h.notify(bridge.EventExportComplete, false, err.Error(), "")
			return
		}
		h.notify(bridge.EventExportComplete, true, "Exported to "+path, filepath.Base(path))
	}, h.win)
	save.SetFileName("scene" + ext)
	save.Show()
	return nil
}

func (h *desktopHost) ExportPNG(dataURL string) error {
	return h.exportTo(".png", func(path string) error {
		_, data, err := export.DecodeDataURL(dataURL)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	})
}

func (h *desktopHost) ExportSVG(dataURL string) error {
	return h.exportTo(".svg", func(path string) error {
		_, data, err := export.DecodeDataURL(dataURL)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	})
}

// Run starts the desktop shell. scenePath optionally names a scene file to
// open immediately instead of the previous session's scene.
func Run(scenePath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	telemetry.InitDefault()

	fyneApp := app.NewWithID("gosketchpad")
	w := fyneApp.NewWindow("GoSketchpad")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 750)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	eng := engine.NewMemory(engine.MemoryConfig{
		SettleEvents: cfg.Editor.SettleEvents,
		History: undo.Config{
			MaxBytes: cfg.Editor.UndoMaxBytes,
			MaxDepth: cfg.Editor.UndoDepth,
		},
	})
	defer crash.Recover(func() []byte {
		data, err := scene.Serialize(eng.Scene())
		if err != nil {
			return nil
		}
		return data
	})

	var store *storage.Store
	if dir, err := storage.DefaultStoreDir(); err == nil {
		if s, err := storage.Open(dir); err == nil {
			store = s
			defer func() { _ = s.Close() }()
		} else {
			l.Warn("local store unavailable", slog.Any("err", err))
		}
	}

	host := &desktopHost{win: w, prefs: prefs, log: applog.WithComponent("host")}
	adapter := bridge.NewAdapter(host)

	status := widget.NewLabel("Ready")
	coord := session.New(eng, adapter, session.Config{
		SettleEvents: cfg.Editor.SettleEvents,
		Store:        store,
		OnStatus: func(st session.Status) {
			switch st.Tone {
			case session.ToneErr:
				status.SetText("Error: " + st.Text)
			case session.ToneWarn:
				status.SetText("Warning: " + st.Text)
			default:
				status.SetText(st.Text)
			}
		},
	})
	host.sceneJSON = func() ([]byte, error) { return scene.Serialize(eng.Scene()) }
	host.onLoaded = coord.HandleSceneLoaded
	host.deliver = coord.HandleNativeMessage

	sceneBox := container.NewWithoutLayout()
	refreshTitle := func() {
		title := "GoSketchpad — " + coord.DisplayName()
		if coord.IsDirty() {
			title += " *"
		}
		w.SetTitle(title)
	}
	eng.OnChange(func() {
		renderScene(sceneBox, eng.Scene())
		refreshTitle()
	})

	ctx := context.Background()
	doSave := func() {
		if err := coord.PerformSave(ctx); err != nil {
			l.Warn("save failed", slog.Any("err", err))
		}
		telemetry.Event("scene_save", nil)
	}
	doSaveAs := func() {
		if err := coord.SaveAs(ctx); err != nil {
			l.Warn("save-as failed", slog.Any("err", err))
		}
	}
	doOpen := func() {
		err := coord.OpenFromDocument(
			func([]*document.Handle) { telemetry.Event("scene_open", nil) },
			func(err error) { l.Warn("open rejected", slog.Any("err", err)) },
		)
		if err != nil {
			l.Warn("open not started", slog.Any("err", err))
		}
	}

	shapeCount := 0
	addShape := func(typ string) {
		shapeCount++
		eng.UpsertElement(scene.Element{
			ID:          fmt.Sprintf("el-%d-%d", time.Now().UnixNano(), shapeCount),
			Type:        typ,
			X:           float64(40 + 20*(shapeCount%10)),
			Y:           float64(40 + 20*(shapeCount%10)),
			Width:       120,
			Height:      80,
			StrokeColor: "#1e1e1e",
		})
	}

	toolbar := container.NewHBox(
		widget.NewButton("Open", doOpen),
		widget.NewButton("Save", doSave),
		widget.NewButton("Save As", doSaveAs),
		widget.NewSeparator(),
		widget.NewButton("Rectangle", func() { addShape(scene.TypeRectangle) }),
		widget.NewButton("Ellipse", func() { addShape(scene.TypeEllipse) }),
		widget.NewSeparator(),
		widget.NewButton("Undo", func() { eng.Undo() }),
		widget.NewButton("Redo", func() { eng.Redo() }),
		widget.NewButton("Clear", func() { eng.TombstoneAll() }),
		widget.NewSeparator(),
		widget.NewButton("PNG", func() {
			u, err := export.PNGDataURL(eng.Scene(), export.PNGOptions{Scale: 2})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			_ = adapter.ExportPNG(u)
		}),
		widget.NewButton("SVG", func() {
			u, err := export.SVGDataURL(eng.Scene(), export.SVGOptions{})
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			_ = adapter.ExportSVG(u)
		}),
		widget.NewButton("PDF", func() {
			_ = host.exportTo(".pdf", func(path string) error {
				return export.ExportScenePDF(eng.Scene(), path, export.PDFOptions{Title: coord.DisplayName()})
			})
		}),
	)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, container.NewScroll(sceneBox)))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	eng.Mount()
	if scenePath != "" {
		data, recovered, err := storage.ReadSceneFile(scenePath)
		if err != nil {
			dialog.ShowError(err, w)
		} else {
			if recovered {
				l.Warn("scene restored from backup", slog.String("path", scenePath))
			}
			host.currentPath = scenePath
			prefs.SetString(prefLastScenePath, scenePath)
			coord.HandleSceneLoaded(string(data), filepath.Base(scenePath))
		}
	} else {
		coord.Hydrate(ctx)
	}
	refreshTitle()

	w.ShowAndRun()
	return nil
}

// renderScene rebuilds the canvas objects from the scene. Rendering is
// intentionally primitive: the shell exists to drive the session round-trips,
// not to compete with the embedded web canvas.
func renderScene(box *fyne.Container, s scene.Scene) {
	box.Objects = nil
	for _, el := range s.Elements {
		if el.IsDeleted {
			continue
		}
		obj := elementObject(el)
		if obj == nil {
			continue
		}
		obj.Move(fyne.NewPos(float32(el.X), float32(el.Y)))
		obj.Resize(fyne.NewSize(float32(el.Width), float32(el.Height)))
		box.Add(obj)
	}
	box.Refresh()
}

func elementObject(el scene.Element) fyne.CanvasObject {
	strokeCol := parseColor(el.StrokeColor, color.NRGBA{A: 255})
	fillCol := parseColor(el.BackgroundColor, color.NRGBA{})
	switch el.Type {
	case scene.TypeEllipse:
		c := canvas.NewCircle(fillCol)
		c.StrokeColor = strokeCol
		c.StrokeWidth = strokeWidth(el)
		return c
	case scene.TypeLine, scene.TypeArrow:
		ln := canvas.NewLine(strokeCol)
		ln.StrokeWidth = strokeWidth(el)
		return ln
	case scene.TypeText:
		t := canvas.NewText(el.Text, strokeCol)
		return t
	default:
		r := canvas.NewRectangle(fillCol)
		r.StrokeColor = strokeCol
		r.StrokeWidth = strokeWidth(el)
		return r
	}
}

func strokeWidth(el scene.Element) float32 {
	if el.StrokeWidth > 0 {
		return float32(el.StrokeWidth)
	}
	return 1
}

func parseColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return fallback
	}
	var v uint64
	if _, err := fmt.Sscanf(s[:6], "%06x", &v); err != nil {
		return fallback
	}
	c := color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
	if len(s) == 8 {
		var a uint64
		if _, err := fmt.Sscanf(s[6:8], "%02x", &a); err == nil {
			c.A = uint8(a)
		}
	}
	return c
}
