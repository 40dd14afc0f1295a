/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gosketchpad/internal/backend"
	"gosketchpad/internal/crash"
	"gosketchpad/internal/export"
	applog "gosketchpad/internal/log"
	"gosketchpad/internal/scene"
	"gosketchpad/internal/storage"
	"gosketchpad/internal/ui"
	"gosketchpad/internal/version"
)

func usage() {
	fmt.Println("GoSketchpad — scene drawing workspace")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gosketchpad version|-v|--version           Show version")
	fmt.Println("  gosketchpad ui [<sceneFile>]                Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  gosketchpad serve                           Run the sync backend server")
	fmt.Println("  gosketchpad inspect <sceneFile>             Validate a scene file and print a summary")
	fmt.Println("  gosketchpad export <sceneFile> <out>        Export a scene to .png, .svg or .pdf")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(nil) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("GoSketchpad — scene drawing workspace")
			fmt.Println(version.String())
			return
		case "ui":
			var sceneFile string
			if len(args) >= 3 {
				sceneFile = args[2]
			}
			if err := ui.Run(sceneFile); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "serve":
			l.Info("starting backend server")
			if err := backend.Start(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "inspect":
			if len(args) < 3 {
				fmt.Println("inspect requires <sceneFile>")
				usage()
				os.Exit(2)
			}
			if err := inspect(args[2]); err != nil {
				l.Error("inspect failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <sceneFile> and <out>")
				usage()
				os.Exit(2)
			}
			if err := exportScene(args[2], args[3]); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func inspect(path string) error {
	abs, _ := filepath.Abs(path)
	data, recovered, err := storage.ReadSceneFile(abs)
	if err != nil {
		return err
	}
	s, err := scene.Parse(data)
	if err != nil {
		return err
	}
	if recovered {
		fmt.Println("Note: the primary file was unreadable; contents recovered from backup.")
	}
	fmt.Println("File:", abs)
	fmt.Printf("Elements: %d (%d visible)\n", len(s.Elements), scene.NonDeletedCount(s.Elements))
	if s.AppState.Name != "" {
		fmt.Println("Scene name:", s.AppState.Name)
	}
	fmt.Println("Signature:", scene.SignatureOf(s))
	return nil
}

func exportScene(path, out string) error {
	data, _, err := storage.ReadSceneFile(path)
	if err != nil {
		return err
	}
	s, err := scene.Parse(data)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		err = export.ExportScenePNG(s, out, export.PNGOptions{})
	case ".svg":
		err = export.ExportSceneSVG(s, out, export.SVGOptions{})
	case ".pdf":
		err = export.ExportScenePDF(s, out, export.PDFOptions{Title: s.AppState.Name})
	default:
		return fmt.Errorf("unsupported export format %q (want .png, .svg or .pdf)", filepath.Ext(out))
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported", out)
	return nil
}
