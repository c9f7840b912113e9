// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package project

import (
	"embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"
)

// CMakeFile is the file name CMake reads the project from.
const CMakeFile = "CMakeLists.txt"

//go:embed templates/*.tmpl
var templateFS embed.FS

var cmakeTemplate = template.Must(
	template.New("CMakeLists.txt.tmpl").
		Funcs(template.FuncMap{
			"keyword": func(v Visibility) string {
				return strings.ToUpper(string(v))
			},
			"links": func(t *Target) []string {
				return slices.Concat(t.Links, t.SystemLibraries)
			},
			"rpath": renderRunPath,
		}).
		ParseFS(templateFS, "templates/CMakeLists.txt.tmpl"),
)

// CMake expands "${ORIGIN}" as a variable, so only the plain form reaches
// the loader.
func renderRunPath(dirs []string) string {
	normalized := make([]string, len(dirs))
	for idx, dir := range dirs {
		normalized[idx] = strings.ReplaceAll(dir, "${ORIGIN}", "$ORIGIN")
	}

	return strings.Join(normalized, ";")
}

type cmakeData struct {
	Project string
	Version string
	Targets []*Target
	Install Install
}

// RenderCMake writes the CMakeLists.txt equivalent to the description. The
// targets are written in build order.
func (d *Description) RenderCMake(w io.Writer) error {
	targets, err := d.Order()
	if err != nil {
		return err
	}

	err = cmakeTemplate.Execute(w, cmakeData{
		Project: d.Project,
		Version: d.Version,
		Targets: targets,
		Install: d.Install,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", CMakeFile, err)
	}

	return nil
}
