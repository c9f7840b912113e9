// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package install

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/project"
)

const (
	libraryMode    fs.FileMode = 0o755
	executableMode fs.FileMode = 0o755
	headerMode     fs.FileMode = 0o644
)

// ErrMissingArtifact is returned if a target of the build description has
// not been built.
var ErrMissingArtifact = errors.New("missing artifact")

// Entry is a file to install.
type Entry struct {
	// Source is the path of the file to install.
	Source string
	// Path is the destination path, absolute in the install tree.
	Path string
	Mode fs.FileMode
}

// Artifacts are the built files by target name.
type Artifacts struct {
	Libraries   map[string]string
	Executables map[string]string
}

// Plan returns the entries to install for the given build description.
// Public headers are looked up relative to the source directory.
// Executables are only installed if withExecutables is set.
func Plan(
	desc *project.Description,
	built Artifacts,
	sourceDir string,
	withExecutables bool,
) ([]Entry, error) {
	var entries []Entry

	prefix := path.Clean("/" + desc.Install.Prefix)
	libDir := path.Join(prefix, desc.Install.LibDir)
	includeDir := path.Join(prefix, desc.Install.IncludeDir)
	binDir := path.Join(prefix, desc.Install.BinDir)

	for _, lib := range desc.Libraries {
		source, exists := built.Libraries[lib.Name]
		if !exists {
			return nil, fmt.Errorf("%w: library %s", ErrMissingArtifact, lib.Name)
		}

		entries = append(entries, Entry{
			Source: source,
			Path:   path.Join(libDir, artifact.LibraryFileName(lib.Name)),
			Mode:   libraryMode,
		})

		if lib.PublicHeader != "" {
			entries = append(entries, Entry{
				Source: filepath.Join(sourceDir, lib.PublicHeader),
				Path:   path.Join(includeDir, path.Base(lib.PublicHeader)),
				Mode:   headerMode,
			})
		}
	}

	if withExecutables {
		for _, exe := range desc.Executables {
			source, exists := built.Executables[exe.Name]
			if !exists {
				return nil, fmt.Errorf("%w: executable %s", ErrMissingArtifact, exe.Name)
			}

			entries = append(entries, Entry{
				Source: source,
				Path:   path.Join(binDir, exe.Name),
				Mode:   executableMode,
			})
		}
	}

	return entries, nil
}

// dirs returns all parent directories of the given entries, parents first.
func dirs(entries []Entry) []string {
	var result []string

	for _, entry := range entries {
		for dir := path.Dir(entry.Path); dir != "/" && dir != "."; dir = path.Dir(dir) {
			if !slices.Contains(result, dir) {
				result = append(result, dir)
			}
		}
	}

	slices.SortFunc(result, func(a, b string) int {
		if diff := strings.Count(a, "/") - strings.Count(b, "/"); diff != 0 {
			return diff
		}

		return strings.Compare(a, b)
	})

	return result
}
