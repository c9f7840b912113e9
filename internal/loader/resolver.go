// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/sys"
)

// Source is the step of the search order a library was found by.
type Source int

const (
	SourceDirect Source = iota
	SourceRPath
	SourceSearchPath
	SourceRunPath
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceRPath:
		return "RPATH"
	case SourceSearchPath:
		return sys.LibraryPathEnv
	case SourceRunPath:
		return "RUNPATH"
	case SourceDefault:
		return "system"
	default:
		return "unknown"
	}
}

// Library is a resolved shared library.
type Library struct {
	// Name is the name as required by DT_NEEDED.
	Name string
	// Path is the path the library was found at.
	Path string
	// RequiredBy is the path of the first object requiring the library.
	RequiredBy string
	Source     Source
	Artifact   *artifact.Artifact
}

// Resolution is the result of [Resolver.Resolve].
type Resolution struct {
	Executable *artifact.Artifact
	// Libraries are all required libraries in load order.
	Libraries []Library
}

// Paths returns the paths of all resolved libraries in load order.
func (r Resolution) Paths() []string {
	paths := make([]string, len(r.Libraries))
	for idx, lib := range r.Libraries {
		paths[idx] = lib.Path
	}

	return paths
}

// Resolver resolves the shared libraries required by executables.
type Resolver struct {
	// SearchPath is the run-time search path list. It is consulted after
	// DT_RPATH and before DT_RUNPATH, like LD_LIBRARY_PATH.
	SearchPath sys.SearchPath
	// DefaultDirs are searched last.
	DefaultDirs sys.SearchPath
}

// NewResolver returns a [Resolver] for the given run-time search path list
// with the system's default directories.
func NewResolver(searchPath sys.SearchPath) (*Resolver, error) {
	defaultDirs, err := sys.DefaultLibraryDirs(os.DirFS("/"), sys.Native)
	if err != nil {
		return nil, fmt.Errorf("default library dirs: %w", err)
	}

	return &Resolver{
		SearchPath:  searchPath,
		DefaultDirs: defaultDirs,
	}, nil
}

// Resolve resolves all shared libraries required by the ELF file with the
// given path, recursively and breadth first like the dynamic loader. Each
// library is resolved once.
//
// It returns a [LibraryNotFoundError] for the first library that is not
// found. The partial [Resolution] is returned in any case.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	exe, err := artifact.Open(path)
	if err != nil {
		return Resolution{}, err //nolint:wrapcheck
	}

	resolution := Resolution{Executable: exe}
	seen := make(map[string]bool)

	// The interpreter is mapped by the kernel and already present.
	if exe.Interpreter != "" {
		seen[filepath.Base(exe.Interpreter)] = true
	}

	queue := []*artifact.Artifact{exe}

	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]

		for _, name := range obj.Needed {
			if seen[name] {
				continue
			}

			seen[name] = true

			lib, err := r.find(name, obj, exe)
			if err != nil {
				return resolution, err
			}

			slog.Debug("Resolved library",
				slog.String("name", name),
				slog.String("path", lib.Path),
				slog.String("source", lib.Source.String()))

			if lib.Artifact.SoName != "" {
				seen[lib.Artifact.SoName] = true
			}

			resolution.Libraries = append(resolution.Libraries, lib)
			queue = append(queue, lib.Artifact)
		}
	}

	return resolution, nil
}

type searchStep struct {
	source Source
	dirs   []string
}

// searchOrder returns the directories to search for libraries required by
// the given object.
func (r *Resolver) searchOrder(obj, exe *artifact.Artifact) []searchStep {
	var steps []searchStep

	// DT_RPATH is ignored if the object has DT_RUNPATH.
	if len(obj.RunPath) == 0 {
		dirs := expandOrigin(obj.RPath, obj.Path)
		if obj != exe && len(exe.RunPath) == 0 {
			dirs = append(dirs, expandOrigin(exe.RPath, exe.Path)...)
		}

		steps = append(steps, searchStep{SourceRPath, dirs})
	}

	return append(steps,
		searchStep{SourceSearchPath, r.SearchPath},
		searchStep{SourceRunPath, expandOrigin(obj.RunPath, obj.Path)},
		searchStep{SourceDefault, r.DefaultDirs},
	)
}

func (r *Resolver) find(name string, obj, exe *artifact.Artifact) (Library, error) {
	if strings.Contains(name, "/") {
		lib, err := candidate(name, exe.Header)
		if err == nil {
			return Library{
				Name:       name,
				Path:       name,
				RequiredBy: obj.Path,
				Source:     SourceDirect,
				Artifact:   lib,
			}, nil
		}

		return Library{}, &LibraryNotFoundError{Name: name, RequiredBy: obj.Path}
	}

	for _, step := range r.searchOrder(obj, exe) {
		for _, dir := range step.dirs {
			path := filepath.Join(dir, name)

			lib, err := candidate(path, exe.Header)
			if err != nil {
				continue
			}

			return Library{
				Name:       name,
				Path:       path,
				RequiredBy: obj.Path,
				Source:     step.source,
				Artifact:   lib,
			}, nil
		}
	}

	return Library{}, &LibraryNotFoundError{Name: name, RequiredBy: obj.Path}
}

var errIncompatible = errors.New("incompatible ELF file")

// candidate opens the library at the given path if it exists and can be
// loaded along with an executable with the given header.
func candidate(path string, hdr elf.FileHeader) (*artifact.Artifact, error) {
	err := sys.CheckRegularFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	lib, err := artifact.Open(path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if !sys.CompatibleELF(hdr, lib.Header) {
		slog.Debug("Skip incompatible library",
			slog.String("path", path),
			slog.String("machine", lib.Header.Machine.String()))

		return nil, fmt.Errorf("%s: %w", path, errIncompatible)
	}

	return lib, nil
}

// expandOrigin replaces the $ORIGIN token in the given directories with the
// directory of the given object.
func expandOrigin(dirs []string, objPath string) []string {
	origin := filepath.Dir(objPath)
	if abs, err := sys.AbsolutePath(origin); err == nil {
		origin = abs
	}

	expanded := make([]string, 0, len(dirs))

	for _, dir := range dirs {
		dir = strings.ReplaceAll(dir, "${ORIGIN}", origin)
		dir = strings.ReplaceAll(dir, "$ORIGIN", origin)
		expanded = append(expanded, dir)
	}

	return expanded
}
