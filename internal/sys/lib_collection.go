// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
)

// LibCollection is a deduplicated collection of dynamically linked libraries
// as resolved by the system's "ldd", the paths they are found at and the
// libraries that could not be found.
type LibCollection struct {
	libs        map[string]int
	searchPaths map[string]int
	missing     map[string]int
}

// Libs returns an iterator that iterates all libraries sorted by path.
func (c *LibCollection) Libs() iter.Seq[string] {
	return sortedKeys(c.libs)
}

// SearchPaths returns an iterator that iterates all search paths sorted by
// path.
func (c *LibCollection) SearchPaths() iter.Seq[string] {
	return sortedKeys(c.searchPaths)
}

// Missing returns an iterator that iterates all names of libraries that
// could not be found, sorted by name.
func (c *LibCollection) Missing() iter.Seq[string] {
	return sortedKeys(c.missing)
}

func sortedKeys(m map[string]int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range slices.Sorted(maps.Keys(m)) {
			if !yield(name) {
				return
			}
		}
	}
}

// CollectLibsFor recursively resolves the dynamically linked shared objects of
// all given ELF files.
//
// The given search path is passed to the dynamic loader as its only
// run-time search path list.
func CollectLibsFor(
	ctx context.Context,
	searchPath SearchPath,
	files ...string,
) (LibCollection, error) {
	collection := LibCollection{
		libs:        make(map[string]int),
		searchPaths: make(map[string]int),
		missing:     make(map[string]int),
	}

	for _, name := range files {
		err := collection.collectLibsFor(ctx, searchPath, name)
		if err != nil {
			return collection, fmt.Errorf("[%s]: %w", name, err)
		}
	}

	for name := range collection.libs {
		dir, _ := filepath.Split(name)

		err := collectSearchPathsFor(collection.searchPaths, dir)
		if err != nil {
			return collection, fmt.Errorf("[%s]: %w", name, err)
		}
	}

	return collection, nil
}

func (c *LibCollection) collectLibsFor(
	ctx context.Context,
	searchPath SearchPath,
	name string,
) error {
	// Ignore if it is not an ELF file or if it is statically linked (has no
	// interpreter).
	err := checkInterpreter(name)
	if err != nil {
		if errors.Is(err, ErrNotELFFile) ||
			errors.Is(err, ErrNoInterpreter) {
			slog.Debug("Skip file without interpreter", slog.String("path", name))
			return nil
		}

		return err
	}

	result, err := Ldd(ctx, name, searchPath)
	if err != nil {
		return err
	}

	for _, p := range result.Paths {
		absPath, err := AbsolutePath(p)
		if err != nil {
			return err
		}

		c.libs[absPath]++
	}

	for _, m := range result.Missing {
		c.missing[m]++
	}

	return nil
}

func collectSearchPathsFor(paths map[string]int, dir string) error {
	dir = filepath.Clean(dir)
	if dir == "" {
		return nil
	}

	paths[dir]++

	// Try if the directory has symbolic links and resolve them, so we
	// get the real path that the dynamic linker needs.
	canonicalDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolve symlinks: %w", err)
	}

	if canonicalDir != dir {
		paths[canonicalDir]++
	}

	return nil
}

func checkInterpreter(path string) error {
	file, err := OpenELF(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, prog := range file.Progs {
		if prog.Type == elf.PT_INTERP {
			return nil
		}
	}

	return fmt.Errorf("%s: %w", path, ErrNoInterpreter)
}
