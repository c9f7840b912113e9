// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package linker implements the build-time checks of the link stage: finding
// libraries by name through the library search path list and verifying that
// every symbol the caller objects leave undefined is defined somewhere.
package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/sys"
)

// DefaultImplicitLibraries are linked by the compiler driver without being
// named, by their SONAME.
var DefaultImplicitLibraries = []string{"libc.so.6"}

// Symbols the static linker or the static parts of the C library provide
// instead of any shared library.
var linkerProvided = map[string]bool{
	"_GLOBAL_OFFSET_TABLE_":  true,
	"_DYNAMIC":               true,
	"__dso_handle":           true,
	"__ehdr_start":           true,
	"__executable_start":     true,
	"__bss_start":            true,
	"_edata":                 true,
	"_end":                   true,
	"__init_array_start":     true,
	"__init_array_end":       true,
	"__fini_array_start":     true,
	"__fini_array_end":       true,
	"__stack_chk_fail_local": true,
	"atexit":                 true,
	"at_quick_exit":          true,
	"pthread_atfork":         true,
}

// Spec describes a link of caller objects against libraries.
type Spec struct {
	// Objects are the caller object artifacts.
	Objects []string
	// Libraries are library names as passed with "-l", like "tutorial".
	Libraries []string
	// LibraryDirs is the link-time library search path list.
	LibraryDirs sys.SearchPath
	// Implicit are libraries linked without being named, by SONAME.
	Implicit []string
	// DefaultDirs are searched after LibraryDirs, like the linker does.
	DefaultDirs sys.SearchPath
}

// Library is a library resolved by the link stage.
type Library struct {
	Name     string
	Path     string
	Artifact *artifact.Artifact
}

// Result is the result of [Check].
type Result struct {
	Libraries []Library
	Implicit  []Library
	// Missing are the names of all undefined symbols not defined by any
	// object or library.
	Missing []string
	// Authoritative is false if an implicit library could not be inspected.
	// The check then cannot rule out that the missing symbols are resolved
	// by the real linker.
	Authoritative bool
}

// FindLibrary resolves the library name to the first matching library file
// in the given search path list.
func FindLibrary(name string, dirs sys.SearchPath) (string, error) {
	err := artifact.ValidateLibraryName(name)
	if err != nil {
		return "", err
	}

	fileName := artifact.LibraryFileName(name)

	path, err := dirs.Lookup(fileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w -l%s (%s)", ErrLibraryNotFound, name, fileName)
		}

		return "", err
	}

	return path, nil
}

// Check verifies that every non-weak symbol the objects of the given spec
// reference is defined by one of the objects, one of the named libraries or
// one of the implicit libraries.
//
// It returns an [UnresolvedSymbolError] if symbols are missing and the
// result is authoritative. The [Result] is returned in any case.
func Check(spec Spec) (Result, error) {
	result := Result{Authoritative: true}

	if len(spec.Objects) == 0 {
		return result, ErrNoObjects
	}

	defined := make(map[string]bool)

	var undefined []string

	for _, path := range spec.Objects {
		obj, err := artifact.Open(path)
		if err != nil {
			return result, err
		}

		if obj.Kind != artifact.KindObject {
			return result, fmt.Errorf("%s: %w: %s", path, ErrNotObject, obj.Kind)
		}

		for _, sym := range obj.Defined() {
			defined[sym.Name] = true
		}

		for _, sym := range obj.Undefined() {
			if !sym.IsWeak() {
				undefined = append(undefined, sym.Name)
			}
		}
	}

	searchDirs := slices.Concat(spec.LibraryDirs, spec.DefaultDirs)

	for _, name := range spec.Libraries {
		lib, err := openLibrary(name, searchDirs)
		if err != nil {
			// Linker scripts, like libm.so of glibc, are left to the linker.
			if errors.Is(err, sys.ErrNotELFFile) {
				slog.Debug("Library not inspectable",
					slog.String("library", name),
					slog.Any("error", err))

				result.Authoritative = false

				continue
			}

			return result, err
		}

		addExports(defined, lib.Artifact)
		result.Libraries = append(result.Libraries, lib)
	}

	for _, soName := range spec.Implicit {
		lib, err := openImplicit(soName, searchDirs)
		if err != nil {
			slog.Debug("Implicit library not inspectable",
				slog.String("library", soName),
				slog.Any("error", err))

			result.Authoritative = false

			continue
		}

		addExports(defined, lib.Artifact)
		result.Implicit = append(result.Implicit, lib)
	}

	for _, name := range undefined {
		if defined[name] || linkerProvided[name] {
			continue
		}

		if !slices.Contains(result.Missing, name) {
			result.Missing = append(result.Missing, name)
		}
	}

	slices.Sort(result.Missing)

	if len(result.Missing) > 0 && result.Authoritative {
		return result, &UnresolvedSymbolError{Symbols: result.Missing}
	}

	return result, nil
}

func openLibrary(name string, dirs sys.SearchPath) (Library, error) {
	path, err := FindLibrary(name, dirs)
	if err != nil {
		return Library{}, err
	}

	lib, err := artifact.Open(path)
	if err != nil {
		return Library{}, err
	}

	if lib.Kind != artifact.KindShared {
		return Library{}, fmt.Errorf("%s: %w: %s", path, ErrNotSharedLibrary, lib.Kind)
	}

	return Library{Name: name, Path: path, Artifact: lib}, nil
}

func openImplicit(soName string, dirs sys.SearchPath) (Library, error) {
	path, err := dirs.Lookup(soName)
	if err != nil {
		return Library{}, err //nolint:wrapcheck
	}

	lib, err := artifact.Open(path)
	if err != nil {
		return Library{}, err
	}

	return Library{Name: soName, Path: path, Artifact: lib}, nil
}

func addExports(defined map[string]bool, lib *artifact.Artifact) {
	for _, sym := range lib.Exported() {
		defined[sym.Name] = true
	}
}
