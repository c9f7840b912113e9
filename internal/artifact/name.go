// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// LibraryPrefix is the fixed file name prefix of libraries the linker's
// name based search expects.
const LibraryPrefix = "lib"

var (
	// ErrLibraryName is returned if a library name or library file name
	// does not follow the naming convention.
	ErrLibraryName = errors.New("invalid library name")

	libraryNameRegexp = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_+.-]*$`)
)

// SharedSuffix returns the dynamic library file suffix of the given
// operating system.
func SharedSuffix(goos string) string {
	switch goos {
	case "darwin", "ios":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// ValidateLibraryName checks that the given name can be used as library name,
// that is the part between prefix and suffix. It must not contain the prefix
// or suffix itself.
func ValidateLibraryName(name string) error {
	if !libraryNameRegexp.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrLibraryName, name)
	}

	if strings.HasSuffix(name, SharedSuffix(runtime.GOOS)) {
		return fmt.Errorf("%w: %q must not have a suffix", ErrLibraryName, name)
	}

	return nil
}

// LibraryFileName returns the shared library file name for the given library
// name on the host platform, like "libtutorial.so" for "tutorial".
func LibraryFileName(name string) string {
	return LibraryPrefix + name + SharedSuffix(runtime.GOOS)
}

// ParseLibraryFileName returns the library name of the given shared library
// file name, like "tutorial" for "libtutorial.so" or "libtutorial.so.1".
// Directories are ignored.
func ParseLibraryFileName(file string) (string, error) {
	base := filepath.Base(file)
	suffix := SharedSuffix(runtime.GOOS)

	rest, ok := strings.CutPrefix(base, LibraryPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q lacks prefix %q", ErrLibraryName, base, LibraryPrefix)
	}

	// Versioned names like "libtutorial.so.1.2".
	if idx := strings.Index(rest, suffix+"."); idx > 0 {
		rest = rest[:idx+len(suffix)]
	}

	name, ok := strings.CutSuffix(rest, suffix)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q lacks suffix %q", ErrLibraryName, base, suffix)
	}

	return name, nil
}
