// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tutorial provides the sources of the example shared library and
// its caller.
package tutorial

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// LibraryName is the name of the example library. Its file name is
	// "libtutorial.so".
	LibraryName = "tutorial"

	// PrintSymbol is the function the library exports.
	PrintSymbol = "tutorial_print"

	// DefaultMessage is printed by the caller if no message is given.
	DefaultMessage = "Hello, world!"

	// Source files.
	LibrarySource   = "tutorial.c"
	PublicHeader    = "tutorial.h"
	CallerSource    = "main.c"
	NoHeaderSource  = "main_noheader.c"
	BuildDescriptor = "shlib.yaml"
)

const (
	bannerHead = "=== TUTORIAL PRINT: ==="
	bannerFoot = "======================="
)

//go:embed src
var sources embed.FS

// Sources returns the file system containing all source files.
func Sources() fs.FS {
	fsys, err := fs.Sub(sources, "src")
	if err != nil {
		panic(err)
	}

	return fsys
}

// Banner returns the text the library function prints for the given message.
func Banner(message string) string {
	var b strings.Builder

	fmt.Fprintln(&b, bannerHead)
	fmt.Fprintf(&b, "Message: %s\n", message)
	fmt.Fprintln(&b, bannerFoot)

	return b.String()
}

// Write writes all source files into the given directory. The directory is
// created if it does not exist. Existing files are overwritten.
func Write(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("create source dir: %w", err)
	}

	fsys := Sources()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read sources: %w", err)
	}

	for _, entry := range entries {
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}

		err = os.WriteFile(filepath.Join(dir, entry.Name()), content, 0o644)
		if err != nil {
			return fmt.Errorf("write source: %w", err)
		}
	}

	return nil
}
