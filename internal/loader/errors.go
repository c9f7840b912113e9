// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"errors"
	"fmt"

	"github.com/aibor/shlib/internal/exitcode"
)

var (
	// ErrSymbolNotFound is returned if a symbol is not found in a library
	// loaded into the current process.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrLibraryClosed is returned when using a closed [Handle].
	ErrLibraryClosed = errors.New("library closed")
)

// LibraryNotFoundError is returned if a required shared library is not found
// in any directory of the run-time search order. The program is not started.
type LibraryNotFoundError struct {
	// Name is the library name as required, like "libtutorial.so".
	Name string
	// RequiredBy is the path of the object requiring the library. It is
	// empty if the failure was reported by the system's loader.
	RequiredBy string
}

func (e *LibraryNotFoundError) Error() string {
	return fmt.Sprintf(
		"error while loading shared libraries: %s: "+
			"cannot open shared object file: No such file or directory",
		e.Name,
	)
}

func (*LibraryNotFoundError) Is(other error) bool {
	_, ok := other.(*LibraryNotFoundError)
	return ok
}

// Code returns the exit code the dynamic loader exits with.
func (*LibraryNotFoundError) Code() int {
	return exitcode.LoaderFailure
}

// DLError is returned if the system's dlopen interface fails.
type DLError struct {
	Op   string
	Name string
	Err  error
}

func (e *DLError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (*DLError) Is(other error) bool {
	_, ok := other.(*DLError)
	return ok
}

func (e *DLError) Unwrap() error {
	return e.Err
}
