// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package linker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLibraryNotFound is returned if no library file for a library name is
	// found in the library search path list.
	ErrLibraryNotFound = errors.New("cannot find library")

	// ErrNotObject is returned if a caller artifact is not a relocatable
	// object.
	ErrNotObject = errors.New("not a relocatable object")

	// ErrNotSharedLibrary is returned if a library file is not a shared
	// library.
	ErrNotSharedLibrary = errors.New("not a shared library")

	// ErrNoObjects is returned if no caller objects are given.
	ErrNoObjects = errors.New("no objects given")
)

// UnresolvedSymbolError is returned if symbols the caller objects reference
// are not defined by any of the given artifacts. It is fatal for the link
// stage.
type UnresolvedSymbolError struct {
	Symbols []string
}

func (e *UnresolvedSymbolError) Error() string {
	refs := make([]string, len(e.Symbols))
	for idx, sym := range e.Symbols {
		refs[idx] = "`" + sym + "'"
	}

	if len(refs) == 1 {
		return "undefined reference to " + refs[0]
	}

	return fmt.Sprintf("undefined references to %s", strings.Join(refs, ", "))
}

func (*UnresolvedSymbolError) Is(other error) bool {
	_, ok := other.(*UnresolvedSymbolError)
	return ok
}
