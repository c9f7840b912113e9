// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInterpreter is returned if no interpreter is found in an ELF file.
	ErrNoInterpreter = errors.New("no interpreter in ELF file")

	// ErrNotELFFile is returned if the file does not have an ELF magic number.
	ErrNotELFFile = errors.New("is not an ELF file")

	// ErrOSABINotSupported is returned if the OS ABI of an ELF file is not
	// supported.
	ErrOSABINotSupported = errors.New("OSABI not supported")

	// ErrMachineNotSupported is returned if the machine type of an ELF file
	// is not supported.
	ErrMachineNotSupported = errors.New("machine type not supported")

	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrArchNotSupported is returned if the requested architecture is not
	// supported for the requested operation.
	ErrArchNotSupported = errors.New("architecture not supported")

	// ErrNotRegularFile is returned if a path does not point to a regular
	// file.
	ErrNotRegularFile = errors.New("not a regular file")
)

// LDDExecError is returned if the "ldd" executable failed.
type LDDExecError struct {
	Err    error
	Stderr string
}

func (e *LDDExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ldd: %v", e.Err)
	}

	return fmt.Sprintf("ldd: %v: %s", e.Err, e.Stderr)
}

func (*LDDExecError) Is(other error) bool {
	_, ok := other.(*LDDExecError)
	return ok
}

func (e *LDDExecError) Unwrap() error {
	return e.Err
}
