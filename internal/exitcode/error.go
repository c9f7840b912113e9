// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package exitcode maps errors to process exit codes.
package exitcode

import (
	"errors"
	"fmt"
)

const (
	// Failure is the exit code for errors that carry no exit code.
	Failure = -1

	// LoaderFailure is the exit code the dynamic loader exits with if it
	// cannot load a program, like a missing shared library.
	LoaderFailure = 127
)

// Coder is implemented by errors that carry an exit code.
type Coder interface {
	error
	Code() int
}

// Error is an exit code that is considered an error.
type Error int

func (e Error) Error() string {
	return fmt.Sprintf("non-zero exit code: %d", e)
}

func (Error) Is(other error) bool {
	_, ok := other.(Error)
	return ok
}

// Code returns the exit code as basic int type.
func (e Error) Code() int {
	return int(e)
}

// From returns an exit code based on the given error and if the error
// carried one.
//
// If the error is nil, the exit code is 0. If the error is a [Coder], like
// [Error], the exit code is the return value of its Code method. Otherwise
// the exit code is [Failure].
func From(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.Code(), true
	}

	return Failure, false
}
