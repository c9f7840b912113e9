// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSources is returned if a stage is invoked without inputs.
	ErrNoSources = errors.New("no input files")

	// ErrNoCompiler is returned if no compiler executable is found.
	ErrNoCompiler = errors.New("no C compiler found")

	// ErrNoOutput is returned if no output path is given.
	ErrNoOutput = errors.New("no output path")

	// ErrInvalidMode is returned for an unknown [Mode].
	ErrInvalidMode = errors.New("invalid mode")
)

// CompileError is returned if the compiler driver fails. It carries all
// diagnostics of the failed invocation.
type CompileError struct {
	Stage       string
	ExitCode    int
	Diagnostics []Diagnostic
	Output      string
	Err         error
}

func (e *CompileError) Error() string {
	errs := filterSeverity(e.Diagnostics, SeverityError, SeverityFatal)
	if len(errs) == 0 {
		msg := strings.TrimSpace(e.Output)
		if msg == "" {
			return fmt.Sprintf("%s: %v", e.Stage, e.Err)
		}

		return fmt.Sprintf("%s: %v: %s", e.Stage, e.Err, msg)
	}

	lines := make([]string, len(errs))
	for idx, d := range errs {
		lines[idx] = d.String()
	}

	return fmt.Sprintf("%s: %s", e.Stage, strings.Join(lines, "\n"))
}

func (*CompileError) Is(other error) bool {
	_, ok := other.(*CompileError)
	return ok
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
