// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package project

import "errors"

var (
	// ErrInvalid is returned if a build description fails validation.
	ErrInvalid = errors.New("invalid build description")

	// ErrCycle is returned if targets link each other in a cycle.
	ErrCycle = errors.New("link cycle")

	// ErrUnknownTarget is returned for a target name that is not defined.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrInvalidVisibility is returned for an unknown [Visibility].
	ErrInvalidVisibility = errors.New("invalid visibility")
)
