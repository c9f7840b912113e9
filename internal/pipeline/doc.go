// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pipeline chains the build and load stages: building all targets of
// a build description and replaying the shared library tutorial end to end.
package pipeline
