// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for shlib. It handles
// argument merging, command dispatch, logging and exit code mapping.
package cmd
