// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package install places built libraries, their public headers and
// executables into their install destinations, either into a directory tree
// or into a cpio bundle.
package install
