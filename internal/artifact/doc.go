// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package artifact inspects the ELF build artifacts of the pipeline: object
// files, shared libraries and executables. It provides the symbol tables
// callers bind against and the dynamic section entries the loader resolves,
// as well as the naming convention for shared library files.
package artifact
