// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package toolchain drives the external C compiler for the build stages of
// the pipeline: compiling translation units to objects, assembling position
// independent objects to a shared library and linking caller objects to an
// executable.
//
// The compiler's output is parsed into [Diagnostic]s. Warnings are part of a
// successful [Result], errors fail with a [CompileError].
package toolchain
