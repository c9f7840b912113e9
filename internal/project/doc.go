// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package project implements the declarative build description of a shared
// library project: which sources form the libraries and executables, which
// include directories propagate along links and where the results are
// installed.
//
// The description is read from YAML and can be rendered to an equivalent
// CMakeLists.txt.
package project
