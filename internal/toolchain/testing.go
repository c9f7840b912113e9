// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import "testing"

// RequireCompiler returns the default [Compiler]. The test is skipped if no
// C compiler is installed.
func RequireCompiler(tb testing.TB) *Compiler {
	tb.Helper()

	compiler, err := NewCompiler("")
	if err != nil {
		tb.Skipf("no C compiler: %v", err)
	}

	return compiler
}
