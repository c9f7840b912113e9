// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tutorial_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/shlib/internal/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	expected := "=== TUTORIAL PRINT: ===\n" +
		"Message: Hello, world!\n" +
		"=======================\n"

	assert.Equal(t, expected, tutorial.Banner("Hello, world!"))
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src")

	require.NoError(t, tutorial.Write(dir))

	for _, name := range []string{
		tutorial.LibrarySource,
		tutorial.PublicHeader,
		tutorial.CallerSource,
		tutorial.NoHeaderSource,
		tutorial.BuildDescriptor,
	} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, content, name)
	}

	header, err := os.ReadFile(filepath.Join(dir, tutorial.PublicHeader))
	require.NoError(t, err)
	assert.Contains(t, string(header), tutorial.PrintSymbol)
}
