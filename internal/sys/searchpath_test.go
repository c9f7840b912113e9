// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/shlib/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected sys.SearchPath
	}{
		{
			name: "empty",
		},
		{
			name:     "single",
			input:    "/usr/lib",
			expected: sys.SearchPath{"/usr/lib"},
		},
		{
			name:     "ordered",
			input:    "/opt/lib:/usr/lib",
			expected: sys.SearchPath{"/opt/lib", "/usr/lib"},
		},
		{
			name:     "empty elements and duplicates",
			input:    ":/opt/lib::/usr/lib/:/opt/lib",
			expected: sys.SearchPath{"/opt/lib", "/usr/lib"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sys.ParseSearchPath(tt.input))
		})
	}
}

func TestSearchPath_Set(t *testing.T) {
	var path sys.SearchPath

	require.NoError(t, path.Set("/a:/b"))
	require.NoError(t, path.Set("/c"))
	assert.Equal(t, "/a:/b:/c", path.String())

	require.NoError(t, path.Set(""))
	assert.Empty(t, path)
}

func TestSearchPath_Lookup(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	libName := "libtutorial.so"
	require.NoError(t, os.WriteFile(filepath.Join(second, libName), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(first, "libdir.so"), 0o755))

	t.Run("found in later directory", func(t *testing.T) {
		actual, err := sys.SearchPath{first, second}.Lookup(libName)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(second, libName), actual)
	})

	t.Run("first wins", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(first, "libother.so"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(second, "libother.so"), nil, 0o644))

		actual, err := sys.SearchPath{first, second}.Lookup("libother.so")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(first, "libother.so"), actual)
	})

	t.Run("directories are skipped", func(t *testing.T) {
		_, err := sys.SearchPath{first}.Lookup("libdir.so")
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("not in list", func(t *testing.T) {
		_, err := sys.SearchPath{first}.Lookup(libName)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := sys.SearchPath(nil).Lookup(libName)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestSearchPath_Absolute(t *testing.T) {
	actual, err := sys.SearchPath{"build", "/usr/lib"}.Absolute()
	require.NoError(t, err)

	assert.Equal(t, sys.SearchPath{
		sys.MustAbsolutePath("build"),
		"/usr/lib",
	}, actual)
}
