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

func TestOpenELF(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		err     error
	}{
		{
			name: "empty",
			err:  sys.ErrNotELFFile,
		},
		{
			name:    "short script",
			content: []byte("#!/bin/sh\n"),
			err:     sys.ErrNotELFFile,
		},
		{
			name:    "linker script",
			content: []byte("/* GNU ld script */\nGROUP ( /lib/libm.so.6 )\n"),
			err:     sys.ErrNotELFFile,
		},
		{
			name:    "truncated header",
			content: []byte("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x03\x00"),
			err:     sys.ErrNotELFFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			_, err := sys.OpenELF(path)
			require.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := sys.OpenELF(filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, fs.ErrNotExist)
		assert.NotErrorIs(t, err, sys.ErrNotELFFile)
	})

	t.Run("executable", func(t *testing.T) {
		file, err := sys.OpenELF(os.Args[0])
		require.NoError(t, err)
		require.NoError(t, file.Close())
	})
}
