// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLdd(t *testing.T) {
	t.Run("no ldd", func(t *testing.T) {
		t.Setenv("PATH", "")
		err := runLdd(t.Context(), "/bin/sh", nil, io.Discard)
		require.ErrorIs(t, err, &LDDExecError{})
		require.ErrorIs(t, err, exec.ErrNotFound)
	})
}

func TestLdInfosParseFrom(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		paths   []string
		missing []string
	}{
		{
			name: "tutorial",
			//nolint:lll
			// $ LD_LIBRARY_PATH=build ldd build/main
			lines: []string{
				"	linux-vdso.so.1 (0x00007ffeb67ab000)",
				"	libtutorial.so => build/libtutorial.so (0x00007f772d017000)",
				"	libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x00007f772cc00000)",
				"	/lib64/ld-linux-x86-64.so.2 (0x00007f772d03a000)",
			},
			paths: []string{
				"build/libtutorial.so",
				"/lib/x86_64-linux-gnu/libc.so.6",
				"/lib64/ld-linux-x86-64.so.2",
			},
		},
		{
			name: "not found",
			//nolint:lll
			// $ ldd build/main
			lines: []string{
				"	linux-vdso.so.1 (0x00007ffeb67ab000)",
				"	libtutorial.so => not found",
				"	libc.so.6 => /usr/lib/libc.so.6 (0x00007ff161040000)",
			},
			paths: []string{
				"/usr/lib/libc.so.6",
			},
			missing: []string{
				"libtutorial.so",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			for _, line := range tt.lines {
				buf.WriteString(line)
				buf.WriteRune('\n')
			}

			var infos ldInfos

			infos.parseFrom(&buf)
			assert.Equal(t, tt.paths, infos.realPaths())
			assert.Equal(t, tt.missing, infos.missing())
		})
	}
}

func TestLdInfoParseFrom(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		path     string
		notFound bool
	}{
		{
			name: "vdso",
			line: "	linux-vdso.so.1 (0x00007fff00ddc000)",
		},
		{
			name: "regular lib",
			line: "	libtutorial.so => build/libtutorial.so (0x00007fb8)",
			path: "build/libtutorial.so",
		},
		{
			name:     "missing lib",
			line:     "	libtutorial.so => not found",
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info ldInfo

			info.parseFrom(tt.line)
			assert.Equal(t, tt.path, info.path)
			assert.Equal(t, tt.notFound, info.notFound)
		})
	}
}

func TestEnvWithSearchPath(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"LD_LIBRARY_PATH=/build/time/dir",
	}

	t.Run("replaced", func(t *testing.T) {
		actual := EnvWithSearchPath(environ, SearchPath{"/a", "/b"})
		assert.Equal(t, []string{"PATH=/usr/bin", "LD_LIBRARY_PATH=/a:/b"}, actual)
	})

	t.Run("dropped", func(t *testing.T) {
		actual := EnvWithSearchPath(environ, nil)
		assert.Equal(t, []string{"PATH=/usr/bin"}, actual)
	})
}
