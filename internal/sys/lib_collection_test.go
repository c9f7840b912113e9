// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aibor/shlib/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectLibsFor(t *testing.T) {
	t.Run("not an ELF file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "script")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

		collection, err := sys.CollectLibsFor(t.Context(), nil, path)
		require.NoError(t, err)
		assert.Empty(t, slices.Collect(collection.Libs()))
		assert.Empty(t, slices.Collect(collection.Missing()))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := sys.CollectLibsFor(t.Context(), nil, "/nonexisting")
		require.Error(t, err)
	})

	t.Run("dynamic executable", func(t *testing.T) {
		_, err := exec.LookPath("ldd")
		if err != nil {
			t.Skip("ldd not available")
		}

		shell, err := filepath.EvalSymlinks("/bin/sh")
		require.NoError(t, err)

		collection, err := sys.CollectLibsFor(t.Context(), nil, shell)
		if err != nil {
			t.Skipf("no dynamic shell: %v", err)
		}

		libs := slices.Collect(collection.Libs())
		if len(libs) == 0 {
			t.Skip("shell is statically linked")
		}

		for _, lib := range libs {
			assert.True(t, filepath.IsAbs(lib), lib)
		}

		assert.NotEmpty(t, slices.Collect(collection.SearchPaths()))
		assert.Empty(t, slices.Collect(collection.Missing()))
	})
}
