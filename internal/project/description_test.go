// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package project_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/project"
	"github.com/aibor/shlib/internal/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTutorial(t *testing.T) *project.Description {
	t.Helper()

	file, err := tutorial.Sources().Open(tutorial.BuildDescriptor)
	require.NoError(t, err)

	t.Cleanup(func() { _ = file.Close() })

	desc, err := project.Parse(file)
	require.NoError(t, err)

	return desc
}

func TestParseTutorial(t *testing.T) {
	desc := loadTutorial(t)

	assert.Equal(t, "tutorial", desc.Project)
	assert.Equal(t, "1.0.0", desc.Version)
	assert.Equal(t, project.Install{
		Prefix:     "/usr/local",
		LibDir:     "lib",
		IncludeDir: "include",
		BinDir:     "bin",
	}, desc.Install)

	require.Len(t, desc.Libraries, 1)

	lib := desc.Libraries[0]
	assert.Equal(t, project.KindLibrary, lib.Kind)
	assert.Equal(t, tutorial.LibraryName, lib.Name)
	assert.Equal(t, []string{tutorial.LibrarySource}, lib.Sources)
	assert.Equal(t, tutorial.PublicHeader, lib.PublicHeader)
	assert.Equal(t, []project.IncludeDir{
		{Path: ".", Visibility: project.VisibilityPublic},
	}, lib.IncludeDirs)

	require.Len(t, desc.Executables, 1)

	exe := desc.Executables[0]
	assert.Equal(t, project.KindExecutable, exe.Kind)
	assert.Equal(t, "main", exe.Name)
	assert.Equal(t, []string{tutorial.LibraryName}, exe.Links)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assertErr require.ErrorAssertionFunc
	}{
		{
			name:  "empty",
			input: "",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrInvalid)
			},
		},
		{
			name:  "unknown field",
			input: "project: p\nbogus: true\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrInvalid)
			},
		},
		{
			name: "invalid visibility",
			input: "project: p\nlibraries:\n- name: a\n  sources: [a.c]\n" +
				"  includeDirs:\n  - path: .\n    visibility: global\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrInvalidVisibility)
			},
		},
		{
			name:  "missing project",
			input: "libraries:\n- name: a\n  sources: [a.c]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrInvalid)
			},
		},
		{
			name:  "library file name",
			input: "project: p\nlibraries:\n- name: liba.so\n  sources: [a.c]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, artifact.ErrLibraryName)
			},
		},
		{
			name:  "no sources",
			input: "project: p\nlibraries:\n- name: a\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrInvalid)
				assert.ErrorContains(t, err, "no sources")
			},
		},
		{
			name: "duplicate target",
			input: "project: p\nlibraries:\n- name: a\n  sources: [a.c]\n" +
				"executables:\n- name: a\n  sources: [main.c]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				assert.ErrorContains(t, err, `duplicate target "a"`)
			},
		},
		{
			name: "unknown link",
			input: "project: p\nexecutables:\n- name: main\n  sources: [main.c]\n" +
				"  links: [tutorial]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrUnknownTarget)
			},
		},
		{
			name: "link executable",
			input: "project: p\nexecutables:\n- name: main\n  sources: [main.c]\n" +
				"- name: other\n  sources: [other.c]\n  links: [main]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				assert.ErrorContains(t, err, `cannot link executable "main"`)
			},
		},
		{
			name: "public header on executable",
			input: "project: p\nexecutables:\n- name: main\n  sources: [main.c]\n" +
				"  publicHeader: main.h\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				assert.ErrorContains(t, err, "public header not supported")
			},
		},
		{
			name: "link cycle",
			input: "project: p\nlibraries:\n" +
				"- name: a\n  sources: [a.c]\n  links: [b]\n" +
				"- name: b\n  sources: [b.c]\n  links: [a]\n",
			assertErr: func(t require.TestingT, err error, _ ...any) {
				require.ErrorIs(t, err, project.ErrCycle)
			},
		},
		{
			name: "plain include dir",
			input: "project: p\nlibraries:\n- name: a\n  sources: [a.c]\n" +
				"  includeDirs: [include]\n  systemLibraries: [m]\n",
			assertErr: require.NoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := project.Parse(strings.NewReader(tt.input))
			tt.assertErr(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tutorial.Write(dir))

	desc, err := project.Load(filepath.Join(dir, project.DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, "tutorial", desc.Project)

	_, err = project.Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTarget(t *testing.T) {
	desc := loadTutorial(t)

	target, err := desc.Target("main")
	require.NoError(t, err)
	assert.Equal(t, project.KindExecutable, target.Kind)

	_, err = desc.Target("missing")
	require.ErrorIs(t, err, project.ErrUnknownTarget)
}
