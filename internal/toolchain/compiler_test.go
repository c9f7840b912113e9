// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/linker"
	"github.com/aibor/shlib/internal/toolchain"
	"github.com/aibor/shlib/internal/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompiler(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := toolchain.NewCompiler("/nonexistent/cc -m64")
		require.ErrorIs(t, err, toolchain.ErrNoCompiler)
	})

	t.Run("flags", func(t *testing.T) {
		compiler, err := toolchain.NewCompiler(os.Args[0] + " -m64 -O2")
		require.NoError(t, err)

		assert.Equal(t, os.Args[0], compiler.Executable)
		assert.Equal(t, []string{"-m64", "-O2"}, compiler.Flags)
	})
}

func TestCompilerCompileObjectWithoutDeclaration(t *testing.T) {
	compiler := toolchain.RequireCompiler(t)
	dir := t.TempDir()
	require.NoError(t, tutorial.Write(dir))

	output := filepath.Join(dir, "main.o")

	result, err := compiler.Compile(t.Context(), toolchain.CompileSpec{
		Sources: []string{filepath.Join(dir, tutorial.NoHeaderSource)},
		Output:  output,
	})
	require.NoError(t, err)

	warnings := result.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].IsImplicitDeclaration(), warnings[0])
	assert.Contains(t, warnings[0].Message, tutorial.PrintSymbol)

	obj, err := artifact.Open(output)
	require.NoError(t, err)
	assert.Equal(t, artifact.KindObject, obj.Kind)

	undefined := obj.Undefined()
	names := make([]string, len(undefined))
	for idx, sym := range undefined {
		names[idx] = sym.Name
	}

	assert.Contains(t, names, tutorial.PrintSymbol)
}

func TestCompilerCompileError(t *testing.T) {
	compiler := toolchain.RequireCompiler(t)
	dir := t.TempDir()
	source := filepath.Join(dir, "broken.c")
	output := filepath.Join(dir, "broken.o")

	require.NoError(t, os.WriteFile(source, []byte("int main(void) { return 0 }\n"), 0o644))

	_, err := compiler.Compile(t.Context(), toolchain.CompileSpec{
		Sources: []string{source},
		Output:  output,
	})

	var compileErr *toolchain.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.NotZero(t, compileErr.ExitCode)
	assert.NotEmpty(t, compileErr.Diagnostics)
	assert.NoFileExists(t, output)
}

func TestCompilerPipeline(t *testing.T) {
	compiler := toolchain.RequireCompiler(t)
	srcDir := t.TempDir()
	buildDir := t.TempDir()
	require.NoError(t, tutorial.Write(srcDir))

	results, err := compiler.CompileAll(t.Context(), []toolchain.CompileSpec{
		{
			Sources:     []string{filepath.Join(srcDir, tutorial.LibrarySource)},
			IncludeDirs: []string{srcDir},
			Output:      filepath.Join(buildDir, "tutorial.o"),
			PIC:         true,
		},
		{
			Sources:     []string{filepath.Join(srcDir, tutorial.CallerSource)},
			IncludeDirs: []string{srcDir},
			Output:      filepath.Join(buildDir, "main.o"),
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		assert.Empty(t, result.Warnings())
	}

	shared, err := compiler.BuildShared(t.Context(), toolchain.SharedSpec{
		Name:      tutorial.LibraryName,
		Objects:   []string{results[0].Output},
		OutputDir: buildDir,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(buildDir, "libtutorial.so"), shared.Output)
	assert.Equal(t, "libtutorial.so", shared.Library.SoName)

	sym, found := shared.Library.Export(tutorial.PrintSymbol)
	require.True(t, found, "exported symbol")
	assert.Equal(t, 'T', sym.Marker)

	t.Run("link with library", func(t *testing.T) {
		output := filepath.Join(buildDir, "main")

		result, err := compiler.Link(t.Context(), toolchain.LinkSpec{
			Objects:     []string{results[1].Output},
			Libraries:   []string{tutorial.LibraryName},
			LibraryDirs: []string{buildDir},
			Output:      output,
		})
		require.NoError(t, err)

		exe, err := artifact.Open(result.Output)
		require.NoError(t, err)
		assert.Equal(t, artifact.KindExecutable, exe.Kind)
		assert.Contains(t, exe.Needed, "libtutorial.so")
		assert.Empty(t, exe.RunPath)
		assert.Empty(t, exe.RPath)
	})

	t.Run("link without library", func(t *testing.T) {
		output := filepath.Join(buildDir, "main-unresolved")

		_, err := compiler.Link(t.Context(), toolchain.LinkSpec{
			Objects: []string{results[1].Output},
			Output:  output,
		})

		var unresolvedErr *linker.UnresolvedSymbolError
		require.ErrorAs(t, err, &unresolvedErr)
		assert.Equal(t, []string{tutorial.PrintSymbol}, unresolvedErr.Symbols)
		assert.NoFileExists(t, output)
	})

	t.Run("link with library lacking symbol", func(t *testing.T) {
		source := filepath.Join(srcDir, "other.c")
		object := filepath.Join(buildDir, "other.o")
		output := filepath.Join(buildDir, "main-other")

		require.NoError(t, os.WriteFile(source, []byte("int other_value(void) { return 1; }\n"), 0o644))

		compiled, err := compiler.Compile(t.Context(), toolchain.CompileSpec{
			Sources: []string{source},
			Output:  object,
			PIC:     true,
		})
		require.NoError(t, err)

		_, err = compiler.BuildShared(t.Context(), toolchain.SharedSpec{
			Name:      "other",
			Objects:   []string{compiled.Output},
			OutputDir: buildDir,
		})
		require.NoError(t, err)

		result, err := compiler.Link(t.Context(), toolchain.LinkSpec{
			Objects:     []string{results[1].Output},
			Libraries:   []string{"other"},
			LibraryDirs: []string{buildDir},
			Output:      output,
		})

		var unresolvedErr *linker.UnresolvedSymbolError
		require.ErrorAs(t, err, &unresolvedErr)
		assert.Contains(t, unresolvedErr.Symbols, tutorial.PrintSymbol)
		assert.Contains(t, result.Check.Missing, tutorial.PrintSymbol)
		assert.NoFileExists(t, output)
	})

	t.Run("link with unknown library", func(t *testing.T) {
		_, err := compiler.Link(t.Context(), toolchain.LinkSpec{
			Objects:     []string{results[1].Output},
			Libraries:   []string{"nonexistent"},
			LibraryDirs: []string{buildDir},
			Output:      filepath.Join(buildDir, "main-nolib"),
		})
		require.ErrorIs(t, err, linker.ErrLibraryNotFound)
	})
}

func TestCompilerLinkRuntimeHelpers(t *testing.T) {
	if strconv.IntSize != 64 {
		t.Skip("128 bit integers need a 64 bit target")
	}

	compiler := toolchain.RequireCompiler(t)
	dir := t.TempDir()
	source := filepath.Join(dir, "divide.c")
	output := filepath.Join(dir, "divide")

	code := `__int128 divide(__int128 a, __int128 b) { return a / b; }

int main(int argc, char **argv) {
	(void)argv;
	return (int)(divide((__int128)argc * 10, 3) - 3);
}
`
	require.NoError(t, os.WriteFile(source, []byte(code), 0o644))

	compiled, err := compiler.Compile(t.Context(), toolchain.CompileSpec{
		Sources: []string{source},
		Output:  filepath.Join(dir, "divide.o"),
	})
	require.NoError(t, err)

	obj, err := artifact.Open(compiled.Output)
	require.NoError(t, err)

	var names []string
	for _, sym := range obj.Undefined() {
		names = append(names, sym.Name)
	}

	require.Contains(t, names, "__divti3")

	result, err := compiler.Link(t.Context(), toolchain.LinkSpec{
		Objects: []string{compiled.Output},
		Output:  output,
	})
	require.NoError(t, err)

	assert.Equal(t, output, result.Output)
	assert.FileExists(t, output)
}

func TestCompilerBuildSharedInvalidName(t *testing.T) {
	compiler := &toolchain.Compiler{Executable: "/nonexistent"}

	_, err := compiler.BuildShared(t.Context(), toolchain.SharedSpec{
		Name:    "libtutorial.so",
		Objects: []string{"tutorial.o"},
	})
	require.ErrorIs(t, err, artifact.ErrLibraryName)

	_, err = compiler.BuildShared(t.Context(), toolchain.SharedSpec{
		Name: "tutorial",
	})
	require.ErrorIs(t, err, toolchain.ErrNoSources)
}
