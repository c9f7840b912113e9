// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/install"
	"github.com/aibor/shlib/internal/project"
	"github.com/aibor/shlib/internal/sys"
	"github.com/aibor/shlib/internal/toolchain"
)

// ErrNoCompiler is returned if no compiler is configured.
var ErrNoCompiler = errors.New("no compiler configured")

// Options configure [Build].
type Options struct {
	// SourceDir is the directory source paths are relative to.
	SourceDir string
	// BuildDir receives all artifacts. Libraries and executables are placed
	// directly in it, objects in a sub directory per target.
	BuildDir string
	Compiler *toolchain.Compiler
}

// TargetResult is the outcome of building a single target.
type TargetResult struct {
	Target   *project.Target
	Objects  []string
	Output   string
	Warnings []toolchain.Diagnostic
	// Exported are the symbols a library exports.
	Exported []artifact.Symbol
}

// Result is the result of [Build].
type Result struct {
	// Targets are in build order.
	Targets []TargetResult
}

// Artifacts returns the built files by target name.
func (r *Result) Artifacts() install.Artifacts {
	built := install.Artifacts{
		Libraries:   make(map[string]string),
		Executables: make(map[string]string),
	}

	for _, target := range r.Targets {
		switch target.Target.Kind {
		case project.KindLibrary:
			built.Libraries[target.Target.Name] = target.Output
		case project.KindExecutable:
			built.Executables[target.Target.Name] = target.Output
		}
	}

	return built
}

// Build builds all targets of the given description in dependency order.
// Library sources are compiled position independent and assembled into
// shared libraries. Executables are linked against the libraries they link,
// found in the build directory.
func Build(ctx context.Context, desc *project.Description, opts Options) (*Result, error) {
	if opts.Compiler == nil {
		return nil, ErrNoCompiler
	}

	buildDir, err := sys.AbsolutePath(opts.BuildDir)
	if err != nil {
		return nil, fmt.Errorf("build dir: %w", err)
	}

	sourceDir, err := sys.AbsolutePath(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("source dir: %w", err)
	}

	err = os.MkdirAll(buildDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}

	targets, err := desc.Order()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	b := &builder{
		desc:      desc,
		compiler:  opts.Compiler,
		sourceDir: sourceDir,
		buildDir:  buildDir,
	}

	result := &Result{}

	for _, target := range targets {
		targetResult, err := b.build(ctx, target)
		if err != nil {
			return result, fmt.Errorf("%s %s: %w", target.Kind, target.Name, err)
		}

		slog.Info("Built target",
			slog.String("kind", string(target.Kind)),
			slog.String("name", target.Name),
			slog.String("output", targetResult.Output))

		result.Targets = append(result.Targets, targetResult)
	}

	return result, nil
}

type builder struct {
	desc      *project.Description
	compiler  *toolchain.Compiler
	sourceDir string
	buildDir  string
}

func (b *builder) build(ctx context.Context, target *project.Target) (TargetResult, error) {
	result := TargetResult{Target: target}

	objects, warnings, err := b.compile(ctx, target)
	if err != nil {
		return result, err
	}

	result.Objects = objects
	result.Warnings = warnings

	links, err := b.desc.LinkClosure(target.Name)
	if err != nil {
		return result, err //nolint:wrapcheck
	}

	libraries := slices.Concat(links, target.SystemLibraries)

	switch target.Kind {
	case project.KindLibrary:
		shared, err := b.compiler.BuildShared(ctx, toolchain.SharedSpec{
			Name:        target.Name,
			Objects:     objects,
			OutputDir:   b.buildDir,
			Libraries:   libraries,
			LibraryDirs: sys.SearchPath{b.buildDir},
		})
		if err != nil {
			return result, err //nolint:wrapcheck
		}

		result.Output = shared.Output
		result.Exported = shared.Exported()
		result.Warnings = append(result.Warnings, shared.Warnings()...)
	case project.KindExecutable:
		linked, err := b.compiler.Link(ctx, toolchain.LinkSpec{
			Objects:     objects,
			Libraries:   libraries,
			LibraryDirs: sys.SearchPath{b.buildDir},
			RunPath:     target.RunPath,
			Output:      filepath.Join(b.buildDir, target.Name),
		})
		if err != nil {
			return result, err //nolint:wrapcheck
		}

		result.Output = linked.Output
		result.Warnings = append(result.Warnings, linked.Warnings()...)
	}

	return result, nil
}

func (b *builder) compile(
	ctx context.Context,
	target *project.Target,
) ([]string, []toolchain.Diagnostic, error) {
	includeDirs, err := b.desc.IncludeDirsFor(target.Name)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	var includePath sys.SearchPath
	for _, dir := range includeDirs {
		includePath = includePath.Append(b.sourcePath(dir))
	}

	objDir := filepath.Join(b.buildDir, "obj", target.Name)

	err = os.MkdirAll(objDir, 0o755)
	if err != nil {
		return nil, nil, fmt.Errorf("create object dir: %w", err)
	}

	specs := make([]toolchain.CompileSpec, len(target.Sources))
	for idx, source := range target.Sources {
		specs[idx] = toolchain.CompileSpec{
			Sources:     []string{b.sourcePath(source)},
			IncludeDirs: includePath,
			Defines:     target.Defines,
			Output:      filepath.Join(objDir, objectName(source)),
			PIC:         target.Kind == project.KindLibrary,
		}
	}

	results, err := b.compiler.CompileAll(ctx, specs)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	objects := make([]string, len(results))

	var warnings []toolchain.Diagnostic

	for idx, result := range results {
		objects[idx] = result.Output
		warnings = append(warnings, result.Warnings()...)
	}

	return objects, warnings, nil
}

func (b *builder) sourcePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(b.sourceDir, path)
}

// objectName derives a unique object file name from the source path.
func objectName(source string) string {
	name := strings.TrimSuffix(filepath.Clean(source), filepath.Ext(source))
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	name = strings.ReplaceAll(name, "..", "__")

	return name + ".o"
}
