// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aibor/shlib/internal/linker"
	"github.com/aibor/shlib/internal/loader"
	"github.com/aibor/shlib/internal/sys"
	"github.com/aibor/shlib/internal/toolchain"
	"github.com/aibor/shlib/internal/tutorial"
)

// ErrUnexpectedOutcome is returned if a walkthrough step does not behave as
// the tutorial describes.
var ErrUnexpectedOutcome = errors.New("unexpected outcome")

// WalkthroughOptions configure [Walkthrough].
type WalkthroughOptions struct {
	// Dir is the working directory. Sources are written to "src", objects
	// and the library to "lib" and the executable to "bin".
	Dir string
	// Message is passed to the executable. If empty, the executable prints
	// its default message.
	Message  string
	Compiler *toolchain.Compiler
	// Out receives the report of each step.
	Out io.Writer
}

// Step is a single step of the walkthrough.
type Step struct {
	Name string
	// Details are the lines reported for the step.
	Details []string
	// Err is the error the step failed with. Some steps are expected to
	// fail.
	Err error
}

// Walkthrough replays the tutorial end to end: compiling a caller without
// the library's header, building the shared library, linking with and
// without it and running the executable with and without a run-time search
// path. Each step is reported to the configured writer as it completes.
//
// It returns [ErrUnexpectedOutcome] if a step does not behave as expected.
func Walkthrough(ctx context.Context, opts WalkthroughOptions) ([]Step, error) {
	if opts.Compiler == nil {
		return nil, ErrNoCompiler
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	w := &walker{
		compiler: opts.Compiler,
		message:  opts.Message,
		out:      out,
		srcDir:   filepath.Join(opts.Dir, "src"),
		libDir:   filepath.Join(opts.Dir, "lib"),
		binDir:   filepath.Join(opts.Dir, "bin"),
	}

	for _, dir := range []string{w.libDir, w.binDir} {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	for _, step := range []struct {
		name string
		run  func(ctx context.Context, step *Step) error
	}{
		{"Write sources", w.writeSources},
		{"Compile caller without header", w.compileWithoutHeader},
		{"Compile library object", w.compileLibrary},
		{"Build shared library", w.buildShared},
		{"Compile caller", w.compileCaller},
		{"Link without library", w.linkWithoutLibrary},
		{"Link with library", w.linkWithLibrary},
		{"Run without run-time search path", w.runWithoutSearchPath},
		{"Run with run-time search path", w.runWithSearchPath},
	} {
		current := Step{Name: step.name}

		err := step.run(ctx, &current)
		w.steps = append(w.steps, current)
		w.report(current)

		if err != nil {
			return w.steps, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return w.steps, nil
}

type walker struct {
	compiler *toolchain.Compiler
	message  string
	out      io.Writer

	srcDir string
	libDir string
	binDir string

	libObject    string
	callerObject string
	executable   string

	steps []Step
}

func (w *walker) report(step Step) {
	fmt.Fprintf(w.out, "==> %s\n", step.Name)

	for _, line := range step.Details {
		fmt.Fprintf(w.out, "    %s\n", line)
	}

	if step.Err != nil {
		fmt.Fprintf(w.out, "    error: %v\n", step.Err)
	}
}

func (w *walker) writeSources(_ context.Context, step *Step) error {
	err := tutorial.Write(w.srcDir)
	if err != nil {
		return err //nolint:wrapcheck
	}

	step.Details = append(step.Details, "sources in "+w.srcDir)

	return nil
}

func (w *walker) compileWithoutHeader(ctx context.Context, step *Step) error {
	result, err := w.compiler.Compile(ctx, toolchain.CompileSpec{
		Sources: []string{filepath.Join(w.srcDir, tutorial.NoHeaderSource)},
		Output:  filepath.Join(w.binDir, "main_noheader.o"),
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	warnings := result.Warnings()
	for _, d := range warnings {
		step.Details = append(step.Details, "warning: "+d.String())
	}

	if len(warnings) != 1 || !warnings[0].IsImplicitDeclaration() {
		return fmt.Errorf("%w: expected one implicit declaration warning, got %d warnings",
			ErrUnexpectedOutcome, len(warnings))
	}

	return nil
}

func (w *walker) compileLibrary(ctx context.Context, step *Step) error {
	result, err := w.compiler.Compile(ctx, toolchain.CompileSpec{
		Sources:     []string{filepath.Join(w.srcDir, tutorial.LibrarySource)},
		IncludeDirs: sys.SearchPath{w.srcDir},
		Output:      filepath.Join(w.libDir, "tutorial.o"),
		PIC:         true,
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	w.libObject = result.Output
	step.Details = append(step.Details, "object "+result.Output)

	return nil
}

func (w *walker) buildShared(ctx context.Context, step *Step) error {
	result, err := w.compiler.BuildShared(ctx, toolchain.SharedSpec{
		Name:      tutorial.LibraryName,
		Objects:   []string{w.libObject},
		OutputDir: w.libDir,
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	step.Details = append(step.Details, "library "+result.Output)

	for _, sym := range result.Exported() {
		step.Details = append(step.Details, sym.String())
	}

	sym, found := result.Library.Export(tutorial.PrintSymbol)
	if !found || sym.Marker != 'T' {
		return fmt.Errorf("%w: %s not exported as code", ErrUnexpectedOutcome, tutorial.PrintSymbol)
	}

	return nil
}

func (w *walker) compileCaller(ctx context.Context, step *Step) error {
	result, err := w.compiler.Compile(ctx, toolchain.CompileSpec{
		Sources:     []string{filepath.Join(w.srcDir, tutorial.CallerSource)},
		IncludeDirs: sys.SearchPath{w.srcDir},
		Output:      filepath.Join(w.binDir, "main.o"),
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	w.callerObject = result.Output
	step.Details = append(step.Details, "object "+result.Output)

	return nil
}

func (w *walker) linkWithoutLibrary(ctx context.Context, step *Step) error {
	_, err := w.compiler.Link(ctx, toolchain.LinkSpec{
		Objects: []string{w.callerObject},
		Output:  filepath.Join(w.binDir, "main-unlinked"),
	})
	step.Err = err

	var unresolvedErr *linker.UnresolvedSymbolError
	if !errors.As(err, &unresolvedErr) {
		return fmt.Errorf("%w: expected unresolved symbol, got: %w", ErrUnexpectedOutcome, err)
	}

	step.Details = append(step.Details, "expected failure")

	return nil
}

func (w *walker) linkWithLibrary(ctx context.Context, step *Step) error {
	result, err := w.compiler.Link(ctx, toolchain.LinkSpec{
		Objects:     []string{w.callerObject},
		Libraries:   []string{tutorial.LibraryName},
		LibraryDirs: sys.SearchPath{w.libDir},
		Output:      filepath.Join(w.binDir, "main"),
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	w.executable = result.Output
	step.Details = append(step.Details, "executable "+result.Output)

	for _, lib := range result.Check.Libraries {
		step.Details = append(step.Details, "links "+lib.Path)
	}

	return nil
}

func (w *walker) args() []string {
	if w.message == "" {
		return nil
	}

	return []string{w.message}
}

func (w *walker) expectedOutput() string {
	if w.message == "" {
		return tutorial.Banner(tutorial.DefaultMessage)
	}

	return tutorial.Banner(w.message)
}

func (w *walker) runWithoutSearchPath(ctx context.Context, step *Step) error {
	var stdout, stderr bytes.Buffer

	err := loader.Run(ctx, loader.RunSpec{
		Executable: w.executable,
		Args:       w.args(),
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	step.Err = err

	var notFoundErr *loader.LibraryNotFoundError
	if !errors.As(err, &notFoundErr) {
		return fmt.Errorf("%w: expected library not found, got: %w", ErrUnexpectedOutcome, err)
	}

	if stdout.Len() > 0 {
		return fmt.Errorf("%w: program produced output", ErrUnexpectedOutcome)
	}

	step.Details = append(step.Details, "expected failure")

	return nil
}

func (w *walker) runWithSearchPath(ctx context.Context, step *Step) error {
	var stdout bytes.Buffer

	searchPath := sys.SearchPath{w.libDir}

	err := loader.Run(ctx, loader.RunSpec{
		Executable: w.executable,
		Args:       w.args(),
		SearchPath: searchPath,
		Stdout:     &stdout,
		Stderr:     w.out,
	})
	if err != nil {
		step.Err = err
		return err //nolint:wrapcheck
	}

	step.Details = append(step.Details, sys.LibraryPathEnv+"="+searchPath.String())
	step.Details = append(step.Details, strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")...)

	if stdout.String() != w.expectedOutput() {
		slog.Debug("Unexpected program output", slog.String("output", stdout.String()))
		return fmt.Errorf("%w: program output differs", ErrUnexpectedOutcome)
	}

	return nil
}
