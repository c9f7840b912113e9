// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/linker"
	"github.com/aibor/shlib/internal/sys"
	"golang.org/x/sync/errgroup"
)

// CompilerEnv is the environment variable the default compiler is read from.
const CompilerEnv = "CC"

const defaultCompiler = "cc"

// Result is the result of a successful compiler invocation.
type Result struct {
	Output      string
	Diagnostics []Diagnostic
}

// Warnings returns all warning diagnostics.
func (r Result) Warnings() []Diagnostic {
	return filterSeverity(r.Diagnostics, SeverityWarning)
}

// SharedResult is the result of [Compiler.BuildShared].
type SharedResult struct {
	Result

	Library *artifact.Artifact
}

// Exported returns the symbols the built library exports.
func (r SharedResult) Exported() []artifact.Symbol {
	return r.Library.Exported()
}

// LinkResult is the result of [Compiler.Link].
type LinkResult struct {
	Result

	Check linker.Result
}

// Compiler drives the C compiler for all build stages.
type Compiler struct {
	// Executable is the absolute path of the compiler driver.
	Executable string
	// Flags are passed to every invocation.
	Flags []string
	// DefaultDirs are the system library directories implicit libraries are
	// looked up in for link checks.
	DefaultDirs sys.SearchPath
}

// NewCompiler returns a [Compiler] for the given command. The command may
// carry flags, like "gcc -m64". If command is empty, the value of
// [CompilerEnv] is used and "cc" if that is empty as well.
func NewCompiler(command string) (*Compiler, error) {
	if command == "" {
		command = os.Getenv(CompilerEnv)
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{defaultCompiler}
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCompiler, err)
	}

	defaultDirs, err := sys.DefaultLibraryDirs(os.DirFS("/"), sys.Native)
	if err != nil {
		return nil, fmt.Errorf("default library dirs: %w", err)
	}

	return &Compiler{
		Executable:  path,
		Flags:       fields[1:],
		DefaultDirs: defaultDirs,
	}, nil
}

// Compile runs the compiler for the given spec. Warnings do not fail the
// compilation, they are returned with the [Result].
func (c *Compiler) Compile(ctx context.Context, spec CompileSpec) (Result, error) {
	err := spec.validate()
	if err != nil {
		return Result{}, err
	}

	return c.run(ctx, "compile", spec.Output, spec.args())
}

// CompileAll compiles all given specs concurrently. Each spec is an
// independent invocation. The results are in the order of the specs. The
// first error cancels all other invocations.
func (c *Compiler) CompileAll(ctx context.Context, specs []CompileSpec) ([]Result, error) {
	results := make([]Result, len(specs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for idx, spec := range specs {
		group.Go(func() error {
			result, err := c.Compile(ctx, spec)
			if err != nil {
				return fmt.Errorf("%s: %w", strings.Join(spec.Sources, " "), err)
			}

			results[idx] = result

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return results, nil
}

// BuildShared links the given position independent objects to a shared
// library named by convention.
func (c *Compiler) BuildShared(ctx context.Context, spec SharedSpec) (SharedResult, error) {
	err := artifact.ValidateLibraryName(spec.Name)
	if err != nil {
		return SharedResult{}, err
	}

	if len(spec.Objects) == 0 {
		return SharedResult{}, ErrNoSources
	}

	fileName := artifact.LibraryFileName(spec.Name)
	output := filepath.Join(spec.OutputDir, fileName)

	soName := spec.SoName
	if soName == "" {
		soName = fileName
	}

	args := []string{"-shared", "-o", output}
	args = append(args, spec.Objects...)
	args = append(args, "-Wl,-soname,"+soName)

	for _, dir := range spec.LibraryDirs {
		args = append(args, "-L"+dir)
	}

	for _, lib := range spec.Libraries {
		args = append(args, "-l"+lib)
	}

	result, err := c.run(ctx, "shared library", output, args)
	if err != nil {
		return SharedResult{}, err
	}

	lib, err := artifact.Open(output)
	if err != nil {
		return SharedResult{}, fmt.Errorf("inspect shared library: %w", err)
	}

	if lib.Kind != artifact.KindShared {
		return SharedResult{}, fmt.Errorf("%s: %w", output, linker.ErrNotSharedLibrary)
	}

	return SharedResult{Result: result, Library: lib}, nil
}

// Link links the given caller objects against the named libraries to an
// executable.
//
// Before the linker is invoked, the symbol resolution is checked with
// [linker.Check]. Symbols the check reports missing are confirmed by the
// linker, as static helper libraries like libgcc are not inspected. Undefined
// references the linker reports are returned as
// [linker.UnresolvedSymbolError].
func (c *Compiler) Link(ctx context.Context, spec LinkSpec) (LinkResult, error) {
	if spec.Output == "" {
		return LinkResult{}, ErrNoOutput
	}

	check, err := linker.Check(linker.Spec{
		Objects:     spec.Objects,
		Libraries:   spec.Libraries,
		LibraryDirs: spec.LibraryDirs,
		Implicit:    linker.DefaultImplicitLibraries,
		DefaultDirs: c.DefaultDirs,
	})

	var unresolvedErr *linker.UnresolvedSymbolError
	if err != nil && !errors.As(err, &unresolvedErr) {
		return LinkResult{Check: check}, err //nolint:wrapcheck
	}

	if len(check.Missing) > 0 {
		slog.Debug("Possibly unresolved symbols, deferring to linker",
			slog.Any("symbols", check.Missing),
			slog.Bool("authoritative", check.Authoritative))
	}

	result, err := c.run(ctx, "link", spec.Output, spec.args())
	if err != nil {
		var compileErr *CompileError
		if errors.As(err, &compileErr) {
			if refs := ParseUndefinedReferences(compileErr.Output); len(refs) > 0 {
				return LinkResult{Check: check}, &linker.UnresolvedSymbolError{Symbols: refs}
			}
		}

		if unresolvedErr != nil {
			return LinkResult{Check: check}, unresolvedErr
		}

		return LinkResult{Check: check}, err
	}

	return LinkResult{Result: result, Check: check}, nil
}

func (c *Compiler) run(
	ctx context.Context,
	stage string,
	output string,
	args []string,
) (Result, error) {
	var outBuf bytes.Buffer

	args = append(append([]string{}, c.Flags...), args...)

	cmd := exec.CommandContext(ctx, c.Executable, args...)
	// Force plain ASCII quoting in diagnostics.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	cmd.Stdout = &outBuf
	cmd.Stderr = &outBuf

	slog.Debug("Run compiler",
		slog.String("stage", stage),
		slog.String("command", cmd.String()))

	err := cmd.Run()
	diagnostics := ParseDiagnostics(outBuf.String())

	if err != nil {
		// Do not leave partial artifacts behind.
		_ = os.Remove(output)

		exitCode := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		return Result{}, &CompileError{
			Stage:       stage,
			ExitCode:    exitCode,
			Diagnostics: diagnostics,
			Output:      outBuf.String(),
			Err:         err,
		}
	}

	for _, d := range filterSeverity(diagnostics, SeverityWarning) {
		slog.Warn("Compiler warning",
			slog.String("stage", stage),
			slog.String("diagnostic", d.String()))
	}

	return Result{Output: output, Diagnostics: diagnostics}, nil
}
