// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/aibor/shlib/internal/exitcode"
	"github.com/aibor/shlib/internal/sys"
)

// RunSpec describes running an executable.
type RunSpec struct {
	Executable string
	Args       []string
	// SearchPath is the run-time search path list. It replaces any inherited
	// [sys.LibraryPathEnv] value. An empty list means no run-time search
	// path at all.
	SearchPath sys.SearchPath
	// DefaultDirs override the system's default directories if not nil.
	DefaultDirs sys.SearchPath

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run resolves all shared libraries the executable requires and then runs
// it with the given run-time search path list.
//
// If a library cannot be resolved, the program is not started and a
// [LibraryNotFoundError] is returned. If the program exits non-zero, an
// [exitcode.Error] is returned, unless the system's dynamic loader reported
// a missing library on its own, which is returned as [LibraryNotFoundError]
// as well.
func Run(ctx context.Context, spec RunSpec) error {
	path, err := sys.AbsolutePath(spec.Executable)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = sys.CheckExecutable(path)
	if err != nil {
		return fmt.Errorf("executable: %w", err)
	}

	resolver := &Resolver{
		SearchPath:  spec.SearchPath,
		DefaultDirs: spec.DefaultDirs,
	}

	if resolver.DefaultDirs == nil {
		resolver, err = NewResolver(spec.SearchPath)
		if err != nil {
			return err
		}
	}

	_, err = resolver.Resolve(path)
	if err != nil {
		return err
	}

	return execute(ctx, path, spec)
}

func execute(ctx context.Context, path string, spec RunSpec) error {
	stdout := spec.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	stderrOut := spec.Stderr
	if stderrOut == nil {
		stderrOut = io.Discard
	}

	cmd := exec.CommandContext(ctx, path, spec.Args...)
	cmd.Env = sys.EnvWithSearchPath(os.Environ(), spec.SearchPath)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	slog.Debug("Run executable",
		slog.String("command", cmd.String()),
		slog.String(sys.LibraryPathEnv, spec.SearchPath.String()))

	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	missing, parseErr := parseStderr(stderr, stderrOut)
	if parseErr != nil {
		// Keep the program from blocking on a full pipe.
		_, _ = io.Copy(io.Discard, stderr)
	}

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() < 0 {
			return fmt.Errorf("run: %w", err)
		}

		if missing != "" && exitErr.ExitCode() == exitcode.LoaderFailure {
			return &LibraryNotFoundError{Name: missing}
		}

		return exitcode.Error(exitErr.ExitCode())
	}

	if parseErr != nil {
		return fmt.Errorf("stderr: %w", parseErr)
	}

	return nil
}
