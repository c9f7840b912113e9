// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/aibor/shlib/internal/exitcode"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func handleError(err error) int {
	if err == nil {
		return 0
	}

	exitCode, _ := exitcode.From(err)

	// Do not print the error in case the program ran and reported its
	// failure on its own.
	if !errors.Is(err, exitcode.Error(0)) {
		slog.Error(err.Error())
	}

	return exitCode
}

// Run is the main entry point for the CLI command.
//
// The returned exit code is 0 on success, the loader's exit code if a
// required shared library is not found, the program's exit code if a
// program run exits non-zero, and -1 for any other error.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return handleError(err)
	}

	err = newApp(cfg).RunContext(ctx, args)

	return handleError(err)
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok || buildInfo.Main.Version == "" {
		return "(devel)"
	}

	return buildInfo.Main.Version
}
