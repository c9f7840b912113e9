// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aibor/shlib/internal/artifact"
	"github.com/aibor/shlib/internal/loader"
	"github.com/aibor/shlib/internal/sys"
	"github.com/urfave/cli/v2"
)

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Usage:     "list the symbols of object files, libraries and executables",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dynamic",
				Usage: "list the dynamic instead of the static symbol table",
			},
			&cli.BoolFlag{
				Name:  "undefined",
				Usage: "list undefined symbols only",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 1, -1)
			if err != nil {
				return err
			}

			for _, path := range c.Args().Slice() {
				art, err := artifact.Open(path)
				if err != nil {
					return err //nolint:wrapcheck
				}

				if c.NArg() > 1 {
					fmt.Fprintf(c.App.Writer, "\n%s:\n", path)
				}

				symbols := art.Symbols
				if c.Bool("dynamic") {
					symbols = art.Dynamic
				}

				printSymbols(c.App.Writer, symbols, c.Bool("undefined"))
			}

			return nil
		},
	}
}

func printSymbols(w io.Writer, symbols []artifact.Symbol, undefinedOnly bool) {
	for _, sym := range symbols {
		if undefinedOnly && sym.Defined {
			continue
		}

		fmt.Fprintln(w, sym.String())
	}
}

func neededCommand() *cli.Command {
	var runPath sys.SearchPath

	return &cli.Command{
		Name:      "needed",
		Usage:     "resolve the shared libraries a file requires at run time",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "runpath",
				Usage: "run-time search `DIR`s, like " + sys.LibraryPathEnv,
				Value: &runPath,
			},
			&cli.BoolFlag{
				Name:  "ldd",
				Usage: "ask the system's ldd instead of resolving in process",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 1, 1)
			if err != nil {
				return err
			}

			path := c.Args().First()

			if c.Bool("ldd") {
				return lddNeeded(c, path, runPath)
			}

			resolver, err := loader.NewResolver(runPath)
			if err != nil {
				return err //nolint:wrapcheck
			}

			resolution, err := resolver.Resolve(path)

			for _, lib := range resolution.Libraries {
				fmt.Fprintf(c.App.Writer, "\t%s => %s (%s)\n", lib.Name, lib.Path, lib.Source)
			}

			if err != nil {
				return err //nolint:wrapcheck
			}

			return nil
		},
	}
}

func lddNeeded(c *cli.Context, path string, runPath sys.SearchPath) error {
	collection, err := sys.CollectLibsFor(c.Context, runPath, path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	for lib := range collection.Libs() {
		fmt.Fprintf(c.App.Writer, "\t%s\n", lib)
	}

	slog.Debug("Library directories",
		slog.Any("dirs", slices.Collect(collection.SearchPaths())))

	missing := slices.Collect(collection.Missing())
	if len(missing) > 0 {
		return &loader.LibraryNotFoundError{Name: missing[0], RequiredBy: path}
	}

	return nil
}
