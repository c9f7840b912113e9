// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"

	"github.com/aibor/shlib/internal/loader"
	"github.com/aibor/shlib/internal/sys"
	"github.com/aibor/shlib/internal/tutorial"
	"github.com/urfave/cli/v2"
)

func runCommand() *cli.Command {
	var runPath sys.SearchPath

	return &cli.Command{
		Name:      "run",
		Usage:     "resolve the required shared libraries and run an executable",
		ArgsUsage: "EXECUTABLE [ARG...]",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "runpath",
				Usage: "run-time search `DIR`s, like " + sys.LibraryPathEnv,
				Value: &runPath,
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 1, -1)
			if err != nil {
				return err
			}

			return loader.Run(c.Context, loader.RunSpec{ //nolint:wrapcheck
				Executable: c.Args().First(),
				Args:       c.Args().Tail(),
				SearchPath: runPath,
				Stdin:      c.App.Reader,
				Stdout:     c.App.Writer,
				Stderr:     c.App.ErrWriter,
			})
		},
	}
}

func dlcallCommand() *cli.Command {
	return &cli.Command{
		Name: "dlcall",
		Usage: "load a shared library into this process and call a " +
			"\"void f(const char *)\" function, which writes to the process' stdout",
		ArgsUsage: "[MESSAGE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "lib",
				Usage: "library `PATH`, names without slash are searched by the system",
			},
			&cli.StringFlag{
				Name:  "symbol",
				Usage: "function `NAME`",
				Value: tutorial.PrintSymbol,
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireFlag(c, "lib")
			if err != nil {
				return err
			}

			err = requireArgs(c, 0, 1)
			if err != nil {
				return err
			}

			message := tutorial.DefaultMessage
			if c.NArg() > 0 {
				message = c.Args().First()
			}

			handle, err := loader.Open(c.String("lib"))
			if err != nil {
				return err //nolint:wrapcheck
			}

			err = handle.CallPrint(c.String("symbol"), message)

			return errors.Join(err, handle.Close())
		},
	}
}
