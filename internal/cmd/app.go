// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/aibor/shlib/internal/toolchain"
	"github.com/urfave/cli/v2"
)

func newApp(cfg IO) *cli.App {
	return &cli.App{
		Name:    "shlib",
		Usage:   "build, link and load C shared libraries",
		Version: version(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug output",
			},
			&cli.StringFlag{
				Name:  "cc",
				Usage: "C compiler `COMMAND`, defaults to $" + toolchain.CompilerEnv + " or cc",
			},
		},
		Commands: []*cli.Command{
			compileCommand(),
			sharedCommand(),
			linkCommand(),
			symbolsCommand(),
			neededCommand(),
			runCommand(),
			dlcallCommand(),
			buildCommand(),
			cmakeCommand(),
			walkthroughCommand(),
		},
		Before: func(c *cli.Context) error {
			setupLogging(cfg.Stderr, c.Bool("debug"))
			return nil
		},
		OnUsageError:   usageError,
		ExitErrHandler: func(*cli.Context, error) {},
		Reader:         cfg.Stdin,
		Writer:         cfg.Stdout,
		ErrWriter:      cfg.Stderr,
	}
}

func usageError(_ *cli.Context, err error, _ bool) error {
	return &ParseArgsError{msg: "parse args", err: err}
}

// requireArgs checks the number of positional arguments. A negative max
// means no upper limit.
func requireArgs(c *cli.Context, minArgs, maxArgs int) error {
	n := c.NArg()

	switch {
	case n < minArgs:
		return &ParseArgsError{
			msg: c.Command.Name,
			err: fmt.Errorf("%w: %s", ErrMissingArgument, c.Command.ArgsUsage),
		}
	case maxArgs >= 0 && n > maxArgs:
		return &ParseArgsError{msg: c.Command.Name, err: ErrTooManyArgs}
	default:
		return nil
	}
}

func requireFlag(c *cli.Context, name string) error {
	if c.String(name) != "" {
		return nil
	}

	return &ParseArgsError{
		msg: c.Command.Name,
		err: fmt.Errorf("%w: flag -%s", ErrMissingArgument, name),
	}
}

func newCompiler(c *cli.Context) (*toolchain.Compiler, error) {
	compiler, err := toolchain.NewCompiler(c.String("cc"))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return compiler, nil
}
