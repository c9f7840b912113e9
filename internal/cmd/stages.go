// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aibor/shlib/internal/sys"
	"github.com/aibor/shlib/internal/toolchain"
	"github.com/urfave/cli/v2"
)

func compileCommand() *cli.Command {
	var (
		includeDirs sys.SearchPath
		mode        toolchain.Mode
	)

	return &cli.Command{
		Name:      "compile",
		Usage:     "compile C sources",
		ArgsUsage: "SOURCE...",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:  "I",
				Usage: "add include `DIR`s, may be used multiple times",
				Value: &includeDirs,
			},
			&cli.StringSliceFlag{
				Name:  "D",
				Usage: "define preprocessor `MACRO`",
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "output `FILE`",
			},
			&cli.BoolFlag{
				Name:  "pic",
				Usage: "generate position independent code",
			},
			&cli.GenericFlag{
				Name:  "mode",
				Usage: "output `MODE`: object, executable or shared",
				Value: &mode,
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 1, -1)
			if err != nil {
				return err
			}

			compiler, err := newCompiler(c)
			if err != nil {
				return err
			}

			spec := toolchain.CompileSpec{
				Sources:     c.Args().Slice(),
				IncludeDirs: includeDirs,
				Defines:     c.StringSlice("D"),
				Output:      c.String("o"),
				Mode:        mode,
				PIC:         c.Bool("pic"),
			}

			if spec.Output == "" {
				spec.Output = defaultOutput(spec)
			}

			result, err := compiler.Compile(c.Context, spec)
			if err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Fprintln(c.App.Writer, result.Output)

			return nil
		},
	}
}

// defaultOutput returns the output file name the compiler driver uses if
// none is given.
func defaultOutput(spec toolchain.CompileSpec) string {
	if spec.Mode == toolchain.ModeObject && len(spec.Sources) == 1 {
		source := filepath.Base(spec.Sources[0])
		return strings.TrimSuffix(source, filepath.Ext(source)) + ".o"
	}

	return "a.out"
}

func sharedCommand() *cli.Command {
	var libraryDirs sys.SearchPath

	return &cli.Command{
		Name:      "shared",
		Usage:     "build a shared library from object files",
		ArgsUsage: "OBJECT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "library `NAME`, the file is named lib<NAME>.so",
			},
			&cli.StringFlag{
				Name:  "o",
				Usage: "output `DIR`",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "soname",
				Usage: "`SONAME` recorded in the library, defaults to the file name",
			},
			&cli.GenericFlag{
				Name:  "L",
				Usage: "add library search `DIR`s",
				Value: &libraryDirs,
			},
			&cli.StringSliceFlag{
				Name:  "l",
				Usage: "link library `NAME`",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireFlag(c, "name")
			if err != nil {
				return err
			}

			err = requireArgs(c, 1, -1)
			if err != nil {
				return err
			}

			compiler, err := newCompiler(c)
			if err != nil {
				return err
			}

			result, err := compiler.BuildShared(c.Context, toolchain.SharedSpec{
				Name:        c.String("name"),
				Objects:     c.Args().Slice(),
				OutputDir:   c.String("o"),
				SoName:      c.String("soname"),
				Libraries:   c.StringSlice("l"),
				LibraryDirs: libraryDirs,
			})
			if err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Fprintln(c.App.Writer, result.Output)

			for _, sym := range result.Exported() {
				fmt.Fprintln(c.App.Writer, sym.String())
			}

			return nil
		},
	}
}

func linkCommand() *cli.Command {
	var libraryDirs, runPath sys.SearchPath

	return &cli.Command{
		Name:      "link",
		Usage:     "link object files to an executable",
		ArgsUsage: "OBJECT...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "o",
				Usage: "output `FILE`",
			},
			&cli.GenericFlag{
				Name:  "L",
				Usage: "add link-time library search `DIR`s",
				Value: &libraryDirs,
			},
			&cli.StringSliceFlag{
				Name:  "l",
				Usage: "link library `NAME`",
			},
			&cli.GenericFlag{
				Name:  "rpath",
				Usage: "embed run-time search `DIR`s",
				Value: &runPath,
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireFlag(c, "o")
			if err != nil {
				return err
			}

			err = requireArgs(c, 1, -1)
			if err != nil {
				return err
			}

			compiler, err := newCompiler(c)
			if err != nil {
				return err
			}

			result, err := compiler.Link(c.Context, toolchain.LinkSpec{
				Objects:     c.Args().Slice(),
				Libraries:   c.StringSlice("l"),
				LibraryDirs: libraryDirs,
				RunPath:     runPath,
				Output:      c.String("o"),
			})
			if err != nil {
				return err //nolint:wrapcheck
			}

			fmt.Fprintln(c.App.Writer, result.Output)

			for _, lib := range result.Check.Libraries {
				fmt.Fprintf(c.App.Writer, "\t%s\n", lib.Path)
			}

			return nil
		},
	}
}
