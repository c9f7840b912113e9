// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZenLiuCN/fn"
	"github.com/aibor/shlib/internal/install"
	"github.com/aibor/shlib/internal/pipeline"
	"github.com/aibor/shlib/internal/project"
	"github.com/urfave/cli/v2"
)

func descriptionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "f",
		Usage: "build description `FILE`",
		Value: project.DefaultFile,
	}
}

func loadDescription(c *cli.Context) (*project.Description, error) {
	desc, err := project.Load(c.String("f"))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	debugDump(c.Context, "Loaded build description", desc)

	return desc, nil
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "build all targets of a build description",
		Flags: []cli.Flag{
			descriptionFlag(),
			&cli.StringFlag{
				Name:  "C",
				Usage: "source `DIR`, defaults to the directory of the build description",
			},
			&cli.StringFlag{
				Name:  "B",
				Usage: "build `DIR`",
				Value: "build",
			},
			&cli.StringFlag{
				Name:  "install",
				Usage: "install libraries and public headers below root `DIR`",
			},
			&cli.StringFlag{
				Name:  "bundle",
				Usage: "write libraries and public headers into cpio archive `FILE`",
			},
			&cli.BoolFlag{
				Name:  "bin",
				Usage: "install executables as well",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 0, 0)
			if err != nil {
				return err
			}

			desc, err := loadDescription(c)
			if err != nil {
				return err
			}

			compiler, err := newCompiler(c)
			if err != nil {
				return err
			}

			sourceDir := c.String("C")
			if sourceDir == "" {
				sourceDir = filepath.Dir(c.String("f"))
			}

			result, err := pipeline.Build(c.Context, desc, pipeline.Options{
				SourceDir: sourceDir,
				BuildDir:  c.String("B"),
				Compiler:  compiler,
			})
			if err != nil {
				return err //nolint:wrapcheck
			}

			for _, target := range result.Targets {
				fmt.Fprintf(c.App.Writer, "%s %s: %s\n",
					target.Target.Kind, target.Target.Name, target.Output)
			}

			return installArtifacts(c, desc, result.Artifacts(), sourceDir)
		},
	}
}

func installArtifacts(
	c *cli.Context,
	desc *project.Description,
	built install.Artifacts,
	sourceDir string,
) error {
	root := c.String("install")
	bundle := c.String("bundle")

	if root == "" && bundle == "" {
		return nil
	}

	libraries := fn.MapKeys(built.Libraries)
	slices.Sort(libraries)

	slog.Debug("Install artifacts",
		slog.Any("libraries", libraries),
		slog.Bool("executables", c.Bool("bin")))

	entries, err := install.Plan(desc, built, sourceDir, c.Bool("bin"))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if root != "" {
		paths, err := install.Install(entries, root)
		if err != nil {
			return err //nolint:wrapcheck
		}

		for _, path := range paths {
			fmt.Fprintf(c.App.Writer, "installed %s\n", path)
		}
	}

	if bundle != "" {
		err := writeBundle(bundle, entries)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "bundle %s\n", bundle)
	}

	return nil
}

func writeBundle(path string, entries []install.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}

	err = install.WriteBundle(file, entries)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return err //nolint:wrapcheck
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}

	return nil
}

func cmakeCommand() *cli.Command {
	return &cli.Command{
		Name:  "cmake",
		Usage: "render the CMakeLists.txt equivalent to a build description",
		Flags: []cli.Flag{
			descriptionFlag(),
			&cli.StringFlag{
				Name:  "o",
				Usage: "output `FILE`, defaults to stdout",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 0, 0)
			if err != nil {
				return err
			}

			desc, err := loadDescription(c)
			if err != nil {
				return err
			}

			output := c.String("o")
			if output == "" {
				return desc.RenderCMake(c.App.Writer) //nolint:wrapcheck
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}

			return closeAfter(file, desc.RenderCMake(file))
		},
	}
}

// closeAfter closes the given file and returns the given error joined with
// any close error.
func closeAfter(file io.Closer, err error) error {
	return errors.Join(err, file.Close())
}

func walkthroughCommand() *cli.Command {
	return &cli.Command{
		Name:      "walkthrough",
		Usage:     "replay the shared library tutorial end to end",
		ArgsUsage: "[MESSAGE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "work `DIR`, a temporary directory is used and removed if not given",
			},
		},
		OnUsageError: usageError,
		Action: func(c *cli.Context) error {
			err := requireArgs(c, 0, 1)
			if err != nil {
				return err
			}

			compiler, err := newCompiler(c)
			if err != nil {
				return err
			}

			dir := c.String("dir")
			if dir == "" {
				dir, err = os.MkdirTemp("", "shlib-walkthrough-")
				if err != nil {
					return fmt.Errorf("create work dir: %w", err)
				}

				defer removeWorkDir(dir)
			}

			_, err = pipeline.Walkthrough(c.Context, pipeline.WalkthroughOptions{
				Dir:      dir,
				Message:  c.Args().First(),
				Compiler: compiler,
				Out:      c.App.Writer,
			})

			return err //nolint:wrapcheck
		},
	}
}

func removeWorkDir(path string) {
	slog.Debug("Removing work dir", slog.String("path", path))

	err := os.RemoveAll(path)
	if err != nil {
		slog.Error(
			"Failed to remove work dir",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}
