// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import (
	"fmt"

	"github.com/aibor/shlib/internal/sys"
)

// Mode is the output mode of a compiler invocation.
type Mode int

const (
	// ModeObject compiles a single translation unit to an object file.
	ModeObject Mode = iota
	// ModeExecutable compiles and links directly to an executable.
	ModeExecutable
	// ModeShared compiles and links directly to a shared library.
	ModeShared
)

func (m *Mode) String() string {
	switch *m {
	case ModeObject:
		return "object"
	case ModeExecutable:
		return "executable"
	case ModeShared:
		return "shared"
	default:
		return "unknown"
	}
}

func (m *Mode) Set(s string) error {
	switch s {
	case "object":
		*m = ModeObject
	case "executable":
		*m = ModeExecutable
	case "shared":
		*m = ModeShared
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, s)
	}

	return nil
}

// CompileSpec describes a compiler invocation.
type CompileSpec struct {
	Sources     []string
	IncludeDirs sys.SearchPath
	Defines     []string
	Output      string
	Mode        Mode
	// PIC requests position independent code. It is implied by
	// [ModeShared].
	PIC   bool
	Flags []string
}

func (s *CompileSpec) validate() error {
	if len(s.Sources) == 0 {
		return ErrNoSources
	}

	if s.Output == "" {
		return ErrNoOutput
	}

	if s.Mode == ModeObject && len(s.Sources) > 1 {
		return fmt.Errorf("%w: object mode takes exactly one source", ErrInvalidMode)
	}

	return nil
}

func (s *CompileSpec) args() []string {
	var args []string

	switch s.Mode {
	case ModeObject:
		args = append(args, "-c")
		if s.PIC {
			args = append(args, "-fPIC")
		}
	case ModeShared:
		args = append(args, "-shared", "-fPIC")
	case ModeExecutable:
		if s.PIC {
			args = append(args, "-fPIC")
		}
	}

	// Newer compilers turn this into an error by default. Undefined
	// functions are resolved by the link stage, so keep it a warning.
	args = append(args, "-Wno-error=implicit-function-declaration")

	for _, dir := range s.IncludeDirs {
		args = append(args, "-I"+dir)
	}

	for _, def := range s.Defines {
		args = append(args, "-D"+def)
	}

	args = append(args, s.Flags...)
	args = append(args, "-o", s.Output)
	args = append(args, s.Sources...)

	return args
}

// SharedSpec describes building a shared library from object files.
type SharedSpec struct {
	// Name is the library name. The file is named "lib<Name>.so".
	Name      string
	Objects   []string
	OutputDir string
	// SoName is recorded in the library. Defaults to the file name.
	SoName string
	// Libraries the shared library itself depends on.
	Libraries   []string
	LibraryDirs sys.SearchPath
}

// LinkSpec describes linking caller objects to an executable.
type LinkSpec struct {
	Objects []string
	// Libraries are library names like "tutorial" for "-ltutorial".
	Libraries []string
	// LibraryDirs is the link-time library search path list.
	LibraryDirs sys.SearchPath
	// RunPath directories are embedded into the executable as DT_RUNPATH.
	// It is empty by default, so the run-time search path is independent of
	// the link-time one.
	RunPath sys.SearchPath
	Output  string
}

func (s *LinkSpec) args() []string {
	args := []string{"-o", s.Output}
	args = append(args, s.Objects...)

	for _, dir := range s.LibraryDirs {
		args = append(args, "-L"+dir)
	}

	for _, name := range s.Libraries {
		args = append(args, "-l"+name)
	}

	for _, dir := range s.RunPath {
		args = append(args, "-Wl,-rpath,"+dir)
	}

	if len(s.RunPath) > 0 {
		args = append(args, "-Wl,--enable-new-dtags")
	}

	return args
}
