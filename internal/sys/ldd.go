// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	lddTimeout = 5 * time.Second

	// LibraryPathEnv is the environment variable the dynamic loader reads
	// its run-time search path list from.
	LibraryPathEnv = "LD_LIBRARY_PATH"
)

// LddResult is the shared object resolution as reported by "ldd".
type LddResult struct {
	// Paths are the resolved paths of all required shared objects.
	Paths []string
	// Missing are the names of shared objects the loader could not find.
	Missing []string
}

// Ldd gathers the required shared objects of the ELF file with the given path.
//
// It invokes the "ldd" executable which is expected to be present on the
// system. The given search path is passed as [LibraryPathEnv], replacing any
// value of the current environment. It returns an [LDDExecError] in case
// "ldd" is not available or it returned with a non-zero exit code. This
// might be the case if the binary is not dynamically linked.
func Ldd(ctx context.Context, path string, searchPath SearchPath) (LddResult, error) {
	var lddOutput bytes.Buffer

	err := runLdd(ctx, path, searchPath, &lddOutput)
	if err != nil {
		return LddResult{}, err
	}

	var infos ldInfos

	infos.parseFrom(&lddOutput)

	return LddResult{
		Paths:   infos.realPaths(),
		Missing: infos.missing(),
	}, nil
}

func runLdd(
	ctx context.Context,
	path string,
	searchPath SearchPath,
	outW io.Writer,
) error {
	var stderrBuf bytes.Buffer

	ctx, stop := context.WithTimeout(ctx, lddTimeout)
	defer stop()

	cmd := exec.CommandContext(ctx, "ldd", path)
	cmd.Env = EnvWithSearchPath(os.Environ(), searchPath)
	cmd.Stdout = outW
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		return &LDDExecError{
			Err:    err,
			Stderr: strings.TrimSpace(stderrBuf.String()),
		}
	}

	return nil
}

// EnvWithSearchPath returns a copy of the given environment with
// [LibraryPathEnv] set to the given search path. Any inherited value is
// dropped, so the run-time search path is exactly the given one.
func EnvWithSearchPath(environ []string, searchPath SearchPath) []string {
	env := make([]string, 0, len(environ)+1)

	for _, e := range environ {
		if strings.HasPrefix(e, LibraryPathEnv+"=") {
			continue
		}

		env = append(env, e)
	}

	if len(searchPath) > 0 {
		env = append(env, LibraryPathEnv+"="+searchPath.String())
	}

	return env
}

type ldInfos []ldInfo

// parseFrom takes a ldd output, processes each line and adds an [ldInfo] to
// the list.
func (l *ldInfos) parseFrom(lddOutput io.Reader) {
	scanner := bufio.NewScanner(lddOutput)
	for scanner.Scan() {
		var info ldInfo

		info.parseFrom(scanner.Text())

		*l = append(*l, info)
	}
}

// realPaths returns all shared objects that are a real file in the file system.
// So, everything except vdso and missing objects.
func (l *ldInfos) realPaths() []string {
	var paths []string

	for _, i := range *l {
		switch {
		case i.notFound:
			continue
		case filepath.IsAbs(i.name):
			paths = append(paths, i.name)
		case i.path != "":
			paths = append(paths, i.path)
		}
	}

	return paths
}

func (l *ldInfos) missing() []string {
	var names []string

	for _, i := range *l {
		if i.notFound {
			names = append(names, i.name)
		}
	}

	return names
}

type ldInfo struct {
	name     string
	path     string
	start    uint
	notFound bool
}

// parseFrom fills the info from a single line of ldd output.
func (l *ldInfo) parseFrom(line string) {
	// Format for shared objects that could not be found.
	// From glibc rtld.c: _dl_printf ("\t%s => not found\n", l->l_libname->name)
	if name, ok := strings.CutSuffix(line, " => not found"); ok {
		l.name = strings.TrimSpace(name)
		l.notFound = true

		return
	}

	// Format for shared objects that reference an absolute path.
	// From glibc rtld.c: _dl_printf ("\t%s => %s (0x%0*zx)\n",
	_, err := fmt.Sscanf(line, "\t%s => %s (0x%x)", &l.name, &l.path, &l.start)
	if err == nil {
		return
	}
	// Format for shared objects that do not reference anything and might be
	// an absolute path already.
	// From glibc rtld.c: _dl_printf ("\t%s (0x%0*zx)\n"
	_, _ = fmt.Sscanf(line, "\t%s (0x%x)", &l.name, &l.start)
}
