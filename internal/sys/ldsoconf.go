// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// LdSoConf is the path of the dynamic loader's configuration file.
const LdSoConf = "/etc/ld.so.conf"

const maxConfDepth = 8

var ErrConfDepth = errors.New("ld.so.conf include depth exceeded")

// ReadLdSoConf returns the library directories configured in the given
// ld.so.conf file, following "include" directives. The file system is
// expected to be rooted at "/", so absolute paths are resolved relative to
// its root. A missing file results in an empty list.
func ReadLdSoConf(fsys fs.FS, file string) (SearchPath, error) {
	var dirs SearchPath

	err := readLdSoConf(fsys, file, &dirs, 0)
	if err != nil {
		return nil, err
	}

	return dirs, nil
}

func readLdSoConf(fsys fs.FS, file string, dirs *SearchPath, depth int) error {
	if depth > maxConfDepth {
		return fmt.Errorf("%s: %w", file, ErrConfDepth)
	}

	content, err := fs.ReadFile(fsys, fsPath(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read %s: %w", file, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if fields[0] != "include" {
			for _, dir := range fields {
				if path.IsAbs(dir) {
					*dirs = dirs.Append(dir)
				}
			}

			continue
		}

		for _, pattern := range fields[1:] {
			if !path.IsAbs(pattern) {
				pattern = path.Join(path.Dir(file), pattern)
			}

			matches, err := fs.Glob(fsys, fsPath(pattern))
			if err != nil {
				return fmt.Errorf("include %s: %w", pattern, err)
			}

			for _, match := range matches {
				err := readLdSoConf(fsys, "/"+match, dirs, depth+1)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// DefaultLibraryDirs returns the directories the dynamic loader searches
// after all explicit search paths: the ld.so.conf entries, the multiarch
// directories and the trusted system directories.
func DefaultLibraryDirs(fsys fs.FS, arch Arch) (SearchPath, error) {
	dirs, err := ReadLdSoConf(fsys, LdSoConf)
	if err != nil {
		return nil, err
	}

	if tuple := arch.Multiarch(); tuple != "" {
		dirs = dirs.Append(
			"/lib/"+tuple,
			"/usr/lib/"+tuple,
		)
	}

	dirs = dirs.Append("/lib64", "/usr/lib64", "/lib", "/usr/lib")

	return dirs, nil
}

func fsPath(name string) string {
	return strings.TrimPrefix(path.Clean(name), "/")
}
