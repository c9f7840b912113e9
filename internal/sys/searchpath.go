// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SearchPath is an ordered list of directories consulted to resolve a name
// to a file. Each pipeline stage has its own independent list.
//
// It implements [flag.Value]. Each call of [SearchPath.Set] appends the
// directories of a [os.PathListSeparator] separated list. An empty value
// clears the list.
type SearchPath []string

// ParseSearchPath parses a [os.PathListSeparator] separated list. Empty
// elements are dropped and duplicates are removed, keeping the first
// occurrence.
func ParseSearchPath(list string) SearchPath {
	var path SearchPath

	for dir := range strings.SplitSeq(list, string(os.PathListSeparator)) {
		path = path.Append(dir)
	}

	return path
}

func (p *SearchPath) String() string {
	if p == nil {
		return ""
	}

	return strings.Join(*p, string(os.PathListSeparator))
}

func (p *SearchPath) Set(value string) error {
	if value == "" {
		*p = nil
		return nil
	}

	for dir := range strings.SplitSeq(value, string(os.PathListSeparator)) {
		*p = p.Append(dir)
	}

	return nil
}

// Append returns the list with the given directories appended. Empty and
// already present directories are ignored.
func (p SearchPath) Append(dirs ...string) SearchPath {
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}

		dir = filepath.Clean(dir)
		if slices.Contains(p, dir) {
			continue
		}

		p = append(p, dir)
	}

	return p
}

// Absolute returns a copy of the list with all directories made absolute.
func (p SearchPath) Absolute() (SearchPath, error) {
	abs := make(SearchPath, 0, len(p))

	for _, dir := range p {
		absDir, err := AbsolutePath(dir)
		if err != nil {
			return nil, err
		}

		abs = abs.Append(absDir)
	}

	return abs, nil
}

// Lookup returns the path of the first regular file with the given name
// found in the directories of the list, in order. [fs.ErrNotExist] is
// returned if no directory contains it.
func (p SearchPath) Lookup(name string) (string, error) {
	for _, dir := range p {
		path := filepath.Join(dir, name)

		err := CheckRegularFile(path)
		if err == nil {
			return path, nil
		}

		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrNotRegularFile) {
			continue
		}

		return "", err
	}

	return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

// Candidates returns the paths of all regular files with the given name in
// the directories of the list, in order.
func (p SearchPath) Candidates(name string) []string {
	var paths []string

	for _, dir := range p {
		path := filepath.Join(dir, name)
		if CheckRegularFile(path) == nil {
			paths = append(paths, path)
		}
	}

	return paths
}
