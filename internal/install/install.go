// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package install

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ZenLiuCN/fn"
)

// Install copies all entries into the directory tree rooted at root. Missing
// directories are created. Existing files are replaced. It returns the paths
// of all installed files.
func Install(entries []Entry, root string) ([]string, error) {
	installed := make([]string, 0, len(entries))

	for _, entry := range entries {
		dest := filepath.Join(root, filepath.FromSlash(entry.Path))

		err := os.MkdirAll(filepath.Dir(dest), 0o755)
		if err != nil {
			return installed, fmt.Errorf("create directory: %w", err)
		}

		err = copyFile(entry.Source, dest, entry.Mode)
		if err != nil {
			return installed, fmt.Errorf("install %s: %w", entry.Path, err)
		}

		slog.Debug("Installed file",
			slog.String("source", entry.Source),
			slog.String("path", dest))

		installed = append(installed, dest)
	}

	return installed, nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	sf, err := os.Open(src)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer fn.IgnoreClose(sf)

	// Write a new file and rename it over the destination.
	tmp := dest + ".tmp"

	df, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err //nolint:wrapcheck
	}

	_, err = io.Copy(df, sf)
	if err == nil {
		err = df.Chmod(mode)
	}

	if closeErr := df.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmp)
		return err //nolint:wrapcheck
	}

	return os.Rename(tmp, dest) //nolint:wrapcheck
}
