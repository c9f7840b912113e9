// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package install

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/cavaliergopher/cpio"
)

const dirLinks = 2

// WriteBundle writes all entries with their parent directories into a cpio
// archive written to w. Paths in the archive are relative.
func WriteBundle(w io.Writer, entries []Entry) error {
	writer := &bundleWriter{cpio.NewWriter(w)}

	for _, dir := range dirs(entries) {
		err := writer.writeDirectory(archivePath(dir))
		if err != nil {
			return err
		}
	}

	for _, entry := range entries {
		err := writer.writeRegular(archivePath(entry.Path), entry.Source, entry.Mode)
		if err != nil {
			return err
		}
	}

	return writer.close()
}

func archivePath(path string) string {
	return strings.TrimPrefix(path, "/")
}

type bundleWriter struct {
	cpioWriter *cpio.Writer
}

func (w *bundleWriter) close() error {
	err := w.cpioWriter.Close()
	if err != nil {
		return fmt.Errorf("close bundle: %w", err)
	}

	return nil
}

func (w *bundleWriter) writeHeader(hdr *cpio.Header) error {
	err := w.cpioWriter.WriteHeader(hdr)
	if err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}

func (w *bundleWriter) writeDirectory(path string) error {
	return w.writeHeader(&cpio.Header{
		Name:  path,
		Mode:  cpio.TypeDir | 0o755,
		Links: dirLinks,
	})
}

func (w *bundleWriter) writeRegular(path, source string, mode os.FileMode) error {
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer fn.IgnoreClose(file)

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("read info: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", source)
	}

	hdr, err := cpio.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("create header: %w", err)
	}

	hdr.Name = path
	hdr.Mode = cpio.TypeReg | cpio.FileMode(mode.Perm())

	err = w.writeHeader(hdr)
	if err != nil {
		return err
	}

	_, err = io.Copy(w.cpioWriter, file)
	if err != nil {
		return fmt.Errorf("write body for %s: %w", path, err)
	}

	return nil
}
