// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aibor/shlib/internal/sys"
	"github.com/ebitengine/purego"
)

// Handle is a shared library loaded into the current process.
type Handle struct {
	Path string

	handle uintptr
}

// Open loads the shared library with the given path into the current
// process. All symbols are bound immediately. Names without a slash are
// searched by the system's dynamic loader.
func Open(path string) (*Handle, error) {
	if strings.Contains(path, "/") {
		abs, err := sys.AbsolutePath(path)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		path = abs
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, &DLError{Op: "dlopen", Name: path, Err: err}
	}

	slog.Debug("Loaded library", slog.String("path", path))

	return &Handle{Path: path, handle: handle}, nil
}

// Lookup returns the address of the given symbol. The library's
// dependencies are searched as well.
func (h *Handle) Lookup(symbol string) (uintptr, error) {
	if h.handle == 0 {
		return 0, ErrLibraryClosed
	}

	addr, err := purego.Dlsym(h.handle, symbol)
	if err != nil || addr == 0 {
		return 0, &DLError{Op: "dlsym", Name: symbol, Err: ErrSymbolNotFound}
	}

	return addr, nil
}

// CallPrint calls the given symbol as "void symbol(const char *)" with the
// given message. The C library's output buffers are flushed afterwards.
func (h *Handle) CallPrint(symbol, message string) error {
	addr, err := h.Lookup(symbol)
	if err != nil {
		return err
	}

	var fn func(string)

	purego.RegisterFunc(&fn, addr)
	fn(message)

	return flush()
}

// libcName is the SONAME of the C library owning the stdio streams.
const libcName = "libc.so.6"

// flush flushes all C stdio streams. Go exits without running the C
// library's exit handlers. The library itself might not depend on libc, so
// fflush is resolved from libc directly.
func flush() error {
	libc, err := Open(libcName)
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	defer libc.Close()

	addr, err := libc.Lookup("fflush")
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	var fflush func(uintptr) int32

	purego.RegisterFunc(&fflush, addr)

	if rc := fflush(0); rc != 0 {
		return fmt.Errorf("fflush returned %d", rc)
	}

	return nil
}

// Close unloads the library. It is safe to call multiple times.
func (h *Handle) Close() error {
	if h.handle == 0 {
		return nil
	}

	err := purego.Dlclose(h.handle)
	h.handle = 0

	if err != nil {
		return &DLError{Op: "dlclose", Name: h.Path, Err: err}
	}

	return nil
}
