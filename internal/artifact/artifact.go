// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/shlib/internal/sys"
	"golang.org/x/sys/unix"
)

// Kind is the kind of a build artifact.
type Kind int

const (
	KindUnknown Kind = iota
	KindObject
	KindShared
	KindExecutable
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindShared:
		return "shared library"
	case KindExecutable:
		return "executable"
	default:
		return "unknown"
	}
}

// Artifact is an inspected ELF build artifact.
type Artifact struct {
	Path   string
	Kind   Kind
	Header elf.FileHeader

	// Symbols is the static symbol table. It is empty for stripped files.
	Symbols []Symbol
	// Dynamic is the dynamic symbol table of shared libraries and
	// dynamically linked executables.
	Dynamic []Symbol

	// Needed are the DT_NEEDED entries: the libraries required at load time,
	// by name.
	Needed      []string
	SoName      string
	RPath       []string
	RunPath     []string
	Interpreter string
}

// Open reads the artifact with the given path.
func Open(path string) (*Artifact, error) {
	file, err := sys.OpenELF(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	a := &Artifact{
		Path:   path,
		Header: file.FileHeader,
	}

	err = a.read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

func (a *Artifact) read(file *elf.File) error {
	var err error

	a.Symbols, err = readSymbols(file.Symbols, file.Sections)
	if err != nil {
		return fmt.Errorf("symbols: %w", err)
	}

	a.Dynamic, err = readSymbols(file.DynamicSymbols, file.Sections)
	if err != nil {
		return fmt.Errorf("dynamic symbols: %w", err)
	}

	a.Interpreter, err = readInterpreter(file)
	if err != nil {
		return err
	}

	if file.Type != elf.ET_REL {
		err = a.readDynamic(file)
		if err != nil {
			return err
		}
	}

	a.Kind = a.kind(file)

	return nil
}

func (a *Artifact) readDynamic(file *elf.File) error {
	var err error

	a.Needed, err = file.ImportedLibraries()
	if err != nil {
		return fmt.Errorf("needed libraries: %w", err)
	}

	soNames, err := file.DynString(elf.DT_SONAME)
	if err != nil {
		return fmt.Errorf("soname: %w", err)
	}

	if len(soNames) > 0 {
		a.SoName = soNames[0]
	}

	a.RPath, err = dynPathList(file, elf.DT_RPATH)
	if err != nil {
		return err
	}

	a.RunPath, err = dynPathList(file, elf.DT_RUNPATH)
	if err != nil {
		return err
	}

	return nil
}

func (a *Artifact) kind(file *elf.File) Kind {
	switch file.Type {
	case elf.ET_REL:
		return KindObject
	case elf.ET_EXEC:
		return KindExecutable
	case elf.ET_DYN:
		if isPIE(file) || (a.Interpreter != "" && a.SoName == "") {
			return KindExecutable
		}

		return KindShared
	default:
		return KindUnknown
	}
}

func isPIE(file *elf.File) bool {
	flags, err := file.DynValue(elf.DT_FLAGS_1)
	if err != nil {
		return false
	}

	for _, f := range flags {
		if elf.DynFlag1(f)&elf.DF_1_PIE != 0 {
			return true
		}
	}

	return false
}

func dynPathList(file *elf.File, tag elf.DynTag) ([]string, error) {
	values, err := file.DynString(tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}

	var paths []string

	for _, value := range values {
		for dir := range strings.SplitSeq(value, ":") {
			if dir != "" {
				paths = append(paths, dir)
			}
		}
	}

	return paths, nil
}

func readSymbols(
	read func() ([]elf.Symbol, error),
	sections []*elf.Section,
) ([]Symbol, error) {
	elfSymbols, err := read()
	if err != nil {
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, nil
		}

		return nil, err //nolint:wrapcheck
	}

	symbols := make([]Symbol, 0, len(elfSymbols))

	for _, elfSym := range elfSymbols {
		sym, ok := newSymbol(elfSym, sections)
		if ok {
			symbols = append(symbols, sym)
		}
	}

	return symbols, nil
}

// readInterpreter fetches the ELF interpreter path from the ELF file. Empty
// string is returned if the file has none.
func readInterpreter(file *elf.File) (string, error) {
	for _, prog := range file.Progs {
		if prog.Type != elf.PT_INTERP {
			continue
		}

		buf := make([]byte, prog.Filesz)

		_, err := prog.Open().Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read interpreter: %w", err)
		}

		interpreter := unix.ByteSliceToString(buf)
		if interpreter != "" {
			return interpreter, nil
		}
	}

	return "", nil
}

// Name returns the base name of the artifact's file.
func (a *Artifact) Name() string {
	return filepath.Base(a.Path)
}

// IsDynamic returns true if the artifact requires the dynamic loader.
func (a *Artifact) IsDynamic() bool {
	return a.Interpreter != "" || len(a.Needed) > 0
}

// Defined returns all global symbols the artifact defines.
func (a *Artifact) Defined() []Symbol {
	return a.filter(func(s Symbol) bool {
		return s.Defined && s.IsGlobal()
	})
}

// Undefined returns all symbols the artifact references but does not define.
func (a *Artifact) Undefined() []Symbol {
	return a.filter(func(s Symbol) bool {
		return !s.Defined
	})
}

// Exported returns the symbols of the dynamic symbol table that other
// artifacts can bind against.
func (a *Artifact) Exported() []Symbol {
	var exported []Symbol

	for _, sym := range a.Dynamic {
		if sym.IsExported() {
			exported = append(exported, sym)
		}
	}

	return exported
}

// Export returns the exported symbol with the given name.
func (a *Artifact) Export(name string) (Symbol, bool) {
	idx := slices.IndexFunc(a.Dynamic, func(s Symbol) bool {
		return s.Name == name && s.IsExported()
	})
	if idx < 0 {
		return Symbol{}, false
	}

	return a.Dynamic[idx], true
}

// filter returns the symbols matching the given function. The static symbol
// table is used if present, the dynamic one otherwise. Symbols are
// deduplicated by name.
func (a *Artifact) filter(match func(Symbol) bool) []Symbol {
	table := a.Symbols
	if len(table) == 0 {
		table = a.Dynamic
	}

	var (
		result []Symbol
		seen   = make(map[string]bool)
	)

	for _, sym := range table {
		if seen[sym.Name] || !match(sym) {
			continue
		}

		seen[sym.Name] = true

		result = append(result, sym)
	}

	return result
}
