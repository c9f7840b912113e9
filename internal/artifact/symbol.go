// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"debug/elf"
	"fmt"
	"unicode"
)

// STB_GNU_UNIQUE is missing from [debug/elf].
const STB_GNU_UNIQUE elf.SymBind = 10 //nolint:revive,stylecheck

// Symbol is a named function or data item of an artifact.
type Symbol struct {
	Name       string
	Value      uint64
	Size       uint64
	Type       elf.SymType
	Binding    elf.SymBind
	Visibility elf.SymVis
	Defined    bool
	// Marker is the type character as printed by nm.
	Marker rune
}

// IsGlobal returns true if the symbol is visible outside its artifact.
func (s Symbol) IsGlobal() bool {
	return s.Binding == elf.STB_GLOBAL ||
		s.Binding == elf.STB_WEAK ||
		s.Binding == STB_GNU_UNIQUE
}

// IsWeak returns true for weak symbols. An undefined weak symbol does not
// need to be resolved.
func (s Symbol) IsWeak() bool {
	return s.Binding == elf.STB_WEAK
}

// IsExported returns true if the symbol can be bound against from other
// artifacts.
func (s Symbol) IsExported() bool {
	if !s.Defined || !s.IsGlobal() {
		return false
	}

	return s.Visibility == elf.STV_DEFAULT ||
		s.Visibility == elf.STV_PROTECTED
}

// String formats the symbol like a line of nm output.
func (s Symbol) String() string {
	if !s.Defined {
		return fmt.Sprintf("%16s %c %s", "", s.Marker, s.Name)
	}

	return fmt.Sprintf("%016x %c %s", s.Value, s.Marker, s.Name)
}

func newSymbol(sym elf.Symbol, sections []*elf.Section) (Symbol, bool) {
	symType := elf.ST_TYPE(sym.Info)

	switch symType {
	case elf.STT_SECTION, elf.STT_FILE:
		return Symbol{}, false
	}

	if sym.Name == "" {
		return Symbol{}, false
	}

	s := Symbol{
		Name:       sym.Name,
		Value:      sym.Value,
		Size:       sym.Size,
		Type:       symType,
		Binding:    elf.ST_BIND(sym.Info),
		Visibility: elf.ST_VISIBILITY(sym.Other),
		Defined:    sym.Section != elf.SHN_UNDEF,
	}

	s.Marker = marker(s, sym.Section, sections)

	return s, true
}

// marker returns the nm type character for the symbol.
func marker(s Symbol, index elf.SectionIndex, sections []*elf.Section) rune {
	if !s.Defined {
		if s.IsWeak() {
			if s.Type == elf.STT_OBJECT {
				return 'v'
			}

			return 'w'
		}

		return 'U'
	}

	if s.Type == elf.STT_GNU_IFUNC {
		return 'i'
	}

	if s.Binding == STB_GNU_UNIQUE {
		return 'u'
	}

	if s.IsWeak() {
		if s.Type == elf.STT_OBJECT {
			return 'V'
		}

		return 'W'
	}

	var m rune

	switch {
	case index == elf.SHN_ABS:
		m = 'A'
	case index == elf.SHN_COMMON:
		m = 'C'
	case int(index) < len(sections):
		m = sectionMarker(sections[index])
	default:
		m = '?'
	}

	if s.Binding == elf.STB_LOCAL {
		return unicode.ToLower(m)
	}

	return m
}

func sectionMarker(section *elf.Section) rune {
	switch {
	case section.Flags&elf.SHF_EXECINSTR != 0:
		return 'T'
	case section.Flags&elf.SHF_ALLOC == 0:
		return 'N'
	case section.Flags&elf.SHF_WRITE == 0:
		return 'R'
	case section.Type == elf.SHT_NOBITS:
		return 'B'
	default:
		return 'D'
	}
}
