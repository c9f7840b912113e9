// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSymbol(t *testing.T) {
	sections := []*elf.Section{
		{SectionHeader: elf.SectionHeader{Name: ""}},
		{SectionHeader: elf.SectionHeader{
			Name:  ".text",
			Type:  elf.SHT_PROGBITS,
			Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		}},
		{SectionHeader: elf.SectionHeader{
			Name:  ".data",
			Type:  elf.SHT_PROGBITS,
			Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		}},
		{SectionHeader: elf.SectionHeader{
			Name:  ".bss",
			Type:  elf.SHT_NOBITS,
			Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		}},
		{SectionHeader: elf.SectionHeader{
			Name:  ".rodata",
			Type:  elf.SHT_PROGBITS,
			Flags: elf.SHF_ALLOC,
		}},
	}

	info := func(bind elf.SymBind, typ elf.SymType) byte {
		return byte(bind)<<4 | byte(typ)
	}

	tests := []struct {
		name     string
		sym      elf.Symbol
		expected Symbol
		ok       bool
	}{
		{
			name: "global function",
			sym: elf.Symbol{
				Name:    "tutorial_print",
				Info:    info(elf.STB_GLOBAL, elf.STT_FUNC),
				Section: 1,
				Value:   0x1139,
			},
			expected: Symbol{
				Name:    "tutorial_print",
				Value:   0x1139,
				Type:    elf.STT_FUNC,
				Binding: elf.STB_GLOBAL,
				Defined: true,
				Marker:  'T',
			},
			ok: true,
		},
		{
			name: "undefined reference",
			sym: elf.Symbol{
				Name:    "printf",
				Info:    info(elf.STB_GLOBAL, elf.STT_NOTYPE),
				Section: elf.SHN_UNDEF,
			},
			expected: Symbol{
				Name:    "printf",
				Type:    elf.STT_NOTYPE,
				Binding: elf.STB_GLOBAL,
				Marker:  'U',
			},
			ok: true,
		},
		{
			name: "weak undefined",
			sym: elf.Symbol{
				Name:    "__gmon_start__",
				Info:    info(elf.STB_WEAK, elf.STT_NOTYPE),
				Section: elf.SHN_UNDEF,
			},
			expected: Symbol{
				Name:    "__gmon_start__",
				Type:    elf.STT_NOTYPE,
				Binding: elf.STB_WEAK,
				Marker:  'w',
			},
			ok: true,
		},
		{
			name: "local data",
			sym: elf.Symbol{
				Name:    "counter",
				Info:    info(elf.STB_LOCAL, elf.STT_OBJECT),
				Section: 2,
			},
			expected: Symbol{
				Name:    "counter",
				Type:    elf.STT_OBJECT,
				Binding: elf.STB_LOCAL,
				Defined: true,
				Marker:  'd',
			},
			ok: true,
		},
		{
			name: "global bss",
			sym: elf.Symbol{
				Name:    "buffer",
				Info:    info(elf.STB_GLOBAL, elf.STT_OBJECT),
				Section: 3,
			},
			expected: Symbol{
				Name:    "buffer",
				Type:    elf.STT_OBJECT,
				Binding: elf.STB_GLOBAL,
				Defined: true,
				Marker:  'B',
			},
			ok: true,
		},
		{
			name: "global read only",
			sym: elf.Symbol{
				Name:    "banner",
				Info:    info(elf.STB_GLOBAL, elf.STT_OBJECT),
				Section: 4,
			},
			expected: Symbol{
				Name:    "banner",
				Type:    elf.STT_OBJECT,
				Binding: elf.STB_GLOBAL,
				Defined: true,
				Marker:  'R',
			},
			ok: true,
		},
		{
			name: "gnu unique data",
			sym: elf.Symbol{
				Name:    "instance",
				Info:    info(STB_GNU_UNIQUE, elf.STT_OBJECT),
				Section: 3,
			},
			expected: Symbol{
				Name:    "instance",
				Type:    elf.STT_OBJECT,
				Binding: STB_GNU_UNIQUE,
				Defined: true,
				Marker:  'u',
			},
			ok: true,
		},
		{
			name: "indirect function",
			sym: elf.Symbol{
				Name:    "memcpy",
				Info:    info(elf.STB_GLOBAL, elf.STT_GNU_IFUNC),
				Section: 1,
			},
			expected: Symbol{
				Name:    "memcpy",
				Type:    elf.STT_GNU_IFUNC,
				Binding: elf.STB_GLOBAL,
				Defined: true,
				Marker:  'i',
			},
			ok: true,
		},
		{
			name: "section symbol",
			sym: elf.Symbol{
				Info:    info(elf.STB_LOCAL, elf.STT_SECTION),
				Section: 1,
			},
		},
		{
			name: "file symbol",
			sym: elf.Symbol{
				Name:    "tutorial.c",
				Info:    info(elf.STB_LOCAL, elf.STT_FILE),
				Section: elf.SHN_ABS,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, ok := newSymbol(tt.sym, sections)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestSymbol_IsExported(t *testing.T) {
	tests := []struct {
		name     string
		sym      Symbol
		expected bool
	}{
		{
			name:     "global default",
			sym:      Symbol{Defined: true, Binding: elf.STB_GLOBAL},
			expected: true,
		},
		{
			name:     "weak protected",
			sym:      Symbol{Defined: true, Binding: elf.STB_WEAK, Visibility: elf.STV_PROTECTED},
			expected: true,
		},
		{
			name:     "gnu unique",
			sym:      Symbol{Defined: true, Binding: STB_GNU_UNIQUE},
			expected: true,
		},
		{
			name: "hidden",
			sym:  Symbol{Defined: true, Binding: elf.STB_GLOBAL, Visibility: elf.STV_HIDDEN},
		},
		{
			name: "local",
			sym:  Symbol{Defined: true, Binding: elf.STB_LOCAL},
		},
		{
			name: "undefined",
			sym:  Symbol{Binding: elf.STB_GLOBAL},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.sym.IsExported())
		})
	}
}

func TestSymbol_String(t *testing.T) {
	defined := Symbol{Name: "tutorial_print", Value: 0x1139, Defined: true, Marker: 'T'}
	assert.Equal(t, "0000000000001139 T tutorial_print", defined.String())

	undefined := Symbol{Name: "puts", Marker: 'U'}
	assert.Equal(t, "                 U puts", undefined.String())
}
