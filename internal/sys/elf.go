// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ValidateELF validates that ELF attributes match the requested architecture.
func ValidateELF(hdr elf.FileHeader, arch Arch) error {
	switch hdr.OSABI {
	case elf.ELFOSABI_NONE, elf.ELFOSABI_LINUX:
		// supported, pass
	default:
		return fmt.Errorf("%w: %s", ErrOSABINotSupported, hdr.OSABI)
	}

	archReq, err := ArchFor(hdr.Machine)
	if err != nil {
		return err
	}

	if archReq != arch {
		return fmt.Errorf(
			"%w: %s on %s",
			ErrMachineNotSupported,
			hdr.Machine,
			arch,
		)
	}

	return nil
}

// CompatibleELF reports whether two ELF headers can be loaded into the same
// process. The dynamic loader silently skips incompatible candidates.
func CompatibleELF(a, b elf.FileHeader) bool {
	return a.Class == b.Class &&
		a.Machine == b.Machine &&
		a.Data == b.Data
}

// ReadELFArch returns the [Arch] of the ELF file with the given path.
func ReadELFArch(path string) (Arch, error) {
	file, err := OpenELF(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	err = ValidateELF(file.FileHeader, Native)
	if err != nil && !errors.Is(err, ErrMachineNotSupported) {
		return "", err
	}

	return ArchFor(file.Machine)
}

// OpenELF opens the ELF file with the given path. If the file does not have
// an ELF magic number or is too short for an ELF header, [ErrNotELFFile] is
// returned.
func OpenELF(path string) (*elf.File, error) {
	file, err := elf.Open(path)
	if err != nil {
		if strings.Contains(err.Error(), "bad magic number") ||
			errors.Is(err, io.EOF) ||
			errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotELFFile)
		}

		return nil, fmt.Errorf("open elf: %w", err)
	}

	return file, nil
}
