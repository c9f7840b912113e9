// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"debug/elf"
	"fmt"
	"runtime"
)

type Arch string

// Supported architectures.
const (
	AMD64   Arch = "amd64"
	ARM64   Arch = "arm64"
	RISCV64 Arch = "riscv64"
)

// Native is the architecture of the host.
const Native Arch = Arch(runtime.GOARCH)

func (a *Arch) String() string {
	return string(*a)
}

func (a *Arch) IsNative() bool {
	return Native == *a
}

func (a *Arch) Set(s string) error {
	switch Arch(s) {
	case AMD64, ARM64, RISCV64:
		*a = Arch(s)
	default:
		return fmt.Errorf("%w: %s", ErrArchNotSupported, s)
	}

	return nil
}

// Machine returns the ELF machine type of the architecture.
func (a *Arch) Machine() (elf.Machine, error) {
	switch *a {
	case AMD64:
		return elf.EM_X86_64, nil
	case ARM64:
		return elf.EM_AARCH64, nil
	case RISCV64:
		return elf.EM_RISCV, nil
	default:
		return elf.EM_NONE, fmt.Errorf("%w: %s", ErrArchNotSupported, *a)
	}
}

// Multiarch returns the Debian style multiarch tuple used for library
// directories, like "x86_64-linux-gnu".
func (a *Arch) Multiarch() string {
	switch *a {
	case AMD64:
		return "x86_64-linux-gnu"
	case ARM64:
		return "aarch64-linux-gnu"
	case RISCV64:
		return "riscv64-linux-gnu"
	default:
		return ""
	}
}

// ArchFor returns the [Arch] matching the given ELF machine type.
func ArchFor(machine elf.Machine) (Arch, error) {
	switch machine {
	case elf.EM_X86_64:
		return AMD64, nil
	case elf.EM_AARCH64:
		return ARM64, nil
	case elf.EM_RISCV:
		return RISCV64, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrMachineNotSupported, machine)
	}
}
