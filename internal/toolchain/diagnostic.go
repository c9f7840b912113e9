// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package toolchain

import (
	"bufio"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Severity of a compiler diagnostic.
type Severity string

const (
	SeverityNote    Severity = "note"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal error"
)

// Diagnostic is a single message emitted by the compiler for a location in a
// translation unit.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
	// Option is the compiler option controlling the diagnostic, like
	// "-Wimplicit-function-declaration". Empty if there is none.
	Option string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
	if d.Option != "" {
		s += " [" + d.Option + "]"
	}

	return s
}

// IsImplicitDeclaration returns true if the diagnostic reports the use of a
// function without a visible declaration.
func (d Diagnostic) IsImplicitDeclaration() bool {
	return d.Option == "-Wimplicit-function-declaration" ||
		strings.Contains(d.Message, "implicit declaration of function") ||
		strings.Contains(d.Message, "call to undeclared function")
}

var (
	diagnosticRegexp = regexp.MustCompile(
		`^(.+?):(\d+):(?:(\d+):)? (note|warning|error|fatal error): (.*?)(?: \[(-W[^\]]+)\])?$`,
	)

	// GNU ld: "main.c:(.text+0x1a): undefined reference to `tutorial_print'"
	// lld: "ld.lld: error: undefined symbol: tutorial_print"
	undefinedRefRegexp = regexp.MustCompile(
		"(?:undefined reference to [`'‘]([^'’]+)['’]|undefined symbol: (\\S+))",
	)
)

// ParseDiagnostics parses the diagnostics from compiler output. Lines that are
// not diagnostics, like source excerpts, are ignored.
func ParseDiagnostics(output string) []Diagnostic {
	var diagnostics []Diagnostic

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		match := diagnosticRegexp.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}

		line, _ := strconv.Atoi(match[2])
		column, _ := strconv.Atoi(match[3])

		diagnostics = append(diagnostics, Diagnostic{
			File:     match[1],
			Line:     line,
			Column:   column,
			Severity: Severity(match[4]),
			Message:  match[5],
			Option:   match[6],
		})
	}

	return diagnostics
}

// ParseUndefinedReferences returns the names of all symbols the linker
// reported as undefined, sorted and deduplicated.
func ParseUndefinedReferences(output string) []string {
	var symbols []string

	for _, match := range undefinedRefRegexp.FindAllStringSubmatch(output, -1) {
		sym := match[1]
		if sym == "" {
			sym = match[2]
		}

		if !slices.Contains(symbols, sym) {
			symbols = append(symbols, sym)
		}
	}

	slices.Sort(symbols)

	return symbols
}

// filterSeverity returns the diagnostics with the given severity.
func filterSeverity(diagnostics []Diagnostic, severity ...Severity) []Diagnostic {
	var result []Diagnostic

	for _, d := range diagnostics {
		if slices.Contains(severity, d.Severity) {
			result = append(result, d)
		}
	}

	return result
}
