// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

// Matches the dynamic loader's diagnostic, like
// "./main: error while loading shared libraries: libtutorial.so: cannot
// open shared object file: No such file or directory".
var loaderErrorRE = regexp.MustCompile(
	`error while loading shared libraries: ([^:]+): cannot open shared object file`,
)

// parseStderr copies the program's stderr to the output until the input is
// closed. It returns the name of the library the system's dynamic loader
// reported as missing, if any.
func parseStderr(input io.Reader, output io.Writer) (string, error) {
	var missing string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Bytes()

		if match := loaderErrorRE.FindSubmatch(line); match != nil && missing == "" {
			missing = string(match[1])
		}

		_, err := fmt.Fprintf(output, "%s\n", line)
		if err != nil {
			return missing, fmt.Errorf("print: %w", err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return missing, fmt.Errorf("scan: %w", err)
	}

	return missing, nil
}
