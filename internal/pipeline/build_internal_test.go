// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"tutorial.c", "tutorial.o"},
		{"src/tutorial.c", "src_tutorial.o"},
		{"./src/../lib/a.c", "lib_a.o"},
		{"../shared/b.c", "___shared_b.o"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, objectName(tt.source))
		})
	}
}
