// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
)

func setupLogging(writer io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		writer,
		&slog.HandlerOptions{
			Level: level,
		},
	)))
}

// debugDump logs a deep dump of the given value if debug logging is enabled.
func debugDump(ctx context.Context, msg string, value any) {
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	dumper := spew.NewDefaultConfig()
	dumper.MaxDepth = 5
	dumper.DisablePointerAddresses = true
	dumper.SortKeys = true

	slog.DebugContext(ctx, msg, slog.String("dump", dumper.Sdump(value)))
}
