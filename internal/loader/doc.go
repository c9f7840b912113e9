// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package loader implements the load stage: resolving the shared libraries
// an executable requires through the run-time search path list, running the
// executable with exactly that list and loading shared libraries into the
// current process.
//
// The resolution follows the search order of the GNU dynamic loader, so a
// missing library is reported before the program is started.
package loader
