// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package project

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"
)

// Order returns all targets in build order: every library before the
// targets linking it. Independent targets keep their declaration order.
func (d *Description) Order() ([]*Target, error) {
	targets := d.Targets()

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, target := range targets {
		err := g.AddVertex(target.Name)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", target.Name, err)
		}
	}

	for _, target := range targets {
		for _, link := range target.Links {
			err := g.AddEdge(link, target.Name)
			if err != nil {
				switch {
				case errors.Is(err, graph.ErrEdgeCreatesCycle):
					return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, target.Name, link)
				case errors.Is(err, graph.ErrVertexNotFound):
					return nil, fmt.Errorf("target %q: %w %q", target.Name, ErrUnknownTarget, link)
				case errors.Is(err, graph.ErrEdgeAlreadyExists):
					continue
				default:
					return nil, fmt.Errorf("link %s -> %s: %w", target.Name, link, err)
				}
			}
		}
	}

	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("order targets: %w", err)
	}

	ordered := make([]*Target, 0, len(targets))
	done := make(map[string]bool, len(targets))

	// The graph is acyclic, so each pass finds at least one target.
	for len(ordered) < len(targets) {
		for _, target := range targets {
			if done[target.Name] || !allDone(predecessors[target.Name], done) {
				continue
			}

			done[target.Name] = true
			ordered = append(ordered, target)

			break
		}
	}

	return ordered, nil
}

func allDone[E any](edges map[string]E, done map[string]bool) bool {
	for name := range edges {
		if !done[name] {
			return false
		}
	}

	return true
}

// LinkClosure returns the names of all libraries the given target links,
// directly or transitively, in link order: each library before the
// libraries it depends on.
func (d *Description) LinkClosure(name string) ([]string, error) {
	var closure []string

	visited := make(map[string]bool)

	var visit func(name string) error

	visit = func(name string) error {
		target, err := d.Target(name)
		if err != nil {
			return err
		}

		for _, link := range target.Links {
			if visited[link] {
				continue
			}

			visited[link] = true
			closure = append(closure, link)

			err := visit(link)
			if err != nil {
				return err
			}
		}

		return nil
	}

	err := visit(name)
	if err != nil {
		return nil, err
	}

	return closure, nil
}

// IncludeDirsFor returns the include directories used to compile the
// sources of the given target: its own private and public directories,
// followed by the public and interface directories of the libraries it links
// directly. Libraries are linked privately, so their dependencies' include
// directories do not propagate.
func (d *Description) IncludeDirsFor(name string) ([]string, error) {
	target, err := d.Target(name)
	if err != nil {
		return nil, err
	}

	var dirs []string

	add := func(dir IncludeDir, visibilities ...Visibility) {
		if slices.Contains(visibilities, dir.Visibility) && !slices.Contains(dirs, dir.Path) {
			dirs = append(dirs, dir.Path)
		}
	}

	for _, dir := range target.IncludeDirs {
		add(dir, VisibilityPrivate, VisibilityPublic)
	}

	for _, link := range target.Links {
		lib, err := d.Target(link)
		if err != nil {
			return nil, err
		}

		for _, dir := range lib.IncludeDirs {
			add(dir, VisibilityPublic, VisibilityInterface)
		}
	}

	return dirs, nil
}
