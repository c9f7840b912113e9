// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/aibor/shlib/internal/artifact"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the default file name of a build description.
const DefaultFile = "shlib.yaml"

// Kind is the kind of a build target.
type Kind string

const (
	KindLibrary    Kind = "library"
	KindExecutable Kind = "executable"
)

// Visibility of an include directory.
type Visibility string

const (
	// VisibilityPrivate dirs are used for the target only.
	VisibilityPrivate Visibility = "private"
	// VisibilityPublic dirs are used for the target and targets linking it.
	VisibilityPublic Visibility = "public"
	// VisibilityInterface dirs are used for targets linking it only.
	VisibilityInterface Visibility = "interface"
)

// UnmarshalYAML implements [yaml.Unmarshaler].
func (v *Visibility) UnmarshalYAML(node *yaml.Node) error {
	var s string

	err := node.Decode(&s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	switch Visibility(s) {
	case "":
		*v = VisibilityPrivate
	case VisibilityPrivate, VisibilityPublic, VisibilityInterface:
		*v = Visibility(s)
	default:
		return fmt.Errorf("line %d: %w: %q", node.Line, ErrInvalidVisibility, s)
	}

	return nil
}

// IncludeDir is an include directory of a target.
type IncludeDir struct {
	Path       string     `yaml:"path"`
	Visibility Visibility `yaml:"visibility"`
}

// UnmarshalYAML implements [yaml.Unmarshaler]. A plain string is a private
// directory.
func (d *IncludeDir) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Visibility = VisibilityPrivate
		return node.Decode(&d.Path) //nolint:wrapcheck
	}

	type plain IncludeDir

	p := plain{Visibility: VisibilityPrivate}

	err := node.Decode(&p)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*d = IncludeDir(p)

	return nil
}

// Target is a library or executable built from sources.
type Target struct {
	Kind Kind `yaml:"-"`

	Name    string   `yaml:"name"`
	Sources []string `yaml:"sources"`
	// PublicHeader is installed along with a library.
	PublicHeader string       `yaml:"publicHeader,omitempty"`
	IncludeDirs  []IncludeDir `yaml:"includeDirs,omitempty"`
	Defines      []string     `yaml:"defines,omitempty"`
	// Links are libraries of the same description.
	Links []string `yaml:"links,omitempty"`
	// SystemLibraries are libraries found by the linker, like "m".
	SystemLibraries []string `yaml:"systemLibraries,omitempty"`
	// RunPath is embedded into executables.
	RunPath []string `yaml:"runPath,omitempty"`
}

// Install describes the install destinations, relative to Prefix.
type Install struct {
	Prefix     string `yaml:"prefix"`
	LibDir     string `yaml:"libDir"`
	IncludeDir string `yaml:"includeDir"`
	BinDir     string `yaml:"binDir"`
}

// Description is a parsed build description.
type Description struct {
	Project     string    `yaml:"project"`
	Version     string    `yaml:"version,omitempty"`
	Libraries   []*Target `yaml:"libraries"`
	Executables []*Target `yaml:"executables"`
	Install     Install   `yaml:"install"`
}

// Load reads and validates the build description file with the given path.
func Load(path string) (*Description, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open build description: %w", err)
	}
	defer file.Close()

	desc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return desc, nil
}

// Parse reads and validates a build description. Unknown fields are
// rejected. Install defaults are applied.
func Parse(r io.Reader) (*Description, error) {
	var desc Description

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(&desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	desc.setDefaults()

	err = desc.Validate()
	if err != nil {
		return nil, err
	}

	return &desc, nil
}

func (d *Description) setDefaults() {
	for _, target := range d.Libraries {
		target.Kind = KindLibrary
	}

	for _, target := range d.Executables {
		target.Kind = KindExecutable
	}

	if d.Install.Prefix == "" {
		d.Install.Prefix = "/usr/local"
	}

	if d.Install.LibDir == "" {
		d.Install.LibDir = "lib"
	}

	if d.Install.IncludeDir == "" {
		d.Install.IncludeDir = "include"
	}

	if d.Install.BinDir == "" {
		d.Install.BinDir = "bin"
	}
}

// Targets returns all libraries followed by all executables, in
// declaration order.
func (d *Description) Targets() []*Target {
	return slices.Concat(d.Libraries, d.Executables)
}

// Target returns the target with the given name.
func (d *Description) Target(name string) (*Target, error) {
	idx := slices.IndexFunc(d.Targets(), func(t *Target) bool {
		return t.Name == name
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}

	return d.Targets()[idx], nil
}

// Validate checks the description for consistency. All problems found are
// returned joined.
func (d *Description) Validate() error {
	var errs []error

	if d.Project == "" {
		errs = append(errs, errors.New("project name missing"))
	}

	names := make(map[string]Kind)

	for _, target := range d.Targets() {
		errs = append(errs, target.validate()...)

		if _, exists := names[target.Name]; exists {
			errs = append(errs, fmt.Errorf("duplicate target %q", target.Name))
		}

		names[target.Name] = target.Kind
	}

	for _, target := range d.Targets() {
		for _, link := range target.Links {
			kind, exists := names[link]

			switch {
			case !exists:
				errs = append(errs, fmt.Errorf("target %q: %w %q", target.Name, ErrUnknownTarget, link))
			case kind != KindLibrary:
				errs = append(errs, fmt.Errorf("target %q: cannot link %s %q", target.Name, kind, link))
			case link == target.Name:
				errs = append(errs, fmt.Errorf("target %q: %w: links itself", target.Name, ErrCycle))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	_, err := d.Order()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

func (t *Target) validate() []error {
	var errs []error

	if t.Name == "" {
		return []error{fmt.Errorf("%s without name", t.Kind)}
	}

	if t.Kind == KindLibrary {
		err := artifact.ValidateLibraryName(t.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("library %q: %w", t.Name, err))
		}
	}

	if t.Kind == KindExecutable && t.PublicHeader != "" {
		errs = append(errs, fmt.Errorf("executable %q: public header not supported", t.Name))
	}

	if len(t.Sources) == 0 {
		errs = append(errs, fmt.Errorf("%s %q: no sources", t.Kind, t.Name))
	}

	for _, lib := range t.SystemLibraries {
		err := artifact.ValidateLibraryName(lib)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: system library: %w", t.Kind, t.Name, err))
		}
	}

	return errs
}
