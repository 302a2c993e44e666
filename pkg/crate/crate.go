// Package crate finds the unpacked sources of locked packages in the local
// Cargo cache and reads their manifests. It does not download anything:
// run "cargo fetch" beforehand.
package crate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jakexks/license-hound/pkg/lockfile"
)

var (
	ErrNotDownloaded     = errors.New("package sources not found in the cargo cache, run 'cargo fetch' first")
	ErrUnsupportedSource = errors.New("unsupported package source")
)

// Manifest is the part of Cargo.toml's [package] table license-hound uses.
// Fields inherited from a workspace are left empty.
type Manifest struct {
	Name          string
	Version       string
	License       string
	LicenseFile   string
	Homepage      string
	Repository    string
	Documentation string
}

// Crate is a package unpacked on disk.
type Crate struct {
	// Dir is the directory holding Cargo.toml.
	Dir          string
	ManifestPath string
	Manifest     Manifest
}

// Link is the best URL to point readers of the report to.
func (c *Crate) Link() string {
	switch {
	case c.Manifest.Homepage != "":
		return c.Manifest.Homepage
	case c.Manifest.Repository != "":
		return c.Manifest.Repository
	default:
		return c.Manifest.Documentation
	}
}

func ReadManifest(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(b)
}

func ParseManifest(b []byte) (Manifest, error) {
	var raw struct {
		Package map[string]interface{} `toml:"package"`
	}
	if err := toml.Unmarshal(b, &raw); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	if raw.Package == nil {
		return Manifest{}, errors.New("parsing manifest: no [package] table")
	}

	str := func(key string) string {
		s, _ := raw.Package[key].(string)
		return s
	}
	return Manifest{
		Name:          str("name"),
		Version:       str("version"),
		License:       str("license"),
		LicenseFile:   str("license-file"),
		Homepage:      str("homepage"),
		Repository:    str("repository"),
		Documentation: str("documentation"),
	}, nil
}

// Locator finds packages in a Cargo home directory.
type Locator struct {
	CargoHome string
}

// DefaultCargoHome is $CARGO_HOME, or ~/.cargo.
func DefaultCargoHome() string {
	if h := os.Getenv("CARGO_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cargo"
	}
	return filepath.Join(home, ".cargo")
}

func (l *Locator) Locate(p lockfile.Package) (*Crate, error) {
	switch {
	case strings.HasPrefix(p.Source, "registry+"), strings.HasPrefix(p.Source, "sparse+"):
		return l.fromRegistry(p)
	case strings.HasPrefix(p.Source, "git+"):
		return l.fromGit(p)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, p.Source)
}

// Registry sources are unpacked in registry/src/<index>-<hash>/<name>-<version>.
func (l *Locator) fromRegistry(p lockfile.Package) (*Crate, error) {
	pattern := filepath.Join(l.CargoHome, "registry", "src", "*", p.Name+"-"+p.Version, "Cargo.toml")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("while looking for %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", p, ErrNotDownloaded)
	}
	return load(matches[0])
}

// Git sources are checked out in git/checkouts/<repo>-<hash>/<short rev>.
// A repository may hold a whole workspace, so the right Cargo.toml has to be
// searched for.
func (l *Locator) fromGit(p lockfile.Package) (*Crate, error) {
	i := strings.LastIndex(p.Source, "#")
	if i < 0 || len(p.Source)-i-1 < 7 {
		return nil, fmt.Errorf("%w: no revision in %q", ErrUnsupportedSource, p.Source)
	}
	short := p.Source[i+1 : i+8]

	checkouts, err := filepath.Glob(filepath.Join(l.CargoHome, "git", "checkouts", "*", short))
	if err != nil {
		return nil, fmt.Errorf("while looking for the checkout of %s: %w", p, err)
	}

	for _, checkout := range checkouts {
		var found *Crate
		err := filepath.WalkDir(checkout, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" || d.Name() == "target" {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() != "Cargo.toml" {
				return nil
			}
			c, err := load(path)
			if err != nil {
				// Workspace roots have no [package] table.
				return nil
			}
			if c.Manifest.Name == p.Name && c.Manifest.Version == p.Version {
				found = c
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking the tree starting at '%s': %w", checkout, err)
		}
		if found != nil {
			return found, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", p, ErrNotDownloaded)
}

func load(manifestPath string) (*Crate, error) {
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("while reading '%s': %w", manifestPath, err)
	}
	return &Crate{
		Dir:          filepath.Dir(manifestPath),
		ManifestPath: manifestPath,
		Manifest:     m,
	}, nil
}
