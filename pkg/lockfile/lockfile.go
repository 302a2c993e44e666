// Package lockfile reads Cargo.lock files.
package lockfile

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Package is a [[package]] entry of a lock file.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Source is where the package comes from, e.g.
	// "registry+https://github.com/rust-lang/crates.io-index". It is empty
	// for path dependencies and for the workspace members themselves.
	Source string `toml:"source"`
}

func (p Package) String() string {
	return p.Name + "@" + p.Version
}

type LockFile struct {
	Version int `toml:"version"`

	// Packages are in lock file order.
	Packages []Package `toml:"package"`
}

func Load(path string) (*LockFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	lf, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("while parsing '%s': %w", path, err)
	}
	return lf, nil
}

func Parse(b []byte) (*LockFile, error) {
	var lf LockFile
	if err := toml.Unmarshal(b, &lf); err != nil {
		return nil, err
	}
	return &lf, nil
}

// Find returns the packages called name. An empty version matches any.
func (lf *LockFile) Find(name, version string) []Package {
	var out []Package
	for _, p := range lf.Packages {
		if p.Name != name {
			continue
		}
		if version != "" && p.Version != version {
			continue
		}
		out = append(out, p)
	}
	return out
}
