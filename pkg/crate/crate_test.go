package crate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakexks/license-hound/pkg/lockfile"
)

const registry = "registry+https://github.com/rust-lang/crates.io-index"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
[package]
name = "regex"
version = "1.10.2"
license = "MIT OR Apache-2.0"
repository = "https://github.com/rust-lang/regex"
documentation = "https://docs.rs/regex"

[dependencies]
memchr = "2"
`))
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		Name:          "regex",
		Version:       "1.10.2",
		License:       "MIT OR Apache-2.0",
		Repository:    "https://github.com/rust-lang/regex",
		Documentation: "https://docs.rs/regex",
	}, m)
}

func TestParseManifest_WorkspaceInherited(t *testing.T) {
	m, err := ParseManifest([]byte(`
[package]
name = "member"
version.workspace = true
license.workspace = true
`))
	require.NoError(t, err)
	assert.Equal(t, "member", m.Name)
	assert.Empty(t, m.Version)
	assert.Empty(t, m.License)
}

func TestParseManifest_NoPackage(t *testing.T) {
	_, err := ParseManifest([]byte("[workspace]\nmembers = [\"a\"]\n"))
	assert.Error(t, err)
}

func TestLink(t *testing.T) {
	c := &Crate{Manifest: Manifest{Homepage: "h", Repository: "r", Documentation: "d"}}
	assert.Equal(t, "h", c.Link())
	c.Manifest.Homepage = ""
	assert.Equal(t, "r", c.Link())
	c.Manifest.Repository = ""
	assert.Equal(t, "d", c.Link())
	c.Manifest.Documentation = ""
	assert.Empty(t, c.Link())
}

func TestLocate_Registry(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, "registry", "src", "index.crates.io-6f17d22bba15001f", "memchr-2.7.1", "Cargo.toml"),
		"[package]\nname = \"memchr\"\nversion = \"2.7.1\"\nlicense = \"Unlicense OR MIT\"\n")

	l := &Locator{CargoHome: home}
	c, err := l.Locate(lockfile.Package{Name: "memchr", Version: "2.7.1", Source: registry})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "registry", "src", "index.crates.io-6f17d22bba15001f", "memchr-2.7.1"), c.Dir)
	assert.Equal(t, "Unlicense OR MIT", c.Manifest.License)

	_, err = l.Locate(lockfile.Package{Name: "memchr", Version: "2.5.0", Source: "sparse+https://index.crates.io/"})
	assert.ErrorIs(t, err, ErrNotDownloaded)
}

func TestLocate_Git(t *testing.T) {
	home := t.TempDir()
	checkout := filepath.Join(home, "git", "checkouts", "forked-1a2b3c4d5e6f7a8b", "0123456")
	writeFile(t, filepath.Join(checkout, "Cargo.toml"), "[workspace]\nmembers = [\"core\", \"cli\"]\n")
	writeFile(t, filepath.Join(checkout, "cli", "Cargo.toml"), "[package]\nname = \"forked-cli\"\nversion = \"0.3.0\"\n")
	writeFile(t, filepath.Join(checkout, "core", "Cargo.toml"), "[package]\nname = \"forked\"\nversion = \"0.3.0\"\nlicense = \"MPL-2.0\"\n")
	writeFile(t, filepath.Join(checkout, "target", "package", "forked-0.3.0", "Cargo.toml"), "[package]\nname = \"forked\"\nversion = \"0.3.0\"\n")

	l := &Locator{CargoHome: home}
	c, err := l.Locate(lockfile.Package{
		Name:    "forked",
		Version: "0.3.0",
		Source:  "git+https://github.com/someone/forked?branch=main#0123456789abcdef0123456789abcdef01234567",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(checkout, "core"), c.Dir)
	assert.Equal(t, "MPL-2.0", c.Manifest.License)

	_, err = l.Locate(lockfile.Package{
		Name:    "forked",
		Version: "0.3.0",
		Source:  "git+https://github.com/someone/forked#fedcba9876543210",
	})
	assert.ErrorIs(t, err, ErrNotDownloaded)
}

func TestLocate_Unsupported(t *testing.T) {
	l := &Locator{CargoHome: t.TempDir()}
	for _, src := range []string{"", "path+file:///tmp/x", "git+https://github.com/a/b", "git+https://github.com/a/b#abc"} {
		_, err := l.Locate(lockfile.Package{Name: "x", Version: "1.0.0", Source: src})
		assert.ErrorIs(t, err, ErrUnsupportedSource, src)
	}
}

func TestDefaultCargoHome(t *testing.T) {
	t.Setenv("CARGO_HOME", "/opt/cargo")
	assert.Equal(t, "/opt/cargo", DefaultCargoHome())
}
