// Package license knows the small set of licenses license-hound accepts, how
// their files are usually named, and how to pick one from a declaration.
package license

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/licenseclassifier"
)

// ID is one of the licenses license-hound is able to audit.
type ID int

const (
	MIT ID = iota
	BSD3Clause
	MPL2
)

// All lists every ID, in declaration order.
var All = []ID{MIT, BSD3Clause, MPL2}

var ErrUnacceptableLicense = errors.New("unacceptable license")

var (
	spdxIDs = map[ID]string{
		MIT:        "MIT",
		BSD3Clause: "BSD-3-Clause",
		MPL2:       "MPL-2.0",
	}
	suffixes = map[ID][]string{
		MIT:        {"-MIT"},
		BSD3Clause: nil,
		MPL2:       nil,
	}
)

// SPDX returns the SPDX code, e.g. "BSD-3-Clause".
func (id ID) SPDX() string {
	return spdxIDs[id]
}

// Suffixes are the file name suffixes that projects use when they ship more
// than one license file, e.g. LICENSE-MIT next to LICENSE-APACHE.
func (id ID) Suffixes() []string {
	return suffixes[id]
}

// Type is the license category as defined by
// https://pkg.go.dev/github.com/google/licenseclassifier#LicenseType, e.g.
// "notice" for MIT or "reciprocal" for MPL-2.0.
func (id ID) Type() string {
	return licenseclassifier.LicenseType(id.SPDX())
}

func (id ID) String() string {
	return id.SPDX()
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.SPDX()), nil
}

// Choose picks the license to audit from a package's SPDX declaration.
//
// The declaration is not parsed: the first of "MIT", "MPL-2.0" and
// "BSD-3-Clause" found as a substring wins. This gives legally wrong answers
// for expressions such as "MIT AND GPL-3.0"; a proper fix needs an SPDX
// expression parser with boolean logic.
func Choose(declaration string) (ID, error) {
	switch {
	case strings.Contains(declaration, "MIT"):
		return MIT, nil
	case strings.Contains(declaration, "MPL-2.0"):
		return MPL2, nil
	case strings.Contains(declaration, "BSD-3-Clause"):
		return BSD3Clause, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnacceptableLicense, declaration)
}

var (
	baseNames  = []string{"LICENSE", "COPYING", "LICENCE"}
	extensions = []string{"", ".txt"}
)

// Candidate is a guessed license file name, split in its three parts.
type Candidate struct {
	Base   string
	Suffix string
	Ext    string
}

func (c Candidate) Name() string {
	return c.Base + c.Suffix + c.Ext
}

// GuessFilenames returns the file names a license is conventionally stored
// under, most likely first. The order is base name, then suffix (the
// license-specific ones before the empty one), then extension. Callers rely
// on it to decide which file wins when a tree holds several of them.
func GuessFilenames(id ID) []Candidate {
	sfx := append(append([]string{}, id.Suffixes()...), "")

	candidates := make([]Candidate, 0, len(baseNames)*len(sfx)*len(extensions))
	for _, base := range baseNames {
		for _, s := range sfx {
			for _, ext := range extensions {
				candidates = append(candidates, Candidate{Base: base, Suffix: s, Ext: ext})
			}
		}
	}
	return candidates
}
