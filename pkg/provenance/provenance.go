// Package provenance finds the license document of a package by asking a
// chain of probers, and records where the document came from.
package provenance

import (
	"context"
	"fmt"

	"github.com/jakexks/license-hound/pkg/license"
)

// Kind tells which prober produced a license document.
type Kind int

const (
	// PackageTree documents are files shipped with the package sources. The
	// locator is the file name.
	PackageTree Kind = iota
	// HostedAPI documents come from GitHub's license endpoint. The locator is
	// the download URL GitHub reported.
	HostedAPI
	// HostedRepo documents are raw files guessed in the GitHub repository.
	// The locator is the raw URL.
	HostedRepo
)

func (k Kind) String() string {
	switch k {
	case PackageTree:
		return "package_tree"
	case HostedAPI:
		return "github_api"
	case HostedRepo:
		return "github_repo"
	}
	panic(fmt.Sprintf("provenance: unknown kind %d", int(k)))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Source is where a license document was found.
type Source struct {
	Kind    Kind   `json:"kind"`
	Locator string `json:"locator"`
}

func FromPackageTree(file string) Source { return Source{Kind: PackageTree, Locator: file} }
func FromHostedAPI(url string) Source    { return Source{Kind: HostedAPI, Locator: url} }
func FromHostedRepo(url string) Source   { return Source{Kind: HostedRepo, Locator: url} }

func (s Source) String() string {
	return s.Kind.String() + ":" + s.Locator
}

// Target is the package a prober looks for a license for.
type Target struct {
	Name    string
	Version string
	// Dir is the unpacked source tree of the package on disk.
	Dir string
	// Repository is the repository URL declared by the package, possibly
	// empty.
	Repository string
}

// Found is a license document and its provenance.
type Found struct {
	Source Source
	Text   string
}

// Prober looks for the license document of a package in one place. Not
// finding it is not an error: ok is false and the next prober is tried.
type Prober interface {
	Name() string
	Probe(ctx context.Context, t Target, id license.ID) (found Found, ok bool)
}

// Outcome of a single probe.
type Outcome string

const (
	Hit  Outcome = "hit"
	Miss Outcome = "miss"
	// Skip is a prober that does not apply to the package, e.g. a GitHub
	// prober for a package hosted elsewhere.
	Skip Outcome = "skip"
)

// Applicable is implemented by probers that only serve some packages. They
// are not asked about the others.
type Applicable interface {
	Applies(t Target) bool
}

// Observer is told about the outcome of every probe.
type Observer interface {
	ObserveProbe(prober string, outcome Outcome)
}

// Resolver asks its probers in order and returns the first document found.
type Resolver struct {
	Probers []Prober
	// Observer is used by Resolve, it may be nil.
	Observer Observer
}

// NewChain returns the standard resolution order: package tree first, then
// the GitHub license API, then raw files of the GitHub repository.
func NewChain(local, api, raw Prober) *Resolver {
	return &Resolver{Probers: []Prober{local, api, raw}}
}

func (r *Resolver) Resolve(ctx context.Context, t Target, id license.ID) (Found, bool) {
	return r.ResolveWith(ctx, t, id, r.Observer)
}

// ResolveWith is Resolve reporting to obs instead of r.Observer.
func (r *Resolver) ResolveWith(ctx context.Context, t Target, id license.ID, obs Observer) (Found, bool) {
	observe := func(p Prober, o Outcome) {
		if obs != nil {
			obs.ObserveProbe(p.Name(), o)
		}
	}

	for _, p := range r.Probers {
		if a, ok := p.(Applicable); ok && !a.Applies(t) {
			observe(p, Skip)
			continue
		}
		found, ok := p.Probe(ctx, t, id)
		if !ok {
			observe(p, Miss)
			continue
		}
		observe(p, Hit)
		return found, true
	}
	return Found{}, false
}
