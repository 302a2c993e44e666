// Package checker audits the packages of a lock file: it picks the license
// to audit from each package's declaration, finds the license document and
// extracts the copyright notice from it.
package checker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kr/pretty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakexks/license-hound/pkg/config"
	"github.com/jakexks/license-hound/pkg/copyright"
	"github.com/jakexks/license-hound/pkg/crate"
	"github.com/jakexks/license-hound/pkg/github"
	"github.com/jakexks/license-hound/pkg/license"
	"github.com/jakexks/license-hound/pkg/lockfile"
	"github.com/jakexks/license-hound/pkg/metrics"
	"github.com/jakexks/license-hound/pkg/provenance"
)

// Locator finds the sources of a locked package.
type Locator interface {
	Locate(p lockfile.Package) (*crate.Crate, error)
}

type Checker struct {
	Log      *zap.SugaredLogger
	Locator  Locator
	Resolver *provenance.Resolver
	// Metrics is optional. When set, it also counts the probes of Resolver,
	// unless Resolver has an Observer of its own.
	Metrics *metrics.Metrics
	// Hints turns on go-license-detector when no license file is found, to
	// tell the operator where the license might be.
	Hints bool
}

// New wires the standard resolution chain from cfg.
func New(cfg *config.Config, log *zap.SugaredLogger, m *metrics.Metrics) (*Checker, error) {
	client, err := github.NewClient(cfg.GitHub, log)
	if err != nil {
		return nil, err
	}

	local := &provenance.Local{Log: log}
	if cfg.LicensesDir != "" {
		d, err := license.NewDetector(cfg.LicensesDir, 0.8)
		if err != nil {
			return nil, err
		}
		local.Detector = d
	}

	return &Checker{
		Log:      log,
		Locator:  &crate.Locator{CargoHome: cfg.CargoHome},
		Resolver: provenance.NewChain(local, &github.LicenseAPI{Client: client}, &github.Raw{Client: client}),
		Metrics:  m,
		Hints:    true,
	}, nil
}

// Chase audits one package. Failures end up in the report, never in an
// error.
func (c *Checker) Chase(ctx context.Context, p lockfile.Package) Report {
	r := Report{PackageName: p.Name, Version: p.Version}

	desc, err := c.chase(ctx, p)
	if err != nil {
		var lerr *LicenseError
		if !errors.As(err, &lerr) {
			lerr = newError(SourceUnavailable, p.Source, err)
		}
		r.Conclusion.Err = lerr
		c.Log.Debugf("package %s: %v", p, lerr)
	} else {
		r.Conclusion.Description = desc
	}

	if c.Metrics != nil {
		c.Metrics.ObserveConclusion(r.Conclusion.Label())
	}
	return r
}

func (c *Checker) chase(ctx context.Context, p lockfile.Package) (*Description, error) {
	if p.Source == "" {
		return nil, newError(NoSource, "", nil)
	}

	cr, err := c.Locator.Locate(p)
	if err != nil {
		return nil, newError(SourceUnavailable, p.Source, err)
	}
	c.Log.Debugf("package %s: manifest %# v", p, pretty.Formatter(cr.Manifest))

	declared := cr.Manifest.License
	if declared == "" {
		if f := cr.Manifest.LicenseFile; f != "" {
			c.Log.Infof("package %s: no SPDX license declared, only a custom license file: %s", p, filepath.Join(cr.Dir, f))
		}
		return nil, newError(LicenseNotDeclared, cr.ManifestPath, nil)
	}

	chosen, err := license.Choose(declared)
	if err != nil {
		return nil, newError(UnacceptableLicense, declared, nil)
	}

	target := provenance.Target{
		Name:       p.Name,
		Version:    p.Version,
		Dir:        cr.Dir,
		Repository: cr.Manifest.Repository,
	}
	found, ok := c.Resolver.ResolveWith(ctx, target, chosen, c.probeObserver())
	if !ok {
		c.logHints(p, cr.Dir)
		return nil, newError(UnableToRecoverLicenseFile, cr.Dir, nil)
	}

	notice, err := copyright.Extract(found.Text)
	if err != nil {
		return nil, newError(UnableToRecoverAttribution, found.Text, nil)
	}

	return &Description{
		ChosenLicense:       chosen,
		LicenseType:         chosen.Type(),
		CopyrightNotice:     notice,
		FullSPDXLicense:     declared,
		FullLicenseDocument: found.Text,
		LicenseSource:       found.Source,
		Link:                cr.Link(),
		SourceDir:           cr.Dir,
	}, nil
}

func (c *Checker) probeObserver() provenance.Observer {
	if c.Resolver.Observer != nil {
		return c.Resolver.Observer
	}
	if c.Metrics != nil {
		return c.Metrics
	}
	return nil
}

func (c *Checker) logHints(p lockfile.Package, dir string) {
	if !c.Hints {
		return
	}
	for _, h := range license.Hints(dir) {
		c.Log.Infof("package %s: no license file found with a conventional name, but %s", p, h)
	}
}

// ChaseAll audits pkgs, up to jobs at a time. Reports are in the order of
// pkgs whatever jobs is.
func (c *Checker) ChaseAll(ctx context.Context, pkgs []lockfile.Package, jobs int) []Report {
	reports := make([]Report, len(pkgs))

	if jobs <= 1 {
		for i, p := range pkgs {
			reports[i] = c.Chase(ctx, p)
		}
		return reports
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, p := range pkgs {
		g.Go(func() error {
			reports[i] = c.Chase(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// Summary counts reports by conclusion label.
func Summary(reports []Report) map[string]int {
	out := make(map[string]int)
	for _, r := range reports {
		out[r.Conclusion.Label()]++
	}
	return out
}

func (r Report) String() string {
	if r.Conclusion.OK() {
		d := r.Conclusion.Description
		return fmt.Sprintf("package %s@%s: %s (%s) from %s", r.PackageName, r.Version, d.ChosenLicense, d.LicenseType, d.LicenseSource)
	}
	return fmt.Sprintf("package %s@%s: %v", r.PackageName, r.Version, r.Conclusion.Err)
}
