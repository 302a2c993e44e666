package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jakexks/license-hound/pkg/license"
	"github.com/jakexks/license-hound/pkg/provenance"
)

// Raw guesses license file names in the repository's branch and fetches
// them from raw.githubusercontent.com.
type Raw struct {
	Client *Client
}

// Applies is false for packages not hosted on GitHub.
func (p *Raw) Applies(t provenance.Target) bool {
	_, ok := ParseRepoURL(t.Repository)
	return ok
}

func (p *Raw) Name() string { return "github_repo" }

func (p *Raw) Probe(ctx context.Context, t provenance.Target, id license.ID) (provenance.Found, bool) {
	repo, ok := ParseRepoURL(t.Repository)
	if !ok {
		return provenance.Found{}, false
	}
	return p.probe(ctx, repo, id)
}

func (p *Raw) probe(ctx context.Context, repo Repo, id license.ID) (provenance.Found, bool) {
	c := p.Client
	for _, candidate := range license.GuessFilenames(id) {
		url := fmt.Sprintf("%s/%s/%s/%s/%s", c.cfg.RawBase, repo.Owner, repo.Name, c.cfg.Branch, candidate.Name())

		resp, err := c.get(ctx, url)
		if err != nil {
			c.log.Debugf("%v", err)
			continue
		}

		// Being forbidden is not about this file in particular, the other
		// candidates would be forbidden too.
		if resp.status == http.StatusForbidden {
			c.forbidden(url, resp.body)
			return provenance.Found{}, false
		}

		if isSuccess(resp.status) {
			return provenance.Found{Source: provenance.FromHostedRepo(url), Text: string(resp.body)}, true
		}
	}

	return provenance.Found{}, false
}
