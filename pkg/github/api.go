package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jakexks/license-hound/pkg/license"
	"github.com/jakexks/license-hound/pkg/provenance"
)

var (
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
	ErrNotUTF8             = errors.New("decoded content is not valid UTF-8")
)

// document is the response of GET /repos/{owner}/{repo}/license. Only the
// fields license-hound needs are decoded.
type document struct {
	DownloadURL string `json:"download_url"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	License     struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

// DecodeContent decodes the content of a GitHub document. Only "base64"
// is supported; GitHub wraps it MIME-style, every 60 characters, and any
// whitespace is ignored.
func DecodeContent(encoding, content string) (string, error) {
	if encoding != "base64" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	unwrapped := strings.Join(strings.Fields(content), "")
	b, err := base64.StdEncoding.DecodeString(unwrapped)
	if err != nil {
		return "", fmt.Errorf("decoding base64 content: %w", err)
	}
	if !utf8.Valid(b) {
		return "", ErrNotUTF8
	}
	return string(b), nil
}

// LicenseAPI asks GitHub which license it detected in the repository. The
// answer is only trusted when GitHub agrees with the declared license.
type LicenseAPI struct {
	Client *Client
}

// Applies is false for packages not hosted on GitHub.
func (p *LicenseAPI) Applies(t provenance.Target) bool {
	_, ok := ParseRepoURL(t.Repository)
	return ok
}

func (p *LicenseAPI) Name() string { return "github_api" }

func (p *LicenseAPI) Probe(ctx context.Context, t provenance.Target, id license.ID) (provenance.Found, bool) {
	repo, ok := ParseRepoURL(t.Repository)
	if !ok {
		return provenance.Found{}, false
	}
	return p.probe(ctx, repo, t.Name, id)
}

func (p *LicenseAPI) probe(ctx context.Context, repo Repo, packageName string, id license.ID) (provenance.Found, bool) {
	c := p.Client
	url := fmt.Sprintf("%s/repos/%s/%s/license", c.cfg.APIBase, repo.Owner, repo.Name)

	resp, err := c.get(ctx, url)
	if err != nil {
		c.log.Debugf("package %s: %v", packageName, err)
		return provenance.Found{}, false
	}

	switch {
	case resp.status == http.StatusForbidden:
		c.forbidden(url, resp.body)
		return provenance.Found{}, false
	case resp.status == http.StatusNotFound:
		return provenance.Found{}, false
	case !isSuccess(resp.status):
		c.log.Errorf("unexpected status code from GitHub API (%s): %d", url, resp.status)
		c.logAPIError(resp.body)
		return provenance.Found{}, false
	}

	var doc document
	if err := json.Unmarshal(resp.body, &doc); err != nil {
		c.log.Debugf("package %s: decoding %s: %v", packageName, url, err)
		return provenance.Found{}, false
	}

	if doc.License.SPDXID != id.SPDX() {
		c.log.Warnf("GitHub and license-hound have identified different licenses for package %q: %q and %q, respectively",
			packageName, doc.License.SPDXID, id.SPDX())
		return provenance.Found{}, false
	}

	text, err := DecodeContent(doc.Encoding, doc.Content)
	if err != nil {
		c.log.Debugf("package %s: %s: %v", packageName, url, err)
		return provenance.Found{}, false
	}

	return provenance.Found{Source: provenance.FromHostedAPI(doc.DownloadURL), Text: text}, true
}
