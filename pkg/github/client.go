// Package github looks for license documents on GitHub, through the
// repository license API first and then by guessing raw file URLs.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase   = "https://api.github.com"
	DefaultRawBase   = "https://raw.githubusercontent.com"
	DefaultBranch    = "master"
	DefaultUserAgent = "license-hound/0.1.0"
	DefaultCacheSize = 512

	// UsernameEnv and PasswordEnv are where the credentials are read from.
	UsernameEnv = "LICENSE_HOUND_GITHUB_USERNAME"
	PasswordEnv = "LICENSE_HOUND_GITHUB_PASSWORD"
)

// Credentials authenticate requests with basic auth. GitHub's rate limit
// for anonymous requests is quickly reached on large lock files.
type Credentials struct {
	Username string
	Password string
}

type Config struct {
	APIBase   string
	RawBase   string
	Branch    string
	UserAgent string
	// Credentials is optional.
	Credentials *Credentials
	// Timeout is the per-request timeout. Zero means none.
	Timeout time.Duration
	// CacheSize is the number of responses kept in memory. Crates of the
	// same workspace share a repository, so the same URLs are asked for
	// again and again.
	CacheSize int
}

func (c *Config) setDefaults() {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.RawBase == "" {
		c.RawBase = DefaultRawBase
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
}

type response struct {
	status int
	body   []byte
}

// Client does the GitHub requests for both probers.
type Client struct {
	cfg   Config
	http  *http.Client
	cache *lru.Cache[string, response]
	log   *zap.SugaredLogger
}

func NewClient(cfg Config, log *zap.SugaredLogger) (*Client, error) {
	cfg.setDefaults()
	cache, err := lru.New[string, response](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating the GitHub response cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: cache,
		log:   log,
	}, nil
}

// get never retries. A transport error means the caller moves on.
func (c *Client) get(ctx context.Context, url string) (response, error) {
	if resp, ok := c.cache.Get(url); ok {
		c.log.Debugf("GET %s: %d (cached)", url, resp.status)
		return resp, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if creds := c.cfg.Credentials; creds != nil && creds.Username != "" {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("reading body of %s: %w", url, err)
	}

	c.log.Debugf("GET %s: %d", url, resp.StatusCode)
	r := response{status: resp.StatusCode, body: body}
	c.cache.Add(url, r)
	return r, nil
}

// apiError is the body GitHub sends along with error statuses.
type apiError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

func (e apiError) String() string {
	if e.DocumentationURL != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.DocumentationURL)
	}
	return e.Message
}

func (c *Client) logAPIError(body []byte) {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || e.Message == "" {
		return
	}
	c.log.Errorf("github: %s", e)
}

func (c *Client) forbidden(url string, body []byte) {
	c.log.Errorf("request to %s forbidden by GitHub", url)
	c.logAPIError(body)
	c.log.Infof("HINT: try authenticating with your GitHub user:")
	c.log.Infof("HINT:     %s=... %s=... license-hound check", UsernameEnv, PasswordEnv)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
