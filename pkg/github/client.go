package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client wraps the go-github client for the Pages operations the
// publisher needs.
type Client struct {
	gh *github.Client
}

// Option configures the client.
type Option func(*Client) error

// WithBaseURL points the client at a different API endpoint. Used by
// tests and GitHub Enterprise installs.
func WithBaseURL(base string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid base URL %q: %w", base, err)
		}
		c.gh.BaseURL = parsed
		return nil
	}
}

// NewClient creates a GitHub API client authenticated with the token.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	c := &Client{gh: github.NewClient(tc)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BuildInfo describes a requested Pages build.
type BuildInfo struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// RequestBuild asks GitHub to build the Pages site for the repository,
// so the published content materializes without waiting for the next
// scheduled build.
func (c *Client) RequestBuild(ctx context.Context, owner, repo string) (*BuildInfo, error) {
	build, _, err := c.gh.Repositories.RequestPageBuild(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to request pages build for %s/%s: %w", owner, repo, err)
	}
	return &BuildInfo{
		URL:    build.GetURL(),
		Status: build.GetStatus(),
	}, nil
}

// SiteInfo describes the Pages configuration of a repository.
type SiteInfo struct {
	HTMLURL      string `json:"html_url"`
	Status       string `json:"status"`
	SourceBranch string `json:"source_branch"`
}

// GetSiteInfo fetches the Pages configuration for the repository.
func (c *Client) GetSiteInfo(ctx context.Context, owner, repo string) (*SiteInfo, error) {
	pages, _, err := c.gh.Repositories.GetPagesInfo(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages info for %s/%s: %w", owner, repo, err)
	}

	info := &SiteInfo{
		HTMLURL: pages.GetHTMLURL(),
		Status:  pages.GetStatus(),
	}
	if source := pages.GetSource(); source != nil {
		info.SourceBranch = source.GetBranch()
	}
	return info, nil
}
