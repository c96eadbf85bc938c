// Package github integrates the publisher with the GitHub API: parsing
// owner/repo out of remote URLs and requesting a Pages build after a push.
package github

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Remote URL patterns:
	// - https://github.com/owner/repo(.git)
	// - git@github.com:owner/repo(.git)
	// - ssh://git@github.com/owner/repo(.git)
	httpsRemotePattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	scpRemotePattern   = regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
	sshRemotePattern   = regexp.MustCompile(`^ssh://git@github\.com/([^/]+)/([^/]+?)(?:\.git)?$`)
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// String returns the owner/name form.
func (r Repo) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ParseRemote extracts the repository from a GitHub remote URL.
// Supported formats:
//   - https://github.com/owner/repo(.git)
//   - git@github.com:owner/repo(.git)
//   - ssh://git@github.com/owner/repo(.git)
func ParseRemote(url string) (*Repo, error) {
	url = strings.TrimSpace(url)

	for _, pattern := range []*regexp.Regexp{httpsRemotePattern, scpRemotePattern, sshRemotePattern} {
		if matches := pattern.FindStringSubmatch(url); matches != nil {
			return &Repo{Owner: matches[1], Name: matches[2]}, nil
		}
	}

	return nil, fmt.Errorf("not a GitHub remote URL: %s", url)
}

// IsGitHubRemote reports whether the URL points at github.com.
func IsGitHubRemote(url string) bool {
	_, err := ParseRemote(url)
	return err == nil
}
