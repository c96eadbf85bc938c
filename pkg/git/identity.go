package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommitterName is the fallback committer name when no other source
// provides one.
const DefaultCommitterName = "Docpages Bot"

// DefaultCommitterEmail is the fallback committer email when no other
// source provides one.
const DefaultCommitterEmail = "bot@docpages.dev"

// Identity holds the resolved committer identity.
type Identity struct {
	Name  string
	Email string
}

// IsDefault reports whether the identity is the built-in fallback.
func (id Identity) IsDefault() bool {
	return id.Name == DefaultCommitterName && id.Email == DefaultCommitterEmail
}

// String formats the identity as "Name <email>".
func (id Identity) String() string {
	return fmt.Sprintf("%s <%s>", id.Name, id.Email)
}

// IdentityOptions holds the candidate sources for committer identity.
type IdentityOptions struct {
	// ExplicitName and ExplicitEmail come from command-line flags and
	// override every other source.
	ExplicitName  string
	ExplicitEmail string

	// ProjectName and ProjectEmail come from the .docpages.yaml project file.
	ProjectName  string
	ProjectEmail string

	// EnvName and EnvEmail come from GIT_AUTHOR_NAME / GIT_AUTHOR_EMAIL.
	EnvName  string
	EnvEmail string
}

// ResolveIdentity resolves the committer identity with the following
// priority, highest last applied:
//
//	defaults < project file < environment < host git config < explicit flags
func ResolveIdentity(opts IdentityOptions) Identity {
	id := Identity{
		Name:  DefaultCommitterName,
		Email: DefaultCommitterEmail,
	}

	if opts.ProjectName != "" {
		id.Name = opts.ProjectName
	}
	if opts.ProjectEmail != "" {
		id.Email = opts.ProjectEmail
	}

	if opts.EnvName != "" {
		id.Name = opts.EnvName
	}
	if opts.EnvEmail != "" {
		id.Email = opts.EnvEmail
	}

	if hostName := hostConfigLookup("user.name"); hostName != "" {
		id.Name = hostName
	}
	if hostEmail := hostConfigLookup("user.email"); hostEmail != "" {
		id.Email = hostEmail
	}

	if opts.ExplicitName != "" {
		id.Name = opts.ExplicitName
	}
	if opts.ExplicitEmail != "" {
		id.Email = opts.ExplicitEmail
	}

	return id
}

// hostConfigLookup is swapped out by tests to keep resolution
// independent of the host's real git config.
var hostConfigLookup = hostGitConfig

// hostGitConfig reads a git configuration value from the host system,
// checking local, global, and system scope in that order. Returns the
// empty string when the key is unset or git is unavailable.
func hostGitConfig(key string) string {
	cmd := exec.Command("git", "config", "--get", key)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
