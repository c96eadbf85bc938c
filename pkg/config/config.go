// Package config resolves the publish configuration from flags,
// environment variables, the optional project file, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docpages/docpages/pkg/git"
	"gopkg.in/yaml.v3"
)

// Environment variables consumed by the publisher.
const (
	// EnvTag triggers the root-level release copy when non-empty.
	EnvTag = "GIT_TAG"

	// EnvToken is the credential used to authenticate the push.
	EnvToken = "GH_PAGES_TOKEN"

	// EnvCommitSHA is the source commit hash referenced in the commit message.
	EnvCommitSHA = "GITHUB_SHA"

	// EnvAuthorName and EnvAuthorEmail override the committer identity.
	EnvAuthorName  = "GIT_AUTHOR_NAME"
	EnvAuthorEmail = "GIT_AUTHOR_EMAIL"
)

// Defaults.
const (
	DefaultBranch   = "gh-pages"
	DefaultRemote   = "origin"
	DefaultDevelDir = "devel"
	DefaultBuildDir = "doc/build/html"

	// ProjectFileName is the per-repository configuration file.
	ProjectFileName = ".docpages.yaml"
)

// Config is the fully resolved publish configuration. Every knob the
// publisher consults lives here; nothing reads the process environment
// past resolution time.
type Config struct {
	// WorkspaceDir is the git working tree to publish into.
	WorkspaceDir string

	// BuildDir contains the pre-built static documentation.
	BuildDir string

	// Tag, when non-empty, marks a release: the build output is also
	// mirrored to the repository root.
	Tag string

	// CommitterName and CommitterEmail attribute the publish commit.
	CommitterName  string
	CommitterEmail string

	// Remote is the git remote pushed to.
	Remote string

	// RemoteURL, when non-empty, is written to the remote before pushing.
	// It never carries credentials.
	RemoteURL string

	// Branch is the branch hosting the published site.
	Branch string

	// DevelDir is the directory on Branch mirroring the build output.
	DevelDir string

	// Token authenticates the push transport. Never persisted.
	Token string

	// CommitHash is the source commit recorded in the commit message.
	CommitHash string

	// Force confirms the destructive force-push.
	Force bool

	// RequestPagesBuild asks GitHub for a Pages build after the push.
	RequestPagesBuild bool
}

// FileConfig is the subset of configuration readable from .docpages.yaml.
// The token is deliberately absent: credentials come from the environment
// only.
type FileConfig struct {
	BuildDir          string `yaml:"build_dir"`
	Tag               string `yaml:"tag"`
	CommitterName     string `yaml:"committer_name"`
	CommitterEmail    string `yaml:"committer_email"`
	Remote            string `yaml:"remote"`
	RemoteURL         string `yaml:"remote_url"`
	Branch            string `yaml:"branch"`
	DevelDir          string `yaml:"devel_dir"`
	Force             bool   `yaml:"force"`
	RequestPagesBuild bool   `yaml:"request_pages_build"`
}

// Flags carries the values supplied on the command line. Empty strings
// mean the flag was not provided.
type Flags struct {
	BuildDir          string
	Tag               string
	CommitterName     string
	CommitterEmail    string
	Remote            string
	RemoteURL         string
	Branch            string
	DevelDir          string
	CommitSHA         string
	Force             bool
	RequestPagesBuild bool
}

// LoadProjectFile reads the project configuration file. When path is
// empty, the default file name is looked up inside workspaceDir and a
// missing file is not an error; an explicitly named file must exist.
func LoadProjectFile(workspaceDir, path string) (*FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(workspaceDir, ProjectFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// Resolve builds the final configuration. Priority for each field, highest
// first: flags, environment, project file, defaults. The committer identity
// additionally consults the host git config (see git.ResolveIdentity).
func Resolve(workspaceDir string, flags Flags, file *FileConfig) Config {
	if file == nil {
		file = &FileConfig{}
	}

	cfg := Config{
		WorkspaceDir:      workspaceDir,
		BuildDir:          firstOf(flags.BuildDir, file.BuildDir, DefaultBuildDir),
		Tag:               firstOf(flags.Tag, os.Getenv(EnvTag), file.Tag),
		Remote:            firstOf(flags.Remote, file.Remote, DefaultRemote),
		RemoteURL:         firstOf(flags.RemoteURL, file.RemoteURL),
		Branch:            firstOf(flags.Branch, file.Branch, DefaultBranch),
		DevelDir:          firstOf(flags.DevelDir, file.DevelDir, DefaultDevelDir),
		Token:             os.Getenv(EnvToken),
		CommitHash:        firstOf(flags.CommitSHA, os.Getenv(EnvCommitSHA)),
		Force:             flags.Force || file.Force,
		RequestPagesBuild: flags.RequestPagesBuild || file.RequestPagesBuild,
	}

	id := git.ResolveIdentity(git.IdentityOptions{
		ExplicitName:  flags.CommitterName,
		ExplicitEmail: flags.CommitterEmail,
		ProjectName:   file.CommitterName,
		ProjectEmail:  file.CommitterEmail,
		EnvName:       os.Getenv(EnvAuthorName),
		EnvEmail:      os.Getenv(EnvAuthorEmail),
	})
	cfg.CommitterName = id.Name
	cfg.CommitterEmail = id.Email

	// A relative build dir is resolved against the workspace, matching the
	// original layout where doc/build/html lives inside the repository.
	if !filepath.IsAbs(cfg.BuildDir) {
		cfg.BuildDir = filepath.Join(workspaceDir, cfg.BuildDir)
	}

	return cfg
}

// Validate checks the structural invariants of the configuration.
func (c Config) Validate() error {
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspace directory is required")
	}

	info, err := os.Stat(c.BuildDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("build directory does not exist: %s", c.BuildDir)
		}
		return fmt.Errorf("failed to access build directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("build directory is not a directory: %s", c.BuildDir)
	}

	if c.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if c.Remote == "" {
		return fmt.Errorf("remote is required")
	}
	if !strings.Contains(c.CommitterEmail, "@") {
		return fmt.Errorf("committer email %q is not an email address", c.CommitterEmail)
	}

	devel := filepath.Clean(c.DevelDir)
	if devel == "." || devel == "" || filepath.IsAbs(devel) || strings.HasPrefix(devel, "..") {
		return fmt.Errorf("devel directory must be a relative path inside the repository: %s", c.DevelDir)
	}

	return nil
}

// IsRelease reports whether a release tag is configured, which triggers
// the root-level copy.
func (c Config) IsRelease() bool {
	return strings.TrimSpace(c.Tag) != ""
}

// ShortHash returns the commit hash truncated to 8 characters, or
// "unknown" when no hash is configured.
func (c Config) ShortHash() string {
	hash := strings.TrimSpace(c.CommitHash)
	if hash == "" {
		return "unknown"
	}
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
