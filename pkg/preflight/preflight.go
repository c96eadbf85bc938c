package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docpages/docpages/pkg/config"
	"github.com/docpages/docpages/pkg/fsutil"
	"github.com/docpages/docpages/pkg/git"
	"github.com/docpages/docpages/pkg/log"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a critical failure that prevents publishing
	LevelError CheckLevel = iota
	// LevelWarn indicates a warning that should be addressed but doesn't block publishing
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string     // Check name
	Level   CheckLevel // Severity level
	Message string     // Human-readable message
	Error   error      // Underlying error (if any)
}

// Check represents a single preflight check
type Check interface {
	// Name returns the check name
	Name() string
	// Run executes the check and returns a CheckResult
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks  []Check
	skipped bool
	quiet   bool
}

// Config configures the preflight checker
type Config struct {
	// Skip skips all preflight checks
	Skip bool
	// Quiet suppresses info-level messages
	Quiet bool
	// Publish is the resolved publish configuration the checks inspect
	Publish *config.Config
}

// NewChecker creates a new preflight checker for the given publish configuration
func NewChecker(cfg Config) *Checker {
	c := &Checker{
		skipped: cfg.Skip,
		quiet:   cfg.Quiet,
	}

	if cfg.Publish != nil {
		c.checks = append(c.checks,
			&BuildDirCheck{Path: cfg.Publish.BuildDir},
			&RepositoryCheck{WorkspaceDir: cfg.Publish.WorkspaceDir, Branch: cfg.Publish.Branch},
			&TokenCheck{Token: cfg.Publish.Token, Force: cfg.Publish.Force},
			&IdentityCheck{CommitterName: cfg.Publish.CommitterName, CommitterEmail: cfg.Publish.CommitterEmail},
		)
	}

	return c
}

// Run executes all registered checks and returns an error if any critical checks fail
func (c *Checker) Run(ctx context.Context) error {
	if c.skipped {
		log.Info("preflight checks skipped")
		return nil
	}

	log.Info("running preflight checks")

	var errors []error
	var warnings []string

	for _, check := range c.checks {
		result := check.Run(ctx)

		switch result.Level {
		case LevelError:
			log.Error("preflight check failed", "check", result.Name, "message", result.Message)
			if result.Error != nil {
				errors = append(errors, result.Error)
			} else {
				errors = append(errors, fmt.Errorf("%s: %s", result.Name, result.Message))
			}
		case LevelWarn:
			log.Warn("preflight check warning", "check", result.Name, "message", result.Message)
			warnings = append(warnings, fmt.Sprintf("%s: %s", result.Name, result.Message))
		case LevelInfo:
			if !c.quiet {
				log.Info("preflight check", "check", result.Name, "message", result.Message)
			}
		}
	}

	if len(warnings) > 0 {
		log.Info("preflight warnings", "count", len(warnings))
	}

	if len(errors) > 0 {
		var errMsgs []string
		for _, err := range errors {
			errMsgs = append(errMsgs, err.Error())
		}
		return fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(errMsgs, "\n  - "))
	}

	log.Info("preflight checks passed")
	return nil
}

// BuildDirCheck checks that the build directory exists and contains output
type BuildDirCheck struct {
	Path string
}

func (c *BuildDirCheck) Name() string {
	return "build-dir"
}

func (c *BuildDirCheck) Run(ctx context.Context) CheckResult {
	if c.Path == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "no build directory specified",
			Error:   fmt.Errorf("build directory is required"),
		}
	}

	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("failed to resolve build directory: %s", c.Path),
			Error:   err,
		}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelError,
				Message: fmt.Sprintf("build directory does not exist: %s (run your documentation build first)", absPath),
				Error:   err,
			}
		}
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot access build directory: %s", absPath),
			Error:   err,
		}
	}

	if !info.IsDir() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("build directory is not a directory: %s", absPath),
			Error:   fmt.Errorf("not a directory"),
		}
	}

	empty, err := fsutil.IsEmptyDir(absPath)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot read build directory: %s", absPath),
			Error:   err,
		}
	}
	if empty {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("build directory is empty: %s (did the documentation build run?)", absPath),
			Error:   fmt.Errorf("build directory is empty"),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("build output found: %s", absPath),
	}
}

// RepositoryCheck checks that the workspace is a git repository and the
// target branch exists locally
type RepositoryCheck struct {
	WorkspaceDir string
	Branch       string
}

func (c *RepositoryCheck) Name() string {
	return "repository"
}

func (c *RepositoryCheck) Run(ctx context.Context) CheckResult {
	client := git.NewClient(c.WorkspaceDir)

	if err := client.EnsureRepository(); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("workspace is not a git repository: %s", c.WorkspaceDir),
			Error:   err,
		}
	}

	exists, err := client.BranchExists(c.Branch)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("cannot inspect branch %q", c.Branch),
			Error:   err,
		}
	}
	if !exists {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("branch %q not found; fetch or create it before publishing", c.Branch),
			Error:   fmt.Errorf("branch %q not found", c.Branch),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("repository ready, branch %q exists", c.Branch),
	}
}

// TokenCheck checks that a push credential is available when the publish
// will actually touch the remote
type TokenCheck struct {
	Token string
	Force bool
}

func (c *TokenCheck) Name() string {
	return "token"
}

func (c *TokenCheck) Run(ctx context.Context) CheckResult {
	if c.Token != "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelInfo,
			Message: "push token available (from environment)",
		}
	}

	if c.Force {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: fmt.Sprintf("no push token found. Set %s to push to an authenticated remote", config.EnvToken),
			Error:   fmt.Errorf("no push token found"),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "no push token set; push is disabled anyway",
	}
}

// IdentityCheck warns when the commit identity falls back to the built-in
// bot defaults
type IdentityCheck struct {
	CommitterName  string
	CommitterEmail string
}

func (c *IdentityCheck) Name() string {
	return "identity"
}

func (c *IdentityCheck) Run(ctx context.Context) CheckResult {
	identity := git.Identity{Name: c.CommitterName, Email: c.CommitterEmail}

	if identity.Name == "" || identity.Email == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "committer identity is incomplete",
			Error:   fmt.Errorf("committer name and email are required"),
		}
	}

	if identity.IsDefault() {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("using default committer identity %s; set GIT_AUTHOR_NAME and GIT_AUTHOR_EMAIL to override", identity),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("committing as %s", identity),
	}
}
