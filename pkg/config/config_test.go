package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearPublishEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvTag, EnvToken, EnvCommitSHA, EnvAuthorName, EnvAuthorEmail} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestResolveDefaults(t *testing.T) {
	clearPublishEnv(t)
	ws := t.TempDir()

	cfg := Resolve(ws, Flags{}, nil)

	if cfg.Branch != DefaultBranch {
		t.Errorf("Branch = %q, want %q", cfg.Branch, DefaultBranch)
	}
	if cfg.Remote != DefaultRemote {
		t.Errorf("Remote = %q, want %q", cfg.Remote, DefaultRemote)
	}
	if cfg.DevelDir != DefaultDevelDir {
		t.Errorf("DevelDir = %q, want %q", cfg.DevelDir, DefaultDevelDir)
	}
	if want := filepath.Join(ws, DefaultBuildDir); cfg.BuildDir != want {
		t.Errorf("BuildDir = %q, want %q", cfg.BuildDir, want)
	}
	if cfg.Tag != "" {
		t.Errorf("Tag = %q, want empty", cfg.Tag)
	}
	if cfg.Force {
		t.Error("Force = true by default")
	}
	if cfg.ShortHash() != "unknown" {
		t.Errorf("ShortHash() = %q, want unknown", cfg.ShortHash())
	}
}

func TestResolveEnvironment(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv(EnvTag, "v1.0")
	t.Setenv(EnvToken, "secret-token")
	t.Setenv(EnvCommitSHA, "0123456789abcdef0123456789abcdef01234567")

	cfg := Resolve(t.TempDir(), Flags{}, nil)

	if cfg.Tag != "v1.0" {
		t.Errorf("Tag = %q, want v1.0", cfg.Tag)
	}
	if !cfg.IsRelease() {
		t.Error("IsRelease() = false with GIT_TAG set")
	}
	if cfg.Token != "secret-token" {
		t.Errorf("Token = %q, want secret-token", cfg.Token)
	}
	if cfg.ShortHash() != "01234567" {
		t.Errorf("ShortHash() = %q, want 01234567", cfg.ShortHash())
	}
}

func TestResolveFlagsBeatEnvironmentAndFile(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv(EnvTag, "env-tag")

	file := &FileConfig{
		Branch:   "file-branch",
		Remote:   "file-remote",
		DevelDir: "file-devel",
		Tag:      "file-tag",
	}
	flags := Flags{
		Branch:    "flag-branch",
		Tag:       "flag-tag",
		CommitSHA: "deadbeefcafe",
	}

	cfg := Resolve(t.TempDir(), flags, file)

	if cfg.Branch != "flag-branch" {
		t.Errorf("Branch = %q, flags should win", cfg.Branch)
	}
	if cfg.Tag != "flag-tag" {
		t.Errorf("Tag = %q, flags should win over env and file", cfg.Tag)
	}
	if cfg.Remote != "file-remote" {
		t.Errorf("Remote = %q, file should win over default", cfg.Remote)
	}
	if cfg.DevelDir != "file-devel" {
		t.Errorf("DevelDir = %q, file should win over default", cfg.DevelDir)
	}
	if cfg.ShortHash() != "deadbeef" {
		t.Errorf("ShortHash() = %q, want deadbeef", cfg.ShortHash())
	}
}

func TestResolveEnvTagBeatsFileTag(t *testing.T) {
	clearPublishEnv(t)
	t.Setenv(EnvTag, "env-tag")

	cfg := Resolve(t.TempDir(), Flags{}, &FileConfig{Tag: "file-tag"})
	if cfg.Tag != "env-tag" {
		t.Errorf("Tag = %q, env should win over file", cfg.Tag)
	}
}

func TestResolveForceFromFile(t *testing.T) {
	clearPublishEnv(t)

	cfg := Resolve(t.TempDir(), Flags{}, &FileConfig{Force: true})
	if !cfg.Force {
		t.Error("Force = false, file setting ignored")
	}

	cfg = Resolve(t.TempDir(), Flags{Force: true}, nil)
	if !cfg.Force {
		t.Error("Force = false, flag ignored")
	}
}

func TestLoadProjectFile(t *testing.T) {
	ws := t.TempDir()
	content := strings.Join([]string{
		"build_dir: docs/_build/html",
		"branch: pages",
		"devel_dir: dev",
		"committer_name: Docs CI",
		"committer_email: ci@example.com",
		"request_pages_build: true",
	}, "\n")
	if err := os.WriteFile(filepath.Join(ws, ProjectFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write project file: %v", err)
	}

	fc, err := LoadProjectFile(ws, "")
	if err != nil {
		t.Fatalf("LoadProjectFile() error = %v", err)
	}
	if fc == nil {
		t.Fatal("LoadProjectFile() = nil for an existing file")
	}
	if fc.BuildDir != "docs/_build/html" {
		t.Errorf("BuildDir = %q", fc.BuildDir)
	}
	if fc.Branch != "pages" {
		t.Errorf("Branch = %q", fc.Branch)
	}
	if !fc.RequestPagesBuild {
		t.Error("RequestPagesBuild = false")
	}
}

func TestLoadProjectFileMissing(t *testing.T) {
	fc, err := LoadProjectFile(t.TempDir(), "")
	if err != nil {
		t.Fatalf("LoadProjectFile() with no file error = %v", err)
	}
	if fc != nil {
		t.Error("LoadProjectFile() with no file should return nil config")
	}
}

func TestLoadProjectFileExplicitMissing(t *testing.T) {
	_, err := LoadProjectFile(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadProjectFile() with explicit missing path should fail")
	}
}

func TestLoadProjectFileInvalidYAML(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, ProjectFileName)
	if err := os.WriteFile(path, []byte("branch: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := LoadProjectFile(ws, ""); err == nil {
		t.Error("LoadProjectFile() with invalid yaml should fail")
	}
}

func TestValidate(t *testing.T) {
	ws := t.TempDir()
	buildDir := filepath.Join(ws, "doc", "build", "html")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		t.Fatalf("failed to create build dir: %v", err)
	}

	valid := Config{
		WorkspaceDir:   ws,
		BuildDir:       buildDir,
		Branch:         "gh-pages",
		Remote:         "origin",
		DevelDir:       "devel",
		CommitterName:  "Docs CI",
		CommitterEmail: "ci@example.com",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing build dir", func(c *Config) { c.BuildDir = filepath.Join(ws, "nope") }, "does not exist"},
		{"build dir is a file", func(c *Config) {
			f := filepath.Join(ws, "file")
			os.WriteFile(f, []byte("x"), 0644)
			c.BuildDir = f
		}, "not a directory"},
		{"empty branch", func(c *Config) { c.Branch = "" }, "branch is required"},
		{"empty remote", func(c *Config) { c.Remote = "" }, "remote is required"},
		{"bad email", func(c *Config) { c.CommitterEmail = "not-an-email" }, "not an email"},
		{"absolute devel dir", func(c *Config) { c.DevelDir = "/etc" }, "relative path"},
		{"escaping devel dir", func(c *Config) { c.DevelDir = "../outside" }, "relative path"},
		{"dot devel dir", func(c *Config) { c.DevelDir = "." }, "relative path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}
