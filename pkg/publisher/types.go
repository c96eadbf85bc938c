// Package publisher defines the provider interface and result types for
// publishing built documentation, plus the registry dispatching to
// concrete providers.
package publisher

import (
	"context"
	"time"

	"github.com/docpages/docpages/pkg/config"
)

// Publisher is implemented by publish providers.
type Publisher interface {
	// Name returns the provider name used for registry lookup.
	Name() string

	// Validate checks the request before any mutation happens.
	Validate(req PublishRequest) error

	// Publish executes the publish sequence.
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)
}

// PublishRequest describes one publish invocation.
type PublishRequest struct {
	// Target is a provider-specific destination description, e.g. the
	// remote/branch being published to.
	Target string

	// WorkspaceDir is the git working tree to publish from.
	WorkspaceDir string

	// Config is the resolved publish configuration.
	Config *config.Config

	// DryRun stops the provider before any mutation.
	DryRun bool
}

// PublishResult contains the outcome of a publish operation.
type PublishResult struct {
	Provider    string          `json:"provider"`
	Target      string          `json:"target"`
	Success     bool            `json:"success"`
	PublishedAt time.Time       `json:"published_at"`
	Actions     []PublishAction `json:"actions"`
	Errors      []PublishError  `json:"errors,omitempty"`
}

// PublishAction records a single completed step.
type PublishAction struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PublishError records a failure with optional step context.
type PublishError struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// NewError creates a PublishError without step context.
func NewError(message string) PublishError {
	return PublishError{Message: message}
}

// NewErrorWithAction creates a PublishError tied to a step.
func NewErrorWithAction(message, action string) PublishError {
	return PublishError{Message: message, Context: action}
}
