package publisher

import "context"

// MockPublisher is a no-op provider used in tests and for exercising the
// CLI plumbing without touching a repository.
type MockPublisher struct {
	name string

	// ValidateErr, when set, is returned from Validate.
	ValidateErr error

	// PublishErr, when set, is returned from Publish.
	PublishErr error

	// Requests records every request passed to Publish.
	Requests []PublishRequest
}

// NewMockPublisher creates a mock provider with the given name.
func NewMockPublisher(name string) *MockPublisher {
	return &MockPublisher{name: name}
}

// Name returns the provider name.
func (m *MockPublisher) Name() string { return m.name }

// Validate returns the configured validation error, if any.
func (m *MockPublisher) Validate(req PublishRequest) error {
	return m.ValidateErr
}

// Publish records the request and reports success.
func (m *MockPublisher) Publish(ctx context.Context, req PublishRequest) (PublishResult, error) {
	m.Requests = append(m.Requests, req)
	if m.PublishErr != nil {
		return PublishResult{Success: false, Errors: []PublishError{NewError(m.PublishErr.Error())}}, m.PublishErr
	}
	return PublishResult{
		Success: true,
		Actions: []PublishAction{{
			Type:        "no_op",
			Description: "mock publisher made no changes",
		}},
	}, nil
}
