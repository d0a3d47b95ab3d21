package ai

import "context"

// MockClient is a configurable mock for testing AI functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, returns "" and nil error.
	CompleteFunc func(ctx context.Context, systemMessage, prompt string) (string, error)

	// AnalyzeImageFunc is called when AnalyzeImage is invoked.
	// If nil, returns "" and nil error.
	AnalyzeImageFunc func(ctx context.Context, imageB64, prompt string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	CompleteCalls     int
	AnalyzeImageCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, systemMessage, prompt string) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemMessage, prompt)
	}
	return "", nil
}

// AnalyzeImage implements Client.
func (m *MockClient) AnalyzeImage(ctx context.Context, imageB64, prompt string) (string, error) {
	m.AnalyzeImageCalls++
	if m.AnalyzeImageFunc != nil {
		return m.AnalyzeImageFunc(ctx, imageB64, prompt)
	}
	return "", nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Reset clears call tracking counters.
func (m *MockClient) Reset() {
	m.CompleteCalls = 0
	m.AnalyzeImageCalls = 0
}

// Ensure MockClient implements Client at compile time.
var _ Client = (*MockClient)(nil)
