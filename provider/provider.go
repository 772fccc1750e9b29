package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/codesmith/core"
)

// Info contains metadata about a provider implementation.
type Info struct {
	// ID is the stable registry identifier ("openai", "anthropic", ...).
	// It is the value callers put in CodeRequest.RequestedModel and the
	// value recorded in every ProviderResult.
	ID string `json:"id"`
	// Model is the concrete model name used by the adapter.
	Model string `json:"model"`
}

// Provider is the uniform capability wrapper around one external
// code-generation backend. Prompt formatting and response parsing are
// entirely internal to each implementation; the router never sees
// provider-specific shapes.
//
// Generate must honor ctx by returning a StatusTimedOut result rather than
// blocking past the deadline, and must classify every failure into a stable
// error detail code. Every exit path is a ProviderResult; implementations
// never panic or leak errors past their boundary.
type Provider interface {
	Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult

	// Info returns information about the provider implementation.
	Info() Info
}

// MockProvider is a lightweight in-memory Provider useful for tests & examples.
type MockProvider struct {
	info      Info
	responses map[string]mockReply
	delay     time.Duration
	failWith  string
}

type mockReply struct {
	code        string
	explanation string
}

// NewMockProvider constructs a MockProvider with the given registry id.
func NewMockProvider(id, model string) *MockProvider {
	return &MockProvider{
		info:      Info{ID: id, Model: model},
		responses: make(map[string]mockReply),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockProvider) AddResponse(promptText, code, explanation string) {
	m.responses[promptText] = mockReply{code: code, explanation: explanation}
}

// SetDelay makes every Generate call take at least d, honoring cancellation.
func (m *MockProvider) SetDelay(d time.Duration) { m.delay = d }

// FailWith makes every Generate call fail with the given error detail code.
func (m *MockProvider) FailWith(detail string) { m.failWith = detail }

// Generate implements Provider; returns the canned reply after the optional delay.
func (m *MockProvider) Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult {
	start := time.Now()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return core.ProviderResult{
				ProviderID:  m.info.ID,
				Status:      core.StatusTimedOut,
				Latency:     time.Since(start),
				ErrorDetail: core.ErrDetailTimeout,
			}
		}
	}

	if m.failWith != "" {
		return core.ProviderResult{
			ProviderID:  m.info.ID,
			Status:      core.StatusFailed,
			Latency:     time.Since(start),
			ErrorDetail: m.failWith,
		}
	}

	reply, ok := m.responses[req.Prompt]
	if !ok {
		reply = mockReply{
			code:        fmt.Sprintf("# Mock response to: %s", req.Prompt),
			explanation: "Canned mock output.",
		}
	}
	return core.ProviderResult{
		ProviderID:  m.info.ID,
		Status:      core.StatusSuccess,
		Code:        reply.code,
		Explanation: reply.explanation,
		Latency:     time.Since(start),
	}
}

// Info implements the Provider interface.
func (m *MockProvider) Info() Info { return m.info }
