package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_Generate(t *testing.T) {
	p := NewMockProvider("mock", "mock-1")
	p.AddResponse("add two numbers", "def add(a, b):\n    return a + b", "Adds two numbers.")

	res := p.Generate(context.Background(), core.CodeRequest{Prompt: "add two numbers", Language: "python"})
	assert.Equal(t, core.StatusSuccess, res.Status)
	assert.Equal(t, "mock", res.ProviderID)
	assert.Contains(t, res.Code, "def add")
	assert.Equal(t, "Adds two numbers.", res.Explanation)
}

func TestMockProvider_TimedOutOnCancelledContext(t *testing.T) {
	p := NewMockProvider("mock", "mock-1")
	p.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := p.Generate(ctx, core.CodeRequest{Prompt: "anything"})
	assert.Equal(t, core.StatusTimedOut, res.Status)
	assert.Equal(t, core.ErrDetailTimeout, res.ErrorDetail)
}

func TestMockProvider_FailWith(t *testing.T) {
	p := NewMockProvider("mock", "mock-1")
	p.FailWith(core.ErrDetailQuotaExceeded)

	res := p.Generate(context.Background(), core.CodeRequest{Prompt: "anything"})
	assert.Equal(t, core.StatusFailed, res.Status)
	assert.Equal(t, core.ErrDetailQuotaExceeded, res.ErrorDetail)
}

func TestRegistry_PriorityOrderAndLookup(t *testing.T) {
	a := NewMockProvider("alpha", "a-1")
	b := NewMockProvider("beta", "b-1")

	r := NewRegistry(a, b)
	require.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"alpha", "beta"}, r.IDs())

	got, ok := r.Get("beta")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_DuplicateIDFirstWins(t *testing.T) {
	first := NewMockProvider("dup", "one")
	second := NewMockProvider("dup", "two")

	r := NewRegistry(first, second)
	require.Equal(t, 1, r.Len())

	got, ok := r.Get("dup")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, core.ErrDetailAuthFailure, ClassifyStatus(http.StatusUnauthorized))
	assert.Equal(t, core.ErrDetailAuthFailure, ClassifyStatus(http.StatusForbidden))
	assert.Equal(t, core.ErrDetailQuotaExceeded, ClassifyStatus(http.StatusTooManyRequests))
	assert.Equal(t, core.ErrDetailTimeout, ClassifyStatus(http.StatusGatewayTimeout))
	assert.Equal(t, core.ErrDetailNetworkError, ClassifyStatus(http.StatusInternalServerError))
}

func TestClassifyErr(t *testing.T) {
	assert.Equal(t, core.ErrDetailTimeout, ClassifyErr(context.DeadlineExceeded))
	assert.Equal(t, core.ErrDetailNetworkError, ClassifyErr(assert.AnError))
}
