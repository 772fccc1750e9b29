package router

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/fallback"
	"github.com/hupe1980/codesmith/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, providers []provider.Provider, optFns ...func(o *Options)) *Router {
	t.Helper()
	return New(provider.NewRegistry(providers...), fallback.NewEngine(), optFns...)
}

func TestRoute_AllProvidersInvoked(t *testing.T) {
	a := provider.NewMockProvider("alpha", "a-1")
	b := provider.NewMockProvider("beta", "b-1")
	r := newRouter(t, []provider.Provider{a, b})

	out := r.Route(context.Background(), core.CodeRequest{Prompt: "anything", Language: "python", RequestedModel: core.ModelAuto})
	require.Len(t, out.Results, 2)
	for _, res := range out.Results {
		assert.Equal(t, core.StatusSuccess, res.Status)
	}
	assert.Nil(t, out.Fallback, "fallback must not run when a provider succeeds")
}

func TestRoute_RequestedModelFiltersCandidates(t *testing.T) {
	a := provider.NewMockProvider("alpha", "a-1")
	b := provider.NewMockProvider("beta", "b-1")
	r := newRouter(t, []provider.Provider{a, b})

	out := r.Route(context.Background(), core.CodeRequest{Prompt: "x", Language: "python", RequestedModel: "beta"})
	require.Len(t, out.Results, 1)
	assert.Equal(t, "beta", out.Results[0].ProviderID)
}

func TestRoute_PartialFailureDoesNotAbortOthers(t *testing.T) {
	ok := provider.NewMockProvider("ok", "ok-1")
	bad := provider.NewMockProvider("bad", "bad-1")
	bad.FailWith(core.ErrDetailAuthFailure)
	r := newRouter(t, []provider.Provider{bad, ok})

	out := r.Route(context.Background(), core.CodeRequest{Prompt: "x", Language: "python", RequestedModel: core.ModelAuto})
	require.Len(t, out.Results, 2)

	byID := map[string]core.ProviderResult{}
	for _, res := range out.Results {
		byID[res.ProviderID] = res
	}
	assert.Equal(t, core.StatusFailed, byID["bad"].Status)
	assert.Equal(t, core.ErrDetailAuthFailure, byID["bad"].ErrorDetail)
	assert.Equal(t, core.StatusSuccess, byID["ok"].Status)
}

func TestRoute_SlowProviderMarkedTimedOut(t *testing.T) {
	slow := provider.NewMockProvider("slow", "s-1")
	slow.SetDelay(5 * time.Second)
	fast := provider.NewMockProvider("fast", "f-1")
	r := newRouter(t, []provider.Provider{slow, fast}, func(o *Options) {
		o.RouteTimeout = 100 * time.Millisecond
		o.ProviderTimeout = 50 * time.Millisecond
	})

	start := time.Now()
	out := r.Route(context.Background(), core.CodeRequest{Prompt: "x", Language: "python", RequestedModel: core.ModelAuto})
	assert.Less(t, time.Since(start), time.Second, "router must not block past the shared deadline")

	require.Len(t, out.Results, 2)
	byID := map[string]core.ProviderResult{}
	for _, res := range out.Results {
		byID[res.ProviderID] = res
	}
	assert.Equal(t, core.StatusTimedOut, byID["slow"].Status)
	assert.Equal(t, core.StatusSuccess, byID["fast"].Status)
}

func TestRoute_AllFailedExercisesFallback(t *testing.T) {
	bad := provider.NewMockProvider("bad", "bad-1")
	bad.FailWith(core.ErrDetailNetworkError)
	r := newRouter(t, []provider.Provider{bad})

	out := r.Route(context.Background(), core.CodeRequest{
		Prompt:         "write a fibonacci function in python",
		Language:       "python",
		RequestedModel: core.ModelAuto,
	})
	require.NotNil(t, out.Fallback)
	assert.Equal(t, core.FallbackProviderID, out.Fallback.SourceProviderID)
	assert.Contains(t, out.Fallback.Code, "fibonacci")
}

func TestRoute_ZeroProvidersExercisesFallback(t *testing.T) {
	r := newRouter(t, nil)

	out := r.Route(context.Background(), core.CodeRequest{
		Prompt:   "fibonacci in python",
		Language: "python",
	})
	assert.Empty(t, out.Results)
	require.NotNil(t, out.Fallback)
}

func TestRoute_NoFallbackMatchLeavesOutcomeEmpty(t *testing.T) {
	r := newRouter(t, nil)

	out := r.Route(context.Background(), core.CodeRequest{
		Prompt:   "quantize my llama weights",
		Language: "python",
	})
	assert.Empty(t, out.Results)
	assert.Nil(t, out.Fallback)
}

func TestRoute_CallerCancellationSkipsFallback(t *testing.T) {
	slow := provider.NewMockProvider("slow", "s-1")
	slow.SetDelay(time.Second)
	r := newRouter(t, []provider.Provider{slow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := r.Route(ctx, core.CodeRequest{
		Prompt:   "fibonacci in python",
		Language: "python",
	})
	assert.Nil(t, out.Fallback, "no result is owed once the caller is gone")
}

func TestRoute_CallBudgetBoundsLaunches(t *testing.T) {
	a := provider.NewMockProvider("a", "a-1")
	b := provider.NewMockProvider("b", "b-1")
	c := provider.NewMockProvider("c", "c-1")
	r := newRouter(t, []provider.Provider{a, b, c}, func(o *Options) {
		o.MaxProviderCalls = 2
	})

	out := r.Route(context.Background(), core.CodeRequest{Prompt: "x", Language: "python"})
	assert.Len(t, out.Results, 2)
}

func TestRoute_UnknownModelFallsBack(t *testing.T) {
	a := provider.NewMockProvider("alpha", "a-1")
	r := newRouter(t, []provider.Provider{a})

	out := r.Route(context.Background(), core.CodeRequest{
		Prompt:         "fibonacci in python",
		Language:       "python",
		RequestedModel: "unknown-provider",
	})
	assert.Empty(t, out.Results)
	require.NotNil(t, out.Fallback)
}
