package selector

import (
	"math/rand"
	"testing"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func success(id, code, explanation string, latency time.Duration) core.ProviderResult {
	return core.ProviderResult{
		ProviderID:  id,
		Status:      core.StatusSuccess,
		Code:        code,
		Explanation: explanation,
		Latency:     latency,
	}
}

const pythonSnippet = "def fib(n):\n    a, b = 0, 1\n    for _ in range(n):\n        a, b = b, a + b\n    return a"

func TestSelect_ExplanationBreaksScoreTie(t *testing.T) {
	s := New()
	results := []core.ProviderResult{
		success("without", pythonSnippet, "", 10*time.Millisecond),
		success("with", pythonSnippet, "Iterative Fibonacci.", 50*time.Millisecond),
	}

	sel, err := s.Select("python", results, nil)
	require.NoError(t, err)
	assert.Equal(t, "with", sel.SourceProviderID, "the explained candidate must win when other scores tie")
}

func TestSelect_DeterministicUnderReordering(t *testing.T) {
	s := New(func(o *Options) { o.Priority = []string{"openai", "anthropic", "gemini"} })
	results := []core.ProviderResult{
		success("openai", pythonSnippet, "explained", 40*time.Millisecond),
		success("anthropic", pythonSnippet, "explained", 20*time.Millisecond),
		success("gemini", pythonSnippet, "explained", 30*time.Millisecond),
	}

	first, err := s.Select("python", results, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]core.ProviderResult, len(results))
		copy(shuffled, results)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		again, err := s.Select("python", shuffled, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSelect_PriorityThenLatencyTieBreak(t *testing.T) {
	s := New(func(o *Options) { o.Priority = []string{"preferred"} })
	results := []core.ProviderResult{
		success("other", pythonSnippet, "x", 5*time.Millisecond),
		success("preferred", pythonSnippet, "x", 500*time.Millisecond),
	}

	sel, err := s.Select("python", results, nil)
	require.NoError(t, err)
	assert.Equal(t, "preferred", sel.SourceProviderID)

	// Without a priority entry the lower latency wins.
	s = New()
	sel, err = s.Select("python", results, nil)
	require.NoError(t, err)
	assert.Equal(t, "other", sel.SourceProviderID)
}

func TestSelect_NearEmptyCodePenalized(t *testing.T) {
	s := New()
	results := []core.ProviderResult{
		success("tiny", "x = 1", "", time.Millisecond),
		success("real", pythonSnippet, "", time.Millisecond),
	}

	sel, err := s.Select("python", results, nil)
	require.NoError(t, err)
	assert.Equal(t, "real", sel.SourceProviderID)
}

func TestSelect_FailedResultsNeverFeedSelection(t *testing.T) {
	s := New()
	results := []core.ProviderResult{
		{ProviderID: "broken", Status: core.StatusFailed, Code: pythonSnippet, ErrorDetail: core.ErrDetailNetworkError},
		{ProviderID: "late", Status: core.StatusTimedOut, Code: pythonSnippet},
	}

	_, err := s.Select("python", results, nil)
	assert.ErrorIs(t, err, core.ErrNoViableCandidate)
}

func TestSelect_FallbackUsedWhenNoSuccess(t *testing.T) {
	s := New()
	fb := &core.SelectedResponse{
		Code:             "print('hi')",
		Language:         "python",
		SourceProviderID: core.FallbackProviderID,
		QualityScore:     0.25,
	}

	sel, err := s.Select("python", nil, fb)
	require.NoError(t, err)
	assert.Equal(t, fb, sel)
}

func TestSelect_NoCandidatesAndNoFallbackFails(t *testing.T) {
	s := New()

	sel, err := s.Select("python", nil, nil)
	assert.Nil(t, sel)
	assert.ErrorIs(t, err, core.ErrNoViableCandidate)
}

func TestSelect_SuccessWithEmptyCodeIsNotViable(t *testing.T) {
	s := New()
	results := []core.ProviderResult{
		success("empty", "   ", "explanation only", time.Millisecond),
	}

	_, err := s.Select("python", results, nil)
	assert.ErrorIs(t, err, core.ErrNoViableCandidate)
}

func TestLooksLikeCode(t *testing.T) {
	assert.True(t, looksLikeCode("python", pythonSnippet))
	assert.True(t, looksLikeCode("python", "```python\nanything\n```"))
	assert.True(t, looksLikeCode("go", "package main\nfunc main() {}"))
	assert.False(t, looksLikeCode("python", "I cannot help with that request."))
	assert.True(t, looksLikeCode("ruby", "puts 'hello'"), "unknown languages only require non-trivial text")
}
