// Package selector picks the single best candidate among provider results.
// Scoring is deterministic and independent of arrival order: the same result
// set always yields the same SelectedResponse.
package selector

import (
	"strings"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/logging"
	"github.com/hupe1980/codesmith/prompt"
)

// Weights holds the scoring weights. The exact values are configuration, not
// ground truth; only their relative order matters for the defaults.
type Weights struct {
	// CodeBlock is awarded when the candidate code plausibly matches the
	// requested language.
	CodeBlock float64
	// Length is awarded when the code length falls inside the plausible
	// window (neither near-empty nor absurdly long).
	Length float64
	// Explanation is a small bonus for a non-empty explanation.
	Explanation float64
}

// DefaultWeights order candidates by code validity first, then plausible
// size, then the explanation bonus.
var DefaultWeights = Weights{CodeBlock: 0.6, Length: 0.25, Explanation: 0.15}

// Options configure the selector.
type Options struct {
	Weights Weights
	// Priority is the fixed provider ranking used to break score ties,
	// best first. Providers not listed rank after all listed ones.
	Priority   []string
	MinCodeLen int
	MaxCodeLen int
	Logger     logging.Logger
}

// Selector scores successful provider results and picks the winner.
type Selector struct {
	opts Options
}

// New creates a selector with default weights and length window.
func New(optFns ...func(o *Options)) *Selector {
	opts := Options{
		Weights:    DefaultWeights,
		MinCodeLen: 10,
		MaxCodeLen: 20000,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Selector{opts: opts}
}

// Select returns the highest-scoring successful result as a SelectedResponse.
// Ties break by provider priority, then lowest latency, then provider id so
// the choice is reproducible. With no successful result the fallback response
// is used when present; otherwise selection fails with ErrNoViableCandidate.
func (s *Selector) Select(language string, results []core.ProviderResult, fb *core.SelectedResponse) (*core.SelectedResponse, error) {
	var best *core.ProviderResult
	var bestScore float64

	for i := range results {
		res := &results[i]
		if res.Status != core.StatusSuccess || strings.TrimSpace(res.Code) == "" {
			continue
		}
		score := s.score(language, res)
		if best == nil || s.better(score, res, bestScore, best) {
			best = res
			bestScore = score
		}
	}

	if best != nil {
		s.opts.Logger.Info("candidate selected", "provider", best.ProviderID, "score", bestScore, "candidates", len(results))
		return &core.SelectedResponse{
			Code:             best.Code,
			Language:         language,
			Explanation:      best.Explanation,
			SourceProviderID: best.ProviderID,
			QualityScore:     bestScore,
		}, nil
	}

	if fb != nil {
		s.opts.Logger.Info("falling back to template response")
		return fb, nil
	}
	return nil, core.ErrNoViableCandidate
}

func (s *Selector) score(language string, res *core.ProviderResult) float64 {
	var score float64
	if looksLikeCode(language, res.Code) {
		score += s.opts.Weights.CodeBlock
	}
	if n := len(res.Code); n >= s.opts.MinCodeLen && n <= s.opts.MaxCodeLen {
		score += s.opts.Weights.Length
	}
	if strings.TrimSpace(res.Explanation) != "" {
		score += s.opts.Weights.Explanation
	}
	return score
}

// better reports whether (score, res) beats the current best under the full
// deterministic ordering.
func (s *Selector) better(score float64, res *core.ProviderResult, bestScore float64, best *core.ProviderResult) bool {
	if score != bestScore {
		return score > bestScore
	}
	pr, pb := s.priorityRank(res.ProviderID), s.priorityRank(best.ProviderID)
	if pr != pb {
		return pr < pb
	}
	if res.Latency != best.Latency {
		return res.Latency < best.Latency
	}
	return res.ProviderID < best.ProviderID
}

func (s *Selector) priorityRank(providerID string) int {
	for i, id := range s.opts.Priority {
		if id == providerID {
			return i
		}
	}
	return len(s.opts.Priority)
}

// language signature markers used to judge whether code plausibly matches the
// requested language. Unknown languages only require a fenced block or
// non-trivial text.
var languageMarkers = map[string][]string{
	"python":     {"def ", "import ", "print(", "class ", "lambda "},
	"javascript": {"function ", "const ", "let ", "var ", "console.", "=>"},
	"typescript": {"function ", "const ", "let ", "interface ", "=>"},
	"go":         {"package ", "func ", ":=", "import "},
}

func looksLikeCode(language, code string) bool {
	if prompt.HasFencedBlock(code, language) {
		return true
	}
	markers, ok := languageMarkers[strings.ToLower(language)]
	if !ok {
		return strings.TrimSpace(code) != ""
	}
	for _, m := range markers {
		if strings.Contains(code, m) {
			return true
		}
	}
	return false
}
