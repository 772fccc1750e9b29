// Package fallback implements the deterministic, offline code generator used
// when no provider succeeds. It keeps a static catalog of common task
// templates matched against the prompt via keyword scoring; because it never
// touches the network the pipeline stays functional with zero credentials
// configured.
package fallback

import (
	"strings"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/internal/util"
	"github.com/hupe1980/codesmith/logging"
)

// QualityScore is the fixed score attached to fallback responses. It is
// deliberately below anything a successful provider result can earn.
const QualityScore = 0.25

// DefaultThreshold is the minimum keyword-match confidence a template must
// reach. Below it the engine returns nothing; a poor match is never
// silently substituted for the request.
const DefaultThreshold = 1.0

// Keyword is one weighted matching term of a template.
type Keyword struct {
	Term   string
	Weight float64
}

// Template is one catalog entry: a task signature plus rendered snippets per
// language. Snippet bodies may use text/template markers ({{.Prompt}}).
type Template struct {
	Name        string
	Keywords    []Keyword
	Explanation string
	Snippets    map[string]string // language -> snippet body
}

// Options configure the fallback engine.
type Options struct {
	Catalog   []Template
	Threshold float64
	Logger    logging.Logger
}

// Engine matches requests against the catalog. It is read-only after
// construction and safe for concurrent use.
type Engine struct {
	catalog   []Template
	threshold float64
	logger    logging.Logger
}

// NewEngine creates a fallback engine with the default catalog and threshold.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Catalog:   DefaultCatalog(),
		Threshold: DefaultThreshold,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{catalog: opts.Catalog, threshold: opts.Threshold, logger: opts.Logger}
}

// Match returns the best-matching template rendered for the requested
// language, or false when no template reaches the confidence threshold or
// the best template has no snippet for the language. Matching is
// deterministic: score, then catalog order.
func (e *Engine) Match(req core.CodeRequest) (*core.SelectedResponse, bool) {
	tokens := tokenize(req.Prompt)

	best := -1
	bestScore := 0.0
	for i, tpl := range e.catalog {
		score := tpl.score(tokens)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 || bestScore < e.threshold {
		return nil, false
	}

	tpl := e.catalog[best]
	language := normalizeLanguage(req.Language)
	body, ok := tpl.Snippets[language]
	if !ok {
		e.logger.Debug("fallback template has no snippet for language", "template", tpl.Name, "language", language)
		return nil, false
	}

	code, err := util.RenderTemplate(body, map[string]any{"Prompt": req.Prompt})
	if err != nil {
		e.logger.Error("fallback template render failed", "template", tpl.Name, "error", err)
		return nil, false
	}

	e.logger.Info("fallback template matched", "template", tpl.Name, "confidence", bestScore)
	return &core.SelectedResponse{
		Code:             code,
		Language:         language,
		Explanation:      tpl.Explanation,
		SourceProviderID: core.FallbackProviderID,
		QualityScore:     QualityScore,
	}, true
}

func (t Template) score(tokens map[string]bool) float64 {
	var score float64
	for _, kw := range t.Keywords {
		if tokens[kw.Term] {
			score += kw.Weight
		}
	}
	return score
}

func tokenize(prompt string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, prompt)

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		tokens[tok] = true
	}
	return tokens
}

func normalizeLanguage(language string) string {
	switch strings.ToLower(language) {
	case "js", "node", "nodejs":
		return "javascript"
	case "golang":
		return "go"
	case "":
		return "python"
	default:
		return strings.ToLower(language)
	}
}
