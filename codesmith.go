// Package codesmith provides a high-level façade over the generation
// pipeline: provider fan-out, deterministic selection, fallback templates,
// sandboxed execution and project materialization. Most applications interact
// with this package by:
//  1. Creating a Codesmith via New() with the provider adapters they hold
//     credentials for
//  2. Calling GenerateCode / ExecuteCode / CreateProject
//
// All defaults are safe for local development; production deployments
// typically supply a filesystem project store and a structured logger.
package codesmith

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/fallback"
	"github.com/hupe1980/codesmith/logging"
	"github.com/hupe1980/codesmith/project"
	"github.com/hupe1980/codesmith/prompt"
	"github.com/hupe1980/codesmith/provider"
	"github.com/hupe1980/codesmith/router"
	"github.com/hupe1980/codesmith/sandbox"
	"github.com/hupe1980/codesmith/selector"
)

// Options configures the Codesmith instance.
type Options struct {
	// Providers are the adapters to fan out to, in priority order.
	Providers []provider.Provider

	// RouteTimeout bounds one whole generation round trip.
	RouteTimeout time.Duration
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration
	// MaxProviderCalls caps concurrent provider launches per request.
	// Zero means no cap.
	MaxProviderCalls int

	// SelectorWeights tunes candidate scoring.
	SelectorWeights selector.Weights
	// SandboxLimits bounds untrusted code execution.
	SandboxLimits sandbox.Limits

	// ProjectStore persists materialized projects (defaults to in-memory).
	ProjectStore project.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Codesmith is the high-level façade aggregating the pipeline components.
type Codesmith struct {
	opts         Options
	registry     *provider.Registry
	router       *router.Router
	selector     *selector.Selector
	sandbox      *sandbox.Sandbox
	materializer *project.Materializer
	logger       logging.Logger
}

// New creates a Codesmith instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Codesmith {
	opts := Options{
		RouteTimeout:    30 * time.Second,
		ProviderTimeout: 20 * time.Second,
		SelectorWeights: selector.DefaultWeights,
		SandboxLimits:   sandbox.DefaultLimits(),
		ProjectStore:    project.NewMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := provider.NewRegistry(opts.Providers...)
	fb := fallback.NewEngine(func(o *fallback.Options) {
		o.Logger = opts.Logger
	})

	return &Codesmith{
		opts:     opts,
		registry: registry,
		router: router.New(registry, fb, func(o *router.Options) {
			o.RouteTimeout = opts.RouteTimeout
			o.ProviderTimeout = opts.ProviderTimeout
			o.MaxProviderCalls = opts.MaxProviderCalls
			o.Logger = opts.Logger
		}),
		selector: selector.New(func(o *selector.Options) {
			o.Weights = opts.SelectorWeights
			o.Priority = registry.IDs()
			o.Logger = opts.Logger
		}),
		sandbox: sandbox.New(func(o *sandbox.Options) {
			o.Limits = opts.SandboxLimits
			o.Logger = opts.Logger
		}),
		materializer: project.NewMaterializer(opts.ProjectStore, func(o *project.MaterializerOptions) {
			o.Logger = opts.Logger
		}),
		logger: opts.Logger,
	}
}

// GenerateCode fans the request out, selects the best candidate and returns
// it. With zero successful providers the fallback catalog is consulted; if
// nothing matches, core.ErrNoViableCandidate is returned.
func (c *Codesmith) GenerateCode(ctx context.Context, req core.CodeRequest) (*core.SelectedResponse, error) {
	outcome := c.router.Route(ctx, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.selector.Select(req.Language, outcome.Results, outcome.Fallback)
}

// ExecuteCode runs untrusted code in the sandbox. Program failures are
// reported inside the result; the error covers setup faults only.
func (c *Codesmith) ExecuteCode(ctx context.Context, code, language string) (core.ExecutionResult, error) {
	return c.sandbox.Execute(ctx, code, language)
}

// AnalyzeCode asks the first registered provider for a review of the given
// code. With no providers configured a static notice is returned.
func (c *Codesmith) AnalyzeCode(ctx context.Context, code, language string) (string, error) {
	providers := c.registry.All()
	if len(providers) == 0 {
		return "Code analysis requires a configured AI provider.", nil
	}

	req := core.CodeRequest{
		Prompt:         prompt.BuildAnalysis(code, language),
		Language:       language,
		RequestedModel: providers[0].Info().ID,
	}
	res := providers[0].Generate(ctx, req)
	if res.Status != core.StatusSuccess {
		return "", core.ErrNoViableCandidate
	}

	analysis := strings.TrimSpace(res.Explanation)
	if analysis == "" {
		analysis = strings.TrimSpace(res.Code)
	}
	return analysis, nil
}

// CreateProject generates code for the request and materializes it into a
// full project tree for the tech stack.
func (c *Codesmith) CreateProject(ctx context.Context, userID string, name, description, techStack string, req core.CodeRequest) (*project.Project, error) {
	sel, err := c.GenerateCode(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.materializer.MaterializeProject(userID, project.Spec{
		Name:        name,
		Description: description,
		TechStack:   techStack,
		Code:        sel.Code,
	})
}

// Projects exposes the materializer for project CRUD.
func (c *Codesmith) Projects() *project.Materializer { return c.materializer }

// Providers lists the registered provider infos in priority order.
func (c *Codesmith) Providers() []provider.Info {
	all := c.registry.All()
	infos := make([]provider.Info, 0, len(all))
	for _, p := range all {
		infos = append(infos, p.Info())
	}
	return infos
}
