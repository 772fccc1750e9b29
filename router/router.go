// Package router implements the fan-out/fan-in coordinator of the generation
// pipeline. It invokes the candidate providers concurrently under a shared
// deadline, collects every result in completion order, and consults the
// fallback engine when no provider succeeds. The router itself never fails;
// deciding pipeline-level success belongs to the selector.
package router

import (
	"context"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/fallback"
	"github.com/hupe1980/codesmith/logging"
	"github.com/hupe1980/codesmith/provider"
)

// Outcome is the complete routing result: every provider result (success,
// failure or timeout) in completion order, plus the fallback response when the
// fallback path was exercised and matched.
type Outcome struct {
	Results  []core.ProviderResult
	Fallback *core.SelectedResponse
}

// Options configure the router.
type Options struct {
	// RouteTimeout is the shared per-request deadline across all providers.
	RouteTimeout time.Duration
	// ProviderTimeout is the shorter internal timeout each provider call
	// additionally respects.
	ProviderTimeout time.Duration
	// MaxProviderCalls bounds provider invocations per request (0 = unlimited).
	MaxProviderCalls int
	Logger           logging.Logger
}

// Router coordinates concurrent provider invocations.
type Router struct {
	registry *provider.Registry
	fallback *fallback.Engine
	opts     Options
}

// New creates a router over the given registry and fallback engine.
func New(registry *provider.Registry, fb *fallback.Engine, optFns ...func(o *Options)) *Router {
	opts := Options{
		RouteTimeout:    30 * time.Second,
		ProviderTimeout: 20 * time.Second,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{registry: registry, fallback: fb, opts: opts}
}

// Route fans the request out to the candidate providers and fans every result
// back in. Partial failure of some providers never aborts the others; the
// router waits for all launched calls or the shared deadline, whichever comes
// first, and records any call still outstanding at the deadline as timed out.
func (r *Router) Route(ctx context.Context, req core.CodeRequest) Outcome {
	candidates := r.candidates(req)
	results := make([]core.ProviderResult, 0, len(candidates))

	if len(candidates) > 0 {
		routeCtx, cancel := context.WithTimeout(ctx, r.opts.RouteTimeout)
		defer cancel()

		limiter := core.NewCallLimiter(r.opts.MaxProviderCalls)
		resCh := make(chan core.ProviderResult, len(candidates))

		launched := 0
		for _, p := range candidates {
			if err := limiter.Increment(); err != nil {
				r.opts.Logger.Warn("provider call budget exhausted", "provider", p.Info().ID, "error", err)
				break
			}
			launched++
			go func(p provider.Provider) {
				callCtx, callCancel := context.WithTimeout(routeCtx, r.opts.ProviderTimeout)
				defer callCancel()
				resCh <- p.Generate(callCtx, req)
			}(p)
		}

		received := make(map[string]bool, launched)
	collect:
		for i := 0; i < launched; i++ {
			select {
			case res := <-resCh:
				received[res.ProviderID] = true
				results = append(results, res)
				r.opts.Logger.Info("provider call finished",
					"provider", res.ProviderID,
					"status", res.Status.String(),
					"latency", res.Latency,
					"error_detail", res.ErrorDetail,
				)
			case <-routeCtx.Done():
				break collect
			}
		}

		// Outstanding calls at the shared deadline are timed out, not failed.
		if routeCtx.Err() != nil {
			for _, p := range candidates[:launched] {
				id := p.Info().ID
				if received[id] {
					continue
				}
				results = append(results, core.ProviderResult{
					ProviderID:  id,
					Status:      core.StatusTimedOut,
					Latency:     r.opts.RouteTimeout,
					ErrorDetail: core.ErrDetailTimeout,
				})
			}
		}
	}

	// Caller-level cancellation: no generation result is owed once the caller
	// is gone, so the fallback path is skipped.
	if ctx.Err() != nil {
		return Outcome{Results: results}
	}

	if !anySuccess(results) {
		if sel, ok := r.fallback.Match(req); ok {
			return Outcome{Results: results, Fallback: sel}
		}
	}
	return Outcome{Results: results}
}

func (r *Router) candidates(req core.CodeRequest) []provider.Provider {
	model := req.RequestedModel
	if model == "" || model == core.ModelAuto {
		return r.registry.All()
	}
	if p, ok := r.registry.Get(model); ok {
		return []provider.Provider{p}
	}
	// Unknown provider id: empty candidate set, the fallback path decides.
	return nil
}

func anySuccess(results []core.ProviderResult) bool {
	for _, res := range results {
		if res.Status == core.StatusSuccess {
			return true
		}
	}
	return false
}
