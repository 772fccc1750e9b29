// Package anthropic provides a provider.Provider implementation backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/prompt"
	"github.com/hupe1980/codesmith/provider"
)

// ProviderID is the registry id under which this adapter is registered.
const ProviderID = "anthropic"

// Options configure the Anthropic adapter (model id, temperature, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Adapter wraps the Anthropic Messages API behind the generic provider.Provider interface.
type Adapter struct {
	client *anthropic.Client
	opts   Options
}

// NewAdapter creates a new Anthropic adapter using the official client
func NewAdapter(optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Adapter{client: &client, opts: opts}
}

// NewAdapterFromClient creates a new Anthropic adapter from an existing client
func NewAdapterFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Adapter{client: client, opts: opts}
}

// Generate implements provider.Provider.
func (a *Adapter) Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:       a.opts.Model,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: anthropic.Float(a.opts.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: prompt.SystemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Build(req.Prompt, req.Language))),
		},
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return a.failure(err, time.Since(start))
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return core.ProviderResult{
			ProviderID:  ProviderID,
			Status:      core.StatusFailed,
			Latency:     time.Since(start),
			ErrorDetail: core.ErrDetailMalformedResponse,
		}
	}

	code, explanation := prompt.ParseResponse(text, req.Language)
	if code == "" {
		return core.ProviderResult{
			ProviderID:  ProviderID,
			Status:      core.StatusFailed,
			Latency:     time.Since(start),
			ErrorDetail: core.ErrDetailMalformedResponse,
		}
	}

	return core.ProviderResult{
		ProviderID:  ProviderID,
		Status:      core.StatusSuccess,
		Code:        code,
		Explanation: explanation,
		Latency:     time.Since(start),
	}
}

func (a *Adapter) failure(err error, latency time.Duration) core.ProviderResult {
	detail := provider.ClassifyErr(err)
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		detail = provider.ClassifyStatus(apiErr.StatusCode)
	}

	status := core.StatusFailed
	if provider.IsTimeoutDetail(detail) {
		status = core.StatusTimedOut
	}
	return core.ProviderResult{
		ProviderID:  ProviderID,
		Status:      status,
		Latency:     latency,
		ErrorDetail: detail,
	}
}

// Info returns metadata describing this Anthropic adapter.
func (a *Adapter) Info() provider.Info {
	return provider.Info{ID: ProviderID, Model: string(a.opts.Model)}
}
