// Package openai provides a provider.Provider implementation backed by the
// OpenAI Chat Completions API. It adapts Codesmith's normalized request into
// the SDK's message format and parses the reply back into code + explanation.
package openai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/prompt"
	"github.com/hupe1980/codesmith/provider"
)

// ProviderID is the registry id under which this adapter is registered.
const ProviderID = "openai"

// Options configure the OpenAI adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Adapter wraps the OpenAI Chat Completions API behind the generic provider.Provider interface.
type Adapter struct {
	client *openai.Client
	opts   Options
}

// NewAdapter creates a new OpenAI adapter using the official client
func NewAdapter(optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:               openai.ChatModelGPT4o,
		Temperature:         0.3,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)
	return &Adapter{client: &client, opts: opts}
}

// NewAdapterFromClient creates a new OpenAI adapter from an existing client
func NewAdapterFromClient(client *openai.Client, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:               openai.ChatModelGPT4o,
		Temperature:         0.3,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Adapter{client: client, opts: opts}
}

// Generate implements provider.Provider. Every exit path is a ProviderResult;
// SDK errors are classified into stable detail codes.
func (a *Adapter) Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult {
	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.SystemInstruction),
			openai.UserMessage(prompt.Build(req.Prompt, req.Language)),
		},
		Model:               a.opts.Model,
		Temperature:         openai.Float(a.opts.Temperature),
		MaxCompletionTokens: openai.Int(a.opts.MaxCompletionTokens),
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return a.failure(err, time.Since(start))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return core.ProviderResult{
			ProviderID:  ProviderID,
			Status:      core.StatusFailed,
			Latency:     time.Since(start),
			ErrorDetail: core.ErrDetailMalformedResponse,
		}
	}

	code, explanation := prompt.ParseResponse(resp.Choices[0].Message.Content, req.Language)
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
	var apiErr *openai.Error
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

// Info returns metadata describing this OpenAI adapter.
func (a *Adapter) Info() provider.Info {
	return provider.Info{ID: ProviderID, Model: a.opts.Model}
}
