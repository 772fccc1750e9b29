// Package gemini provides a provider.Provider implementation backed by the
// Gemini API through the official genai client.
package gemini

import (
	"context"
	"errors"
	"time"

	genai "google.golang.org/genai"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/prompt"
	"github.com/hupe1980/codesmith/provider"
)

// ProviderID is the registry id under which this adapter is registered.
const ProviderID = "gemini"

// Options configure the Gemini adapter.
type Options struct {
	Model       string
	Temperature float32
	APIKey      string
}

// Adapter wraps the genai client behind the generic provider.Provider interface.
type Adapter struct {
	client *genai.Client
	opts   Options
}

// NewAdapter creates a new Gemini adapter. The genai client performs network
// setup during construction, hence the ctx and error return.
func NewAdapter(ctx context.Context, optFns ...func(o *Options)) (*Adapter, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, opts: opts}, nil
}

// NewAdapterFromClient creates a new Gemini adapter from an existing client
func NewAdapterFromClient(client *genai.Client, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.3,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Adapter{client: client, opts: opts}
}

// Generate implements provider.Provider.
func (a *Adapter) Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult {
	start := time.Now()

	full := prompt.SystemInstruction + "\n\n" + prompt.Build(req.Prompt, req.Language)
	temp := a.opts.Temperature

	resp, err := a.client.Models.GenerateContent(ctx, a.opts.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		return a.failure(err, time.Since(start))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return core.ProviderResult{
			ProviderID:  ProviderID,
			Status:      core.StatusFailed,
			Latency:     time.Since(start),
			ErrorDetail: core.ErrDetailMalformedResponse,
		}
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
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
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		detail = provider.ClassifyStatus(apiErr.Code)
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

// Info returns metadata describing this Gemini adapter.
func (a *Adapter) Info() provider.Info {
	return provider.Info{ID: ProviderID, Model: a.opts.Model}
}
