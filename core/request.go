package core

import "time"

// ModelAuto requests routing across every registered provider instead of a
// single named one.
const ModelAuto = "auto"

// FallbackProviderID is the sentinel source id used when a response was
// produced by the offline template engine rather than a provider.
const FallbackProviderID = "fallback"

// CodeRequest is the immutable caller input to the generation pipeline.
// RequestedModel is either ModelAuto or the id of one registered provider.
type CodeRequest struct {
	Prompt         string `json:"prompt"`
	Language       string `json:"language"`
	RequestedModel string `json:"requested_model"`
}

// ResultStatus classifies the outcome of a single provider invocation.
type ResultStatus int

const (
	// StatusSuccess indicates the provider returned a usable completion.
	StatusSuccess ResultStatus = iota
	// StatusFailed indicates the provider failed with a classified error.
	StatusFailed
	// StatusTimedOut indicates the provider did not finish before its deadline.
	StatusTimedOut
)

// String returns the string representation of the result status.
func (s ResultStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Stable error detail codes attached to failed ProviderResults. Adapters must
// map every SDK failure onto one of these; no unclassified failure propagates
// past an adapter boundary.
const (
	ErrDetailAuthFailure       = "auth_failure"
	ErrDetailQuotaExceeded     = "quota_exceeded"
	ErrDetailTimeout           = "timeout"
	ErrDetailMalformedResponse = "malformed_response"
	ErrDetailNetworkError      = "network_error"
)

// ProviderResult is produced exactly once per adapter invocation and never
// mutated afterwards. Failed results are retained for diagnostics but only
// StatusSuccess results feed selection.
type ProviderResult struct {
	ProviderID  string        `json:"provider_id"`
	Status      ResultStatus  `json:"status"`
	Code        string        `json:"code,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Latency     time.Duration `json:"latency"`
	ErrorDetail string        `json:"error_detail,omitempty"`
}

// SelectedResponse is the single best candidate derived from a result set (or
// the fallback engine). Code is always non-empty; an empty artifact is never
// returned, the pipeline fails explicitly instead.
type SelectedResponse struct {
	Code             string  `json:"code"`
	Language         string  `json:"language"`
	Explanation      string  `json:"explanation"`
	SourceProviderID string  `json:"source_provider_id"`
	QualityScore     float64 `json:"quality_score"`
}
