package provider

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/hupe1980/codesmith/core"
)

// ClassifyStatus maps an HTTP status code from a provider SDK onto a stable
// error detail code.
func ClassifyStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.ErrDetailAuthFailure
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return core.ErrDetailQuotaExceeded
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return core.ErrDetailTimeout
	default:
		return core.ErrDetailNetworkError
	}
}

// ClassifyErr maps a transport-level error onto a stable error detail code.
// Unrecognized errors land in the network bucket; nothing unclassified
// escapes an adapter.
func ClassifyErr(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return core.ErrDetailTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return core.ErrDetailTimeout
		}
		return core.ErrDetailNetworkError
	}
}

// IsTimeoutDetail reports whether the detail code represents a deadline hit,
// which adapters record as StatusTimedOut rather than StatusFailed.
func IsTimeoutDetail(detail string) bool {
	return detail == core.ErrDetailTimeout
}
