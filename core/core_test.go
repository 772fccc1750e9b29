package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStatus_String(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "timed_out", StatusTimedOut.String())
	assert.Equal(t, "unknown", ResultStatus(42).String())
}

func TestTerminationReason_String(t *testing.T) {
	assert.Equal(t, "normal", TerminationNormal.String())
	assert.Equal(t, "timeout", TerminationTimeout.String())
	assert.Equal(t, "resource_limit", TerminationResourceLimit.String())
	assert.Equal(t, "runtime_error", TerminationRuntimeError.String())
}

func TestCallLimiter(t *testing.T) {
	cl := NewCallLimiter(2)

	assert.NoError(t, cl.Increment())
	assert.NoError(t, cl.Increment())
	assert.Error(t, cl.Increment())
	assert.Equal(t, 3, cl.Count())
}

func TestCallLimiter_Unlimited(t *testing.T) {
	cl := NewCallLimiter(0)

	for i := 0; i < 100; i++ {
		assert.NoError(t, cl.Increment())
	}
	assert.Equal(t, -1, cl.Remaining())
}
