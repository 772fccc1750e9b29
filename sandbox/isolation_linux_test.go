//go:build linux

package sandbox

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceAttrDetachesNetworkAndMounts(t *testing.T) {
	attr := &syscall.SysProcAttr{Setpgid: true}
	require.True(t, namespaceAttr(attr))

	assert.NotZero(t, attr.Cloneflags&syscall.CLONE_NEWUSER)
	assert.NotZero(t, attr.Cloneflags&syscall.CLONE_NEWNET)
	assert.NotZero(t, attr.Cloneflags&syscall.CLONE_NEWNS)
	require.Len(t, attr.UidMappings, 1)
	require.Len(t, attr.GidMappings, 1)
	assert.True(t, attr.Setpgid)
}
