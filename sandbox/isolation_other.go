//go:build !linux

package sandbox

import "syscall"

// namespaceAttr is a no-op outside Linux; the run proceeds on the host
// namespaces with only the rlimit and process-group boundaries.
func namespaceAttr(attr *syscall.SysProcAttr) bool {
	return false
}
