//go:build linux

package sandbox

import (
	"os"
	"syscall"
)

// namespaceAttr detaches the child from the host network and mount
// namespaces. The user namespace is what lets an unprivileged process create
// the other two; the child sees itself as a single mapped uid. Returns false
// when the platform offers no namespace support at all.
func namespaceAttr(attr *syscall.SysProcAttr) bool {
	attr.Cloneflags = syscall.CLONE_NEWUSER | syscall.CLONE_NEWNET | syscall.CLONE_NEWNS
	attr.UidMappings = []syscall.SysProcIDMap{
		{ContainerID: 0, HostID: os.Getuid(), Size: 1},
	}
	attr.GidMappings = []syscall.SysProcIDMap{
		{ContainerID: 0, HostID: os.Getgid(), Size: 1},
	}
	attr.GidMappingsEnableSetgroups = false
	return true
}
