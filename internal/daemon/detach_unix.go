//go:build unix

package daemon

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// detachAttrs starts the child in a new session.
func detachAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}
