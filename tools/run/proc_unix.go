//go:build unix

package run

import (
	"syscall"

	"github.com/aymanbagabas/go-pty"
)

// The emulator is the leader of the pty's session, so its pid is also the
// process group.
func kill(cmd *pty.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
}
