//go:build !unix

package run

import (
	"github.com/aymanbagabas/go-pty"
)

func kill(cmd *pty.Cmd) error {
	return cmd.Process.Kill()
}
