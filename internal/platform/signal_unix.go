//go:build !windows

package platform

import (
	"os"
	"syscall"
)

func activationSignal() os.Signal { return syscall.SIGUSR1 }
