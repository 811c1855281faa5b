//go:build windows

package platform

import "os"

func activationSignal() os.Signal { return nil }
