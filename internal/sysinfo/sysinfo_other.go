//go:build !linux

package sysinfo

import (
	"fmt"
	"os"
	"runtime"
)

// Summary reports the portable subset of the host line; uptime,
// memory, and load figures need the Linux sysinfo syscall.
func Summary() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("sysinfo: hostname: %w", err)
	}
	return fmt.Sprintf(
		"node=%s sys=%s release=unknown machine=%s | uptime=0.00d | mem_total=0MB free=0MB | load=n/a",
		host, runtime.GOOS, runtime.GOARCH,
	), nil
}
