//go:build linux

package sysinfo

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Summary returns the one-line host report: identity from uname,
// uptime and memory from sysinfo, load from /proc/loadavg.
func Summary() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("sysinfo: uname: %w", err)
	}
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return "", fmt.Errorf("sysinfo: sysinfo: %w", err)
	}

	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	totalMB := uint64(si.Totalram) * unit / (1024 * 1024)
	freeMB := uint64(si.Freeram) * unit / (1024 * 1024)
	upDays := float64(si.Uptime) / 86400.0

	return fmt.Sprintf(
		"node=%s sys=%s %s release=%s machine=%s | uptime=%.2fd | mem_total=%dMB free=%dMB | load=%s",
		utsField(uts.Nodename),
		utsField(uts.Sysname),
		utsField(uts.Version),
		utsField(uts.Release),
		utsField(uts.Machine),
		upDays,
		totalMB,
		freeMB,
		loadAverage(),
	), nil
}

// loadAverage is the first /proc/loadavg token, "n/a" when the file
// is unreadable.
func loadAverage() string {
	raw, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return "n/a"
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return "n/a"
	}
	return fields[0]
}

func utsField(b [65]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
