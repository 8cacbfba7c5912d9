package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "server":
		return serverTemplate, nil
	case "targets":
		return targetsTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `# csbd listener
listen_host = ""
port = 9090

# Admin HTTP endpoint (health/ready/metrics); empty disables it.
admin_addr = ""

log_level = "info"

# Per-call I/O deadline in milliseconds.
io_timeout_ms = 5000

# Wall-clock cap on one session; 0 leaves sessions unbounded.
guard_secs = 60

# Requests served before a session closes itself; 0 means unlimited.
max_requests = 0

# Switch every defensive behavior off at once (fault-injection runs).
no_robust = false
`

const targetsTemplate = `default_target = "local"

[[targets]]
name = "local"
host = "127.0.0.1"
port = 9090

[[targets]]
name = "lab"
host = "lab.example.net"
port = 9090
`
