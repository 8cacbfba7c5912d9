package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MinIOTimeout is the floor applied when bounded I/O is enabled with
// a non-positive timeout.
const MinIOTimeout = 100 * time.Millisecond

// Profile names the two operating modes for defensive behavior.
type Profile string

const (
	ProfileStrict     Profile = "strict"
	ProfilePermissive Profile = "permissive"
)

// Robustness governs defensive endpoint behavior: bounded I/O,
// header validation, broken-pipe log noise, and the server-side
// session limits. Resolved once at startup, read-only afterwards.
type Robustness struct {
	// TimeoutsEnabled arms per-call I/O deadlines of IOTimeout.
	TimeoutsEnabled bool
	IOTimeout       time.Duration
	// ValidateHeaders enforces the wire contract on received headers.
	ValidateHeaders bool
	// QuietBrokenPipe demotes broken-pipe write failures to debug
	// logging instead of warnings.
	QuietBrokenPipe bool
	// SessionGuard caps a server session's total wall-clock lifetime.
	// Zero leaves sessions unbounded.
	SessionGuard time.Duration
	// MaxRequests closes a server session after that many completed
	// request/response cycles. Zero means unlimited.
	MaxRequests int
}

// ServerDefaults is the strict server-side preset.
func ServerDefaults() Robustness {
	return Robustness{
		TimeoutsEnabled: true,
		IOTimeout:       5 * time.Second,
		ValidateHeaders: true,
		QuietBrokenPipe: true,
		SessionGuard:    60 * time.Second,
	}
}

// ClientDefaults is the strict client-side preset: same I/O behavior,
// no session guard.
func ClientDefaults() Robustness {
	return Robustness{
		TimeoutsEnabled: true,
		IOTimeout:       5 * time.Second,
		ValidateHeaders: true,
		QuietBrokenPipe: true,
	}
}

// Permissive returns r with every defensive behavior switched off in
// one step: untimed I/O, no header validation, loud broken-pipe
// logging, no session guard. This mode exists for fault-injection
// testing, not production use.
func (r Robustness) Permissive() Robustness {
	r.TimeoutsEnabled = false
	r.ValidateHeaders = false
	r.QuietBrokenPipe = false
	r.SessionGuard = 0
	return r
}

// Profile reports which operating mode r is in.
func (r Robustness) Profile() Profile {
	if !r.TimeoutsEnabled && !r.ValidateHeaders && !r.QuietBrokenPipe {
		return ProfilePermissive
	}
	return ProfileStrict
}

// WithDefaults normalizes invalid combinations. Enabled timeouts with
// a non-positive value are clamped to MinIOTimeout; negative limits
// collapse to their unlimited zero value.
func (r Robustness) WithDefaults() Robustness {
	if r.TimeoutsEnabled && r.IOTimeout <= 0 {
		r.IOTimeout = MinIOTimeout
	}
	if r.SessionGuard < 0 {
		r.SessionGuard = 0
	}
	if r.MaxRequests < 0 {
		r.MaxRequests = 0
	}
	return r
}

// FrameTimeout is the per-transfer bound handed to frame I/O: the
// configured timeout when enabled, untimed otherwise.
func (r Robustness) FrameTimeout() time.Duration {
	if !r.TimeoutsEnabled {
		return 0
	}
	return r.IOTimeout
}

// ServerSettings is the csbd runtime configuration resolved from
// defaults, then the config file, then flags.
type ServerSettings struct {
	ListenHost string
	Port       int
	AdminAddr  string
	LogLevel   string
	Robust     Robustness
}

// DefaultServerSettings listens on all interfaces at the wire
// protocol's conventional port with the strict server preset.
func DefaultServerSettings() ServerSettings {
	return ServerSettings{
		Port:   9090,
		Robust: ServerDefaults(),
	}
}

// Addr is the listen address handed to the TCP listener.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.ListenHost, strconv.Itoa(s.Port))
}

// serverFile is the csbd config.toml surface. Pointer fields
// distinguish an absent key from an explicit zero; guard_secs = 0 and
// max_requests = 0 are meaningful settings.
type serverFile struct {
	ListenHost  *string `toml:"listen_host"`
	Port        *int    `toml:"port"`
	AdminAddr   *string `toml:"admin_addr"`
	LogLevel    *string `toml:"log_level"`
	IOTimeoutMS *int    `toml:"io_timeout_ms"`
	GuardSecs   *int    `toml:"guard_secs"`
	MaxRequests *int    `toml:"max_requests"`
	NoRobust    *bool   `toml:"no_robust"`
}

// LoadServerSettings overlays the file at path onto the defaults.
func LoadServerSettings(path string) (ServerSettings, error) {
	return LoadServerSettingsInto(DefaultServerSettings(), path)
}

// LoadServerSettingsInto overlays the file at path onto base. Keys the
// file leaves out keep their base values, so callers can seed base
// from lower-precedence sources before loading.
func LoadServerSettingsInto(base ServerSettings, path string) (ServerSettings, error) {
	cfg := base

	var raw serverFile
	if err := loadToml(path, &raw); err != nil {
		return ServerSettings{}, err
	}
	if raw.ListenHost != nil {
		cfg.ListenHost = *raw.ListenHost
	}
	if raw.Port != nil {
		cfg.Port = *raw.Port
	}
	if raw.AdminAddr != nil {
		cfg.AdminAddr = *raw.AdminAddr
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.IOTimeoutMS != nil {
		cfg.Robust.IOTimeout = time.Duration(*raw.IOTimeoutMS) * time.Millisecond
	}
	if raw.GuardSecs != nil {
		cfg.Robust.SessionGuard = time.Duration(*raw.GuardSecs) * time.Second
	}
	if raw.MaxRequests != nil {
		cfg.Robust.MaxRequests = *raw.MaxRequests
	}
	if raw.NoRobust != nil && *raw.NoRobust {
		cfg.Robust = cfg.Robust.Permissive()
	}
	cfg.Robust = cfg.Robust.WithDefaults()

	if err := ValidateServerSettings(cfg); err != nil {
		return ServerSettings{}, err
	}
	return cfg, nil
}

func ValidateServerSettings(cfg ServerSettings) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("server config port out of range: %d", cfg.Port)
	}
	return nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
