package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/csbwire/csbwire/internal/config"
	"github.com/csbwire/csbwire/internal/handler"
	"github.com/csbwire/csbwire/internal/logging"
	"github.com/csbwire/csbwire/internal/observability"
	"github.com/csbwire/csbwire/internal/server"
)

// EnvMaxRequests seeds the per-session request ceiling when neither
// the config file nor the flag sets one.
const EnvMaxRequests = "CSBWIRE_MAX_REQUESTS"

var (
	cfgPath     string
	listenHost  string
	port        int
	adminAddr   string
	logLevel    string
	ioTimeout   time.Duration
	guard       time.Duration
	maxRequests int
	noRobust    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "csbd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "csbd",
		Short:         "Framed TCP session daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "TOML config file; flags override it")
	cmd.Flags().StringVarP(&listenHost, "listen", "l", "", "bind address (default all interfaces)")
	cmd.Flags().IntVarP(&port, "port", "p", 9090, "listen port")
	cmd.Flags().StringVar(&adminAddr, "admin", "", "admin HTTP address for health and metrics; empty disables")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	cmd.Flags().DurationVar(&ioTimeout, "io-timeout", 5*time.Second, "per-call I/O deadline")
	cmd.Flags().DurationVar(&guard, "guard", 60*time.Second, "wall-clock cap on one session; 0 disables")
	cmd.Flags().IntVar(&maxRequests, "max-requests", 0, "requests served before a session closes; 0 means unlimited")
	cmd.Flags().BoolVar(&noRobust, "no-robust", false, "switch every defensive behavior off")
	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	observability.InitLogger("csbd")

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if settings.LogLevel != "" {
		lvl, ok := logging.ParseLevel(settings.LogLevel)
		if !ok {
			return fmt.Errorf("unknown log level: %q", settings.LogLevel)
		}
		logging.SetLevel(lvl)
	}

	svc := server.NewServiceWithConfig(server.ServiceConfig{
		ListenAddr: settings.Addr(),
		AdminAddr:  settings.AdminAddr,
		Robust:     settings.Robust,
	}, handler.NewHost())
	return svc.Run()
}

// resolveSettings layers the runtime configuration in rising
// precedence: built-in defaults, the CSBWIRE_MAX_REQUESTS environment
// variable, the config file, then explicit flags.
func resolveSettings(cmd *cobra.Command) (config.ServerSettings, error) {
	settings := config.DefaultServerSettings()

	if raw := os.Getenv(EnvMaxRequests); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			settings.Robust.MaxRequests = n
		} else {
			log.Warn().Str("value", raw).Msg("ignoring invalid " + EnvMaxRequests)
		}
	}

	if cfgPath != "" {
		loaded, err := config.LoadServerSettingsInto(settings, cfgPath)
		if err != nil {
			return config.ServerSettings{}, err
		}
		settings = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		settings.ListenHost = listenHost
	}
	if flags.Changed("port") {
		settings.Port = port
	}
	if flags.Changed("admin") {
		settings.AdminAddr = adminAddr
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if flags.Changed("io-timeout") {
		settings.Robust.IOTimeout = ioTimeout
	}
	if flags.Changed("guard") {
		settings.Robust.SessionGuard = guard
	}
	if flags.Changed("max-requests") {
		settings.Robust.MaxRequests = maxRequests
	}
	if noRobust {
		settings.Robust = settings.Robust.Permissive()
	}
	settings.Robust = settings.Robust.WithDefaults()

	if err := config.ValidateServerSettings(settings); err != nil {
		return config.ServerSettings{}, err
	}
	return settings, nil
}
