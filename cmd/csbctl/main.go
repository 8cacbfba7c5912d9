package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/csbwire/csbwire/internal/client"
	"github.com/csbwire/csbwire/internal/config"
	"github.com/csbwire/csbwire/internal/logging"
)

// errUsage marks command-line mistakes so run can exit 2 instead of
// the generic failure code.
var errUsage = errors.New("usage")

var (
	serverFlag  string
	hostFlag    string
	portFlag    int
	targetFlag  string
	targetsPath string
	logLevel    string
	ioTimeout   time.Duration
	guardFlag   time.Duration
	noRobust    bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and maps the outcome onto exit codes:
// 0 success, 1 command failure, 2 usage error.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "csbctl: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "csbctl",
		Short:         "Client for the framed TCP session protocol",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.ConfigureRuntime()
			if lvl, ok := logging.ParseLevel(logLevel); ok {
				logging.SetLevel(lvl)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: a command is required (ping, sysinfo, echo)", errUsage)
			}
			return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&serverFlag, "server", "s", "", "server address host:port; overrides every other endpoint source")
	pf.StringVar(&hostFlag, "host", "127.0.0.1", "server host")
	pf.IntVarP(&portFlag, "port", "p", 9090, "server port")
	pf.StringVar(&targetFlag, "target", "", "named target from the targets file")
	pf.StringVar(&targetsPath, "targets", defaultTargetsPath, "targets catalog (TOML)")
	pf.StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	pf.DurationVar(&ioTimeout, "io-timeout", 5*time.Second, "per-call I/O deadline")
	pf.DurationVar(&guardFlag, "guard", 0, "wall-clock cap on the whole command; 0 disables")
	pf.BoolVar(&noRobust, "no-robust", false, "switch every defensive behavior off")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	root.AddCommand(pingCmd(), sysinfoCmd(), echoCmd())
	return root
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Round-trip a liveness probe",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				ack, err := c.Ping(ctx)
				if err != nil {
					return err
				}
				fmt.Println(ack)
				return nil
			})
		},
	}
}

func sysinfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sysinfo",
		Short: "Fetch the server's system summary",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				summary, err := c.Sysinfo(ctx)
				if err != nil {
					return err
				}
				fmt.Println(summary)
				return nil
			})
		},
	}
}

func echoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "echo <text>",
		Short: "Send text and print the server's verbatim reply",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				reply, err := c.Echo(ctx, []byte(args[0]))
				if err != nil {
					return err
				}
				fmt.Println(string(reply))
				return nil
			})
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: %s takes no arguments", errUsage, cmd.Name())
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s requires exactly %d argument(s)", errUsage, cmd.Name(), n)
		}
		return nil
	}
}

// dialAddr resolves the endpoint: --server wins, then an explicit
// --host or --port, then the targets catalog.
func dialAddr(cmd *cobra.Command) (string, error) {
	if addr := strings.TrimSpace(serverFlag); addr != "" {
		return addr, nil
	}
	flags := cmd.Flags()
	if flags.Changed("host") || flags.Changed("port") {
		return net.JoinHostPort(hostFlag, strconv.Itoa(portFlag)), nil
	}
	return resolveAddr(targetFlag, targetsPath)
}

// withClient resolves the endpoint and robustness profile, dials,
// runs fn, and closes the connection. A positive --guard bounds the
// whole command, dial included, through the context deadline.
func withClient(cmd *cobra.Command, fn func(context.Context, *client.Client) error) error {
	addr, err := dialAddr(cmd)
	if err != nil {
		return err
	}

	robust := config.ClientDefaults()
	robust.IOTimeout = ioTimeout
	if noRobust {
		robust = robust.Permissive()
	}

	ctx := cmd.Context()
	if guardFlag > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, guardFlag)
		defer cancel()
	}

	c, err := client.Dial(ctx, client.Config{Address: addr, Robust: robust})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}
