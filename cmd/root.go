// Package cmd wires up the CLI flags and dispatches to the core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"modemconn/config"
	"modemconn/internal/core"
	"modemconn/internal/metrics"
	"modemconn/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X modemconn/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Output streams and the terminal probe are replaced in tests.
var (
	stdout io.Writer = os.Stdout //nolint:gochecknoglobals
	stderr io.Writer = os.Stderr //nolint:gochecknoglobals

	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } //nolint:gochecknoglobals

	buildMode = core.Build //nolint:gochecknoglobals
)

// Execute parses args and runs one connect.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{}
	fs := flag.NewFlagSet("modemconn", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── connection ───────────────────────────────────────────────
	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Per-address connect timeout in seconds (default 30)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&cfg.Timestamps, "timestamps", "t", false, "Prefix log lines with timestamps")
	fs.BoolVar(&cfg.Stats, "stats", false, "Print connect statistics as JSON when done")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// Flag definitions reset their targets, so the environment goes
	// in after them and before Parse.
	config.LoadFromEnv(cfg)

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || (len(args) == 0 && cfg.Host == "") {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "modemconn %s\n", version)
		return nil
	}

	if timeoutSec != 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	if cfg.Timestamps {
		logger.SetTimestamps(true)
	}

	if cfg.DryRun {
		fmt.Fprintf(stdout, "would connect to %s (timeout %ds per address)\n",
			util.FormatAddr(cfg.Host, cfg.Port), util.SecondsCeil(cfg.ConnectTimeout()))
		return nil
	}

	// ── build & run ──────────────────────────────────────────────
	var m *metrics.Collector
	if cfg.Stats {
		m = metrics.New()
	}

	mode, err := buildMode(cfg, logger, m)
	if err != nil {
		return err
	}
	err = mode.Run(ctx)

	if m != nil {
		fmt.Fprintln(stdout, m.JSON(stdoutIsTerminal()))
	}
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional accepts "<host> <port>".  Either may be omitted when
// the environment already supplied it.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
	case 1:
		if cfg.Host != "" && cfg.Port == 0 {
			return setPort(cfg, remaining[0])
		}
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		return setPort(cfg, remaining[1])
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

func setPort(cfg *config.Config, arg string) error {
	port, err := config.ParsePort(arg)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	cfg.Port = port
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(stderr, `modemconn – cellular modem TCP connect v%s

Resolves a hostname through the socket stack and connects to the first
IPv4 address that accepts, giving each address the full timeout.

Usage:
  modemconn [options] <host> <port>

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(stderr, `
Environment:
  MODEMCONN_HOST, MODEMCONN_PORT, MODEMCONN_TIMEOUT, MODEMCONN_VERBOSE,
  MODEMCONN_TIMESTAMPS, MODEMCONN_STATS (flags take precedence)

Examples:
  modemconn broker.example.com 8883           Connect with a 30s timeout
  modemconn -w 5 -v 10.0.0.1 1883             Short timeout, verbose
  modemconn --stats example.com 80            Print counters as JSON
`)
}
