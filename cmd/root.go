// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"pinger/config"
	"pinger/internal/core"
	"pinger/internal/metrics"
	"pinger/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pinger/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate pinger mode.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

// flagValues holds raw flag values; they are overlaid onto the config
// only when set so that the config file sits between flags and
// defaults.
type flagValues struct {
	configFile string
	traceCmd   string
	lookupCmd  string
	echoPort   int
	source     string
	verbose    int

	interactive bool
	showMetrics bool
	dryRun      bool
	showVersion bool
	showHelp    bool
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var fv flagValues
	fs := flag.NewFlagSet("pinger", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── mode ─────────────────────────────────────────────────────
	fs.BoolVarP(&fv.interactive, "interactive", "i", false, "Interactive console")

	// ── tools ────────────────────────────────────────────────────
	fs.StringVarP(&fv.configFile, "config", "c", "", "TOML config file")
	fs.StringVar(&fv.traceCmd, "trace-cmd", config.DefaultTraceCommand, "Route-tracing command")
	fs.StringVar(&fv.lookupCmd, "lookup-cmd", config.DefaultLookupCommand, "Name-lookup command")
	fs.IntVar(&fv.echoPort, "echo-port", config.DefaultEchoPort, "TCP port probed by ping")
	fs.StringVar(&fv.source, "source", "", "Source IP address for ping probes")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fv.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&fv.showMetrics, "metrics", false, "Print run metrics as JSON to stderr on exit")
	fs.BoolVar(&fv.dryRun, "dry-run", false, "Validate configuration and print it without running")

	fs.BoolVar(&fv.showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&fv.showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fv.showHelp || len(args) == 0 {
		printUsage(stderr, fs)
		return nil
	}
	if fv.showVersion {
		fmt.Fprintf(stdout, "pinger %s\n", version)
		return nil
	}

	// ── configuration ────────────────────────────────────────────
	cfg, err := loadConfig(fs, &fv)
	if err != nil {
		return err
	}
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.DryRun {
		return printDryRun(stdout, cfg)
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)
	m := metrics.New()

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}

	runErr := mode.Run(ctx)
	if cfg.ShowMetrics {
		fmt.Fprintln(stderr, m.JSON())
	}
	return runErr
}

// ── helpers ──────────────────────────────────────────────────────────

// loadConfig applies defaults, then the config file, then every flag
// the user set explicitly.
func loadConfig(fs *flag.FlagSet, fv *flagValues) (*config.Config, error) {
	cfg := config.Default()

	if fv.configFile != "" {
		if err := config.LoadFile(fv.configFile, cfg); err != nil {
			return nil, err
		}
	}

	if fs.Changed("trace-cmd") {
		cfg.TraceCommand = fv.traceCmd
	}
	if fs.Changed("lookup-cmd") {
		cfg.LookupCommand = fv.lookupCmd
	}
	if fs.Changed("echo-port") {
		cfg.EchoPort = fv.echoPort
	}
	if fs.Changed("source") {
		cfg.SourceAddress = fv.source
	}
	if fs.Changed("verbose") {
		cfg.Verbose = fv.verbose
	}

	cfg.Interactive = fv.interactive
	cfg.ShowMetrics = fv.showMetrics
	cfg.DryRun = fv.dryRun
	return cfg, nil
}

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Interactive {
		if len(remaining) > 0 {
			return fmt.Errorf("console mode takes no arguments (got %q)", strings.Join(remaining, " "))
		}
		return nil
	}

	// operation [target]; a missing target is reported by the run.
	switch len(remaining) {
	case 0:
	case 1:
		cfg.Operation = remaining[0]
	case 2:
		cfg.Operation = remaining[0]
		cfg.Target = strings.TrimSpace(remaining[1])
	default:
		return fmt.Errorf("too many arguments: expected <operation> <target>")
	}
	return nil
}

func printDryRun(w io.Writer, cfg *config.Config) error {
	traceArgv, err := cfg.TraceArgv()
	if err != nil {
		return err
	}
	lookupArgv, err := cfg.LookupArgv()
	if err != nil {
		return err
	}

	mode := "one-shot"
	if cfg.Interactive {
		mode = "console"
	}
	file := cfg.ConfigFile
	if file == "" {
		file = "(none)"
	}

	fmt.Fprintf(w, "mode:         %s\n", mode)
	if !cfg.Interactive {
		op, _ := cfg.Op()
		fmt.Fprintf(w, "operation:    %s\n", op)
		fmt.Fprintf(w, "target:       %q\n", cfg.Target)
	}
	fmt.Fprintf(w, "config file:  %s\n", file)
	fmt.Fprintf(w, "trace argv:   %q\n", traceArgv)
	fmt.Fprintf(w, "lookup argv:  %q\n", lookupArgv)
	fmt.Fprintf(w, "echo port:    %d\n", cfg.EchoPort)
	if cfg.SourceAddress != "" {
		fmt.Fprintf(w, "source:       %s\n", cfg.SourceAddress)
	}
	fmt.Fprintf(w, "verbosity:    %d\n", cfg.Verbose)
	return nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `pinger - Network Diagnostic Tool v%s

Runs ping, traceroute and nslookup and streams their results.

Usage:
  pinger [options] ping <target>          Probe reachability (TCP echo, 4 probes)
  pinger [options] traceroute <target>    Trace the route with the system tool
  pinger [options] nslookup <target>      Query name servers with the system tool
  pinger -i [options]                     Interactive console

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Config file (TOML, --config):
  trace_command  = "traceroute -n"
  lookup_command = "nslookup"
  echo_port      = 7
  source_address = "192.0.2.5"
  verbose        = 1

Examples:
  pinger ping 192.0.2.10
  pinger --trace-cmd "traceroute -n -w 2" traceroute example.com
  pinger -c ~/.config/pinger.toml -i
`)
}
