// pinger-gui - desktop front-end for ping, traceroute and nslookup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	flag "github.com/spf13/pflag"

	"pinger/config"
	"pinger/internal/core"
	"pinger/internal/gui"
	"pinger/internal/metrics"
	"pinger/util"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pinger-gui: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configFile string
		verbose    int
		noNotify   bool
	)
	fs := flag.NewFlagSet("pinger-gui", flag.ContinueOnError)
	fs.StringVarP(&configFile, "config", "c", "", "TOML config file")
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&noNotify, "no-notify", false, "Do not notify when a traceroute finishes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if configFile != "" {
		if err := config.LoadFile(configFile, cfg); err != nil {
			return err
		}
	}
	if fs.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if noNotify {
		cfg.Notify = false
	}
	if err := cfg.ValidateTools(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	m := metrics.New()
	d, err := core.BuildDispatcher(cfg, logger, m)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := fyneapp.NewWithID("pinger")
	go func() {
		<-ctx.Done()
		fyne.Do(a.Quit)
	}()

	gui.New(ctx, a, d, gui.Options{
		Logger:  logger,
		Metrics: m,
		Notify:  cfg.Notify,
	}).ShowAndRun()

	logger.Verbose("metrics: %s", m.JSON())
	return nil
}
