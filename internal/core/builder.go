package core

import (
	"net"

	"pinger/config"
	"pinger/internal/command"
	"pinger/internal/dispatch"
	"pinger/internal/metrics"
	"pinger/internal/probe"
	"pinger/internal/transport"
	"pinger/util"
)

// Build constructs the appropriate Mode from the given configuration.
// cfg must have passed Validate.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	d, err := BuildDispatcher(cfg, logger, m)
	if err != nil {
		return nil, err
	}

	if cfg.Interactive {
		return &ConsoleMode{
			Dispatcher: d,
			Logger:     logger,
			Metrics:    m,
		}, nil
	}

	op, err := cfg.Op()
	if err != nil {
		return nil, err
	}
	return &OneShotMode{
		Dispatcher: d,
		Op:         op,
		Target:     cfg.Target,
		Logger:     logger,
		Metrics:    m,
	}, nil
}

// BuildDispatcher wires the production resolver, prober and launcher
// from cfg.  Every front-end shares it.
func BuildDispatcher(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (*dispatch.Dispatcher, error) {
	traceArgv, err := cfg.TraceArgv()
	if err != nil {
		return nil, err
	}
	lookupArgv, err := cfg.LookupArgv()
	if err != nil {
		return nil, err
	}

	return &dispatch.Dispatcher{
		Resolver:      &probe.NetResolver{Resolver: net.DefaultResolver},
		Prober: &probe.TCPEchoProber{
			Port: cfg.EchoPort,
			Dial: (&transport.TCPDialer{LocalAddr: cfg.SourceAddress}).Dial,
		},
		Launcher:      &command.ExecLauncher{Logger: logger.Named("exec")},
		TraceCommand:  traceArgv,
		LookupCommand: lookupArgv,
		Logger:        logger.Named("dispatch"),
		Metrics:       m,
	}, nil
}
