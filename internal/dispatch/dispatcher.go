// Package dispatch executes one diagnostic operation against a target
// and reports its progress as a sequence of text lines.
//
// Every operation first resolves the target.  Reachability then sends a
// fixed number of probes and prints one line per probe; RouteTrace and
// NameResolve run a platform utility and relay its standard output
// line by line as it is produced.
package dispatch

import (
	"context"
	"time"

	"pinger/internal/command"
	"pinger/internal/errors"
	"pinger/internal/metrics"
	"pinger/internal/probe"
	"pinger/util"
)

const (
	// ProbeCount is the number of reachability probes per run.
	ProbeCount = 4
	// ProbeTimeout bounds a single reachability probe.
	ProbeTimeout = 5000 * time.Millisecond
)

// Emitter receives output lines in the order they are produced.
type Emitter func(line string)

// ProbeResult is the outcome of one reachability probe.
type ProbeResult struct {
	Seq       int
	Elapsed   time.Duration
	Reachable bool
}

// Line renders the result the way ping utilities do.
func (r ProbeResult) Line(addr string) string {
	if !r.Reachable {
		return MsgTimedOut
	}
	ms := r.Elapsed.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return ReplyLine(addr, ms)
}

// Dispatcher runs operations.  The zero value is not usable; Resolver,
// Prober, Launcher and the two command prefixes must be set.
type Dispatcher struct {
	Resolver probe.Resolver
	Prober   probe.Prober
	Launcher command.Launcher

	// TraceCommand and LookupCommand are argv prefixes; the target is
	// appended as the final element.
	TraceCommand  []string
	LookupCommand []string

	Now     func() time.Time // nil means time.Now
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Dispatch runs op against target, calling emit for every output line.
// A non-nil error is always an *errors.DiagError whose user-facing line
// has not been emitted yet; see Describe.
func (d *Dispatcher) Dispatch(ctx context.Context, target string, op Operation, emit Emitter) error {
	addr, err := d.Resolver.Resolve(ctx, target)
	if err != nil {
		d.logger().Verbose("resolve %q: %v", target, err)
		return errors.Diag(errors.KindHostUnresolvable, target, err)
	}
	d.logger().Debug("%s: %s resolved to %s", op, target, addr)

	switch op {
	case Reachability:
		return d.ping(ctx, target, addr, emit)
	case RouteTrace:
		return d.traceroute(ctx, target, emit)
	case NameResolve:
		return d.nslookup(ctx, target, emit)
	}
	return errors.Diag(errors.KindUnknown, target, errors.New("unsupported operation "+op.String()))
}

func (d *Dispatcher) ping(ctx context.Context, target, addr string, emit Emitter) error {
	now := d.now()
	for seq := 0; seq < ProbeCount; seq++ {
		start := now()
		ok, err := d.Prober.Probe(ctx, addr, ProbeTimeout)
		elapsed := now().Sub(start)
		if err != nil {
			d.logger().Verbose("probe %d to %s: %v", seq, addr, err)
			return errors.Diag(errors.KindProbeIO, target, err)
		}

		res := ProbeResult{Seq: seq, Elapsed: elapsed, Reachable: ok}
		if ok {
			d.Metrics.ProbeReply()
		} else {
			d.Metrics.ProbeTimeout()
		}
		emit(res.Line(addr))
	}
	return nil
}

func (d *Dispatcher) traceroute(ctx context.Context, target string, emit Emitter) error {
	proc, err := d.start(ctx, d.TraceCommand, target)
	if err != nil {
		return err
	}
	defer proc.Close()

	if err := relay(proc, emit); err != nil {
		return errors.Diag(errors.KindLaunch, target, err)
	}

	// The output stream has ended, but the exit status may not have been
	// collected yet.  Checking without waiting reads that case as success.
	code, exited := proc.ExitCode()
	if !exited {
		d.logger().Debug("traceroute %s: exit status not yet available", target)
		return nil
	}
	if code != 0 {
		d.logger().Verbose("traceroute %s exited with %d", target, code)
		return errors.ExitStatus(target, code)
	}
	return nil
}

func (d *Dispatcher) nslookup(ctx context.Context, target string, emit Emitter) error {
	proc, err := d.start(ctx, d.LookupCommand, target)
	if err != nil {
		return err
	}
	defer proc.Close()

	if err := relay(proc, emit); err != nil {
		return errors.Diag(errors.KindLaunch, target, err)
	}

	code, err := proc.Wait(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrInterrupted) {
			return errors.Diag(errors.KindInterrupted, target, err)
		}
		return errors.Diag(errors.KindLaunch, target, err)
	}
	if code != 0 {
		d.logger().Verbose("nslookup %s exited with %d", target, code)
		return errors.ExitStatus(target, code)
	}
	return nil
}

func (d *Dispatcher) start(ctx context.Context, prefix []string, target string) (command.Process, error) {
	argv := make([]string, 0, len(prefix)+1)
	argv = append(argv, prefix...)
	argv = append(argv, target)

	proc, err := d.Launcher.Start(ctx, argv)
	if err != nil {
		d.logger().Warn("launch %s: %v", argv[0], err)
		return nil, errors.Diag(errors.KindLaunch, target, err)
	}
	return proc, nil
}

// relay emits every stdout line of proc as soon as it is read.
func relay(proc command.Process, emit Emitter) error {
	buf := util.GetLineBuf()
	defer util.PutLineBuf(buf)

	lines := command.Lines(proc.Stdout(), *buf)
	for lines.Scan() {
		emit(lines.Text())
	}
	return lines.Err()
}

func (d *Dispatcher) now() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

func (d *Dispatcher) logger() *util.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return util.NewLogger(0)
}
