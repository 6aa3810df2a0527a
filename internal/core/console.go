package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"pinger/internal/dispatch"
	"pinger/internal/metrics"
	"pinger/internal/task"
	"pinger/util"
)

const defaultPrompt = "pinger> "

const consoleHelp = `commands:
  ping <target>         probe reachability (4 probes)
  traceroute <target>   trace the route (one at a time)
  nslookup <target>     query name servers
  clear                 clear the screen
  help                  show this text
  quit                  wait for running diagnostics and exit`

// ConsoleMode reads commands from In and runs them against a shared
// Session, so several diagnostics may be in flight at once.  On a
// terminal the input line is edited in raw mode and output from
// running diagnostics is printed above the prompt.
type ConsoleMode struct {
	Dispatcher task.Dispatcher
	Logger     *util.Logger
	Metrics    *metrics.Collector
	Prompt     string

	// In/Out default to os.Stdin/os.Stdout when nil.
	In  io.Reader
	Out io.Writer
}

func (m *ConsoleMode) in() io.Reader {
	if m.In != nil {
		return m.In
	}
	return os.Stdin
}

func (m *ConsoleMode) out() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return os.Stdout
}

func (m *ConsoleMode) prompt() string {
	if m.Prompt != "" {
		return m.Prompt
	}
	return defaultPrompt
}

// lineReader returns the next input line, or io.EOF.
type lineReader func() (string, error)

// Run serves the console until quit, end of input or ctx is done.
// Diagnostics still running at quit or end of input are waited for.
func (m *ConsoleMode) Run(ctx context.Context) error {
	read, w, tty, restore, err := m.open()
	if err != nil {
		return err
	}
	defer restore()

	loop := task.NewLoop()
	c := &console{
		session: task.NewSession(ctx, m.Dispatcher, loop.Do, m.Logger, m.Metrics),
		loop:    loop,
		out:     &writerSink{w: w},
		w:       w,
		tty:     tty,
		logger:  m.Logger,
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			loop.Close()
		case <-stop:
		}
	}()

	go func() {
		defer loop.Close()
		c.serve(ctx, read)
	}()

	loop.Run()
	return c.out.Err()
}

// open selects raw terminal input when In is a TTY and line-by-line
// scanning otherwise.
func (m *ConsoleMode) open() (lineReader, io.Writer, bool, func(), error) {
	in, out := m.in(), m.out()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, false, nil, fmt.Errorf("console raw mode: %w", err)
		}
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, m.prompt())
		restore := func() {
			if err := term.Restore(fd, state); err != nil {
				m.Logger.Warn("restore terminal: %v", err)
			}
		}
		return t.ReadLine, t, true, restore, nil
	}

	sc := bufio.NewScanner(in)
	read := func() (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return read, out, false, func() {}, nil
}

type console struct {
	session *task.Session
	loop    *task.Loop
	out     *writerSink
	w       io.Writer
	tty     bool
	logger  *util.Logger

	running sync.WaitGroup
}

// serve reads and executes commands.  It runs off the loop goroutine
// and hands every action to the loop.
func (c *console) serve(ctx context.Context, read lineReader) {
	for {
		line, err := read()
		if err != nil {
			if err != io.EOF {
				c.logger.Error("read command: %v", err)
			}
			break
		}

		cmd, err := parseCommand(line)
		if err != nil {
			c.loop.Do(func() { c.out.Line(err.Error()) })
			continue
		}
		if cmd.kind == cmdQuit {
			break
		}
		c.loop.Do(func() { c.execute(cmd) })
	}

	waited := make(chan struct{})
	go func() {
		c.running.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
	}
}

// execute runs on the loop.
func (c *console) execute(cmd consoleCommand) {
	switch cmd.kind {
	case cmdHelp:
		c.out.Line(consoleHelp)
	case cmdClear:
		if c.tty {
			fmt.Fprint(c.w, "\x1b[H\x1b[2J")
		}
	case cmdRun:
		sink := &writerSink{w: c.w, blankAfterDone: true}
		t := c.session.Start(cmd.target, cmd.op, sink)
		c.running.Add(1)
		go func() {
			defer c.running.Done()
			t.Wait()
			if err := sink.Err(); err != nil {
				c.logger.Warn("%s %s: %v", cmd.op, cmd.target, err)
			}
		}()
	}
}

// ── Command parsing ──────────────────────────────────────────────────

type commandKind int

const (
	cmdNone commandKind = iota
	cmdRun
	cmdClear
	cmdHelp
	cmdQuit
)

type consoleCommand struct {
	kind   commandKind
	op     dispatch.Operation
	target string
}

// parseCommand parses one console line.  A diagnostic word without a
// target is accepted; the run itself reports the missing target.
func parseCommand(line string) (consoleCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return consoleCommand{kind: cmdNone}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "clear", "cls":
		return consoleCommand{kind: cmdClear}, nil
	case "help", "?":
		return consoleCommand{kind: cmdHelp}, nil
	case "quit", "exit":
		return consoleCommand{kind: cmdQuit}, nil
	}

	op, err := dispatch.ParseOperation(fields[0])
	if err != nil {
		return consoleCommand{}, fmt.Errorf("unknown command %q (type help)", fields[0])
	}
	if len(fields) > 2 {
		return consoleCommand{}, fmt.Errorf("%s takes a single target", op)
	}

	cmd := consoleCommand{kind: cmdRun, op: op}
	if len(fields) == 2 {
		cmd.target = fields[1]
	}
	return cmd, nil
}
