package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"pinger/internal/dispatch"
	"pinger/util"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    consoleCommand
		wantErr bool
	}{
		{"", consoleCommand{kind: cmdNone}, false},
		{"   ", consoleCommand{kind: cmdNone}, false},
		{"ping example.com", consoleCommand{kind: cmdRun, op: dispatch.Reachability, target: "example.com"}, false},
		{"  PING   10.0.0.1 ", consoleCommand{kind: cmdRun, op: dispatch.Reachability, target: "10.0.0.1"}, false},
		{"traceroute 8.8.8.8", consoleCommand{kind: cmdRun, op: dispatch.RouteTrace, target: "8.8.8.8"}, false},
		{"tracert 8.8.8.8", consoleCommand{kind: cmdRun, op: dispatch.RouteTrace, target: "8.8.8.8"}, false},
		{"nslookup example.org", consoleCommand{kind: cmdRun, op: dispatch.NameResolve, target: "example.org"}, false},
		{"ping", consoleCommand{kind: cmdRun, op: dispatch.Reachability}, false},
		{"clear", consoleCommand{kind: cmdClear}, false},
		{"help", consoleCommand{kind: cmdHelp}, false},
		{"?", consoleCommand{kind: cmdHelp}, false},
		{"quit", consoleCommand{kind: cmdQuit}, false},
		{"exit", consoleCommand{kind: cmdQuit}, false},
		{"whois example.com", consoleCommand{}, true},
		{"ping a b", consoleCommand{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func runConsole(t *testing.T, d *scriptedDispatcher, input string) string {
	t.Helper()
	var out bytes.Buffer
	m := &ConsoleMode{
		Dispatcher: d,
		In:         strings.NewReader(input),
		Out:        &out,
		Logger:     util.NewLogger(0),
	}

	errc := make(chan error, 1)
	go func() { errc <- m.Run(context.Background()) }()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("console did not exit")
	}
	return out.String()
}

func TestConsoleMode_RunsCommands(t *testing.T) {
	d := &scriptedDispatcher{lines: map[dispatch.Operation][]string{
		dispatch.NameResolve: {"Name: example.com", "Address: 192.0.2.7"},
	}}

	out := runConsole(t, d, "nslookup example.com\nquit\n")

	want := "Name: example.com\nAddress: 192.0.2.7\n\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestConsoleMode_UnknownCommand(t *testing.T) {
	out := runConsole(t, &scriptedDispatcher{}, "dig example.com\n")
	if !strings.Contains(out, `unknown command "dig"`) {
		t.Errorf("output = %q", out)
	}
}

func TestConsoleMode_MissingTarget(t *testing.T) {
	d := &scriptedDispatcher{}
	out := runConsole(t, d, "traceroute\n")

	if out != dispatch.MsgEmptyTarget+"\n\n" {
		t.Errorf("output = %q", out)
	}
	if len(d.calls()) != 0 {
		t.Error("dispatcher should not run without a target")
	}
}

// TestConsoleMode_WaitsAtEOF verifies runs started before end of input
// finish before Run returns.
func TestConsoleMode_WaitsAtEOF(t *testing.T) {
	d := &scriptedDispatcher{lines: map[dispatch.Operation][]string{
		dispatch.Reachability: {"Request timed out."},
	}}

	out := runConsole(t, d, "ping a\nping b\nhelp\n")

	if got := strings.Count(out, "Request timed out."); got != 2 {
		t.Errorf("timed out lines = %d, want 2\n%s", got, out)
	}
	if !strings.Contains(out, "commands:") {
		t.Error("help text missing")
	}
	calls := d.calls()
	if len(calls) != 2 {
		t.Errorf("dispatch calls = %q", calls)
	}
}

func TestConsoleMode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := newBlockingReader()
	defer pw()

	m := &ConsoleMode{Dispatcher: &scriptedDispatcher{}, In: pr, Out: &bytes.Buffer{}, Logger: util.NewLogger(0)}
	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()

	cancel()
	select {
	case <-errc:
	case <-time.After(5 * time.Second):
		t.Fatal("console did not stop on cancel")
	}
}

// blockingReader never returns data until released.
type blockingReader struct{ release chan struct{} }

func newBlockingReader() (*blockingReader, func()) {
	r := &blockingReader{release: make(chan struct{})}
	return r, func() { close(r.release) }
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, context.Canceled
}
