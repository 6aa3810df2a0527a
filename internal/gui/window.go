// Package gui is the desktop front-end: a target field, one button per
// diagnostic, a Clear button and a scrolling result area.  The fyne
// main goroutine is the interactive context for every run.
package gui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"pinger/internal/dispatch"
	"pinger/internal/metrics"
	"pinger/internal/task"
	"pinger/util"
)

// Options configures a Window.
type Options struct {
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Notify sends a desktop notification when a traceroute finishes.
	Notify bool

	// Exec defaults to fyne.DoAndWait.
	Exec task.Executor
}

// Window holds the widgets and the Session shared by every button.
type Window struct {
	app     fyne.App
	win     fyne.Window
	session *task.Session
	logger  *util.Logger
	notify  bool

	input  *widget.Entry
	output *widget.Label
	status *widget.Label
	scroll *container.Scroll

	pingButton   *widget.Button
	traceButton  *widget.Button
	lookupButton *widget.Button
	clearButton  *widget.Button

	transcript Transcript
}

// New builds the main window.  ctx bounds waits on child processes.
func New(ctx context.Context, a fyne.App, d task.Dispatcher, opts Options) *Window {
	logger := opts.Logger
	if logger == nil {
		logger = util.NewLogger(0)
	}
	exec := opts.Exec
	if exec == nil {
		exec = fyne.DoAndWait
	}

	w := &Window{
		app:    a,
		logger: logger.Named("gui"),
		notify: opts.Notify,
	}
	w.session = task.NewSession(ctx, d, exec, logger.Named("task"), opts.Metrics)

	w.input = widget.NewEntry()
	w.input.SetPlaceHolder("192.0.2.10 or example.com")
	w.input.OnSubmitted = func(string) {
		if !w.pingButton.Disabled() {
			w.start(dispatch.Reachability)
		}
	}

	w.output = widget.NewLabel("")
	w.output.TextStyle = fyne.TextStyle{Monospace: true}
	w.scroll = container.NewVScroll(w.output)
	w.status = widget.NewLabel("")
	w.status.Alignment = fyne.TextAlignCenter

	w.pingButton = widget.NewButton("Ping", func() { w.start(dispatch.Reachability) })
	w.traceButton = widget.NewButton("Traceroute", func() { w.start(dispatch.RouteTrace) })
	w.lookupButton = widget.NewButton("Nslookup", func() { w.start(dispatch.NameResolve) })
	w.clearButton = widget.NewButton("Clear Result", w.clear)

	w.win = a.NewWindow("Pinger App")
	w.win.SetContent(w.layout())
	w.win.Resize(fyne.NewSize(700, 500))
	w.win.CenterOnScreen()
	return w
}

func (w *Window) layout() fyne.CanvasObject {
	inputRow := container.NewBorder(nil, nil, widget.NewLabel("Enter IP Address:"), nil, w.input)
	buttons := container.NewHBox(w.pingButton, w.traceButton, w.lookupButton, w.clearButton)
	top := container.NewVBox(inputRow, container.NewCenter(buttons))
	return container.NewBorder(top, w.status, nil, nil, w.scroll)
}

// ShowAndRun shows the window and runs the fyne event loop.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// start is the button handler; it runs on the fyne main goroutine.
func (w *Window) start(op dispatch.Operation) *task.Task {
	target := strings.TrimSpace(w.input.Text)
	w.logger.Debug("%s %q requested", op, target)
	return w.session.Start(target, op, &sink{w: w, op: op, target: target})
}

func (w *Window) clear() {
	w.transcript.Clear()
	w.output.SetText("")
}

func (w *Window) appendLine(text string) {
	w.transcript.Append(text)
	w.output.SetText(w.transcript.String())
	w.scroll.ScrollToBottom()
}

func (w *Window) setButtonsEnabled(enabled bool) {
	for _, b := range []*widget.Button{w.pingButton, w.traceButton, w.lookupButton, w.clearButton} {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// sink adapts one run to the window.
type sink struct {
	w       *Window
	op      dispatch.Operation
	target  string
	started bool
}

func (s *sink) Line(text string) { s.w.appendLine(text) }

func (s *sink) SetControlsEnabled(enabled bool) {
	if !enabled {
		s.started = true
		s.w.status.SetText(fmt.Sprintf("Running %s %s", s.op, s.target))
	}
	s.w.setButtonsEnabled(enabled)
}

// Done separates finished runs with an empty line.  Rejected runs never
// started and get no separator.
func (s *sink) Done() {
	if !s.started {
		return
	}
	s.w.status.SetText("")
	s.w.appendLine("")
	if s.op == dispatch.RouteTrace && s.w.notify {
		s.w.app.SendNotification(fyne.NewNotification("Traceroute finished", s.target))
	}
}
