// internal/shift/session_test.go
package shift

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/tamzrod/river-shifttags/internal/tags"
	"github.com/tamzrod/river-shifttags/internal/wayland"
	"github.com/tamzrod/river-shifttags/internal/wayland/wltest"
)

// ---- helpers ----

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connect(t *testing.T, comp *wltest.Compositor) *wayland.Client {
	t.Helper()
	comp.Start(t)

	client, err := wayland.Connect(comp.Config(), quietLogger())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return client
}

func runSession(t *testing.T, comp *wltest.Compositor, opts Options) (string, error) {
	t.Helper()

	client := connect(t, comp)

	var out bytes.Buffer
	opts.Stdout = &out
	opts.Logger = quietLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runErr := Run(ctx, client, opts)
	_ = client.Close()

	if err := comp.Wait(); err != nil {
		t.Fatalf("compositor: %v", err)
	}
	return out.String(), runErr
}

// ---- tests ----

func TestSession_FocusMode(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
		FocusedTags:    []uint32{0b0010},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	if out != "4\n" {
		t.Fatalf("stdout: got=%q want=%q", out, "4\n")
	}

	want := [][]string{{"set-focused-tags", "4"}}
	if got := comp.Commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got=%v want=%v", got, want)
	}
}

func TestSession_WindowMode(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
		FocusedTags:    []uint32{0b0010},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Window, Direction: tags.Right})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	if out != "" {
		t.Fatalf("window mode must not print, got %q", out)
	}

	want := [][]string{
		{"set-view-tags", "4"},
		{"set-focused-tags", "4"},
	}
	if got := comp.Commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got=%v want=%v", got, want)
	}
}

func TestSession_SecondFocusedTagsEventIgnored(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
		FocusedTags:    []uint32{0b0001, 0b0100},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Left})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	if out != "8\n" {
		t.Fatalf("stdout: got=%q want exactly one line %q", out, "8\n")
	}

	want := [][]string{{"set-focused-tags", "8"}}
	if got := comp.Commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got=%v want=%v", got, want)
	}
}

func TestSession_NewFocusedOutputReplacesSubscription(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 2,
		FocusedTags:    []uint32{0b0010},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Window, Direction: tags.Left})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if out != "" {
		t.Fatalf("window mode must not print, got %q", out)
	}

	if n := comp.OutputSubscriptions(); n != 2 {
		t.Fatalf("expected 2 output subscriptions, got %d", n)
	}
	if n := len(comp.Commands()); n != 2 {
		t.Fatalf("expected exactly one rotation (2 commands), got %d commands", n)
	}

	// one released on replacement, one on exit
	var outputs int
	for _, iface := range comp.Destroyed() {
		if iface == "zriver_output_status_v1" {
			outputs++
		}
	}
	if outputs != 2 {
		t.Fatalf("expected 2 destroyed output status objects, got %d (%v)", outputs, comp.Destroyed())
	}
}

func TestSession_ReleasesObjectsOnExit(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
		FocusedTags:    []uint32{0b0010},
	}

	if _, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right}); err != nil {
		t.Fatalf("Run() err=%v", err)
	}

	want := []string{
		"zriver_output_status_v1",
		"zriver_seat_status_v1",
		"zriver_status_manager_v1",
		"zriver_control_v1",
	}
	if got := comp.Destroyed(); !reflect.DeepEqual(got, want) {
		t.Fatalf("destroyed: got=%v want=%v", got, want)
	}
}

func TestSession_IgnoresOtherOutputStatusEvents(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:                     wltest.RiverGlobals(),
		FocusedOutputs:              1,
		FocusedTags:                 []uint32{1 << 31},
		SendExtraOutputStatusEvents: true,
	}

	out, err := runSession(t, comp, Options{TagCount: 32, Mode: tags.Focus, Direction: tags.Right})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if out != "1\n" {
		t.Fatalf("stdout: got=%q want=%q", out, "1\n")
	}
}

func TestSession_OldStatusManagerVersion(t *testing.T) {
	globals := wltest.RiverGlobals()
	for i := range globals {
		if globals[i].Interface == "zriver_status_manager_v1" {
			globals[i].Version = 1
		}
	}
	comp := &wltest.Compositor{
		Globals:        globals,
		FocusedOutputs: 1,
		FocusedTags:    []uint32{0b0100},
	}

	out, err := runSession(t, comp, Options{TagCount: 3, Mode: tags.Focus, Direction: tags.Right})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if out != "1\n" {
		t.Fatalf("stdout: got=%q want=%q", out, "1\n")
	}
}

func TestSession_MissingGlobals(t *testing.T) {
	var globals []wayland.Global
	for _, g := range wltest.RiverGlobals() {
		if g.Interface == "zriver_control_v1" {
			continue
		}
		globals = append(globals, g)
	}
	comp := &wltest.Compositor{
		Globals:        globals,
		FocusedOutputs: 1,
		FocusedTags:    []uint32{1},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right})

	var missing *MissingGlobalsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingGlobalsError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Interfaces, []string{"zriver_control_v1"}) {
		t.Fatalf("missing: got=%v", missing.Interfaces)
	}
	if out != "" {
		t.Fatalf("no output expected, got %q", out)
	}
	if n := len(comp.Commands()); n != 0 {
		t.Fatalf("no commands expected, got %d", n)
	}
}

func TestSession_BlocksUntilCancelledWithoutFocusedTags(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
	}
	client := connect(t, comp)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, client, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right, Logger: quietLogger()})
	_ = client.Close()
	_ = comp.Wait()

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if n := len(comp.Commands()); n != 0 {
		t.Fatalf("no commands expected, got %d", n)
	}
}

func TestSession_IgnoresOtherSeatStatusEvents(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:                   wltest.RiverGlobals(),
		FocusedOutputs:            1,
		FocusedTags:               []uint32{0b0001},
		SendExtraSeatStatusEvents: true,
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right})
	if err != nil {
		t.Fatalf("Run() err=%v", err)
	}
	if out != "2\n" {
		t.Fatalf("stdout: got=%q want=%q", out, "2\n")
	}

	// unfocused_output must not cost or replace the output subscription
	if n := comp.OutputSubscriptions(); n != 1 {
		t.Fatalf("expected 1 output subscription, got %d", n)
	}
	want := [][]string{{"set-focused-tags", "2"}}
	if got := comp.Commands(); !reflect.DeepEqual(got, want) {
		t.Fatalf("commands: got=%v want=%v", got, want)
	}
}

func TestSession_FocusedTagsAfterOwnCommandIgnored(t *testing.T) {
	tests := []struct {
		name    string
		mode    tags.Mode
		wantOut string
		want    [][]string
	}{
		{
			name:    "focus",
			mode:    tags.Focus,
			wantOut: "4\n",
			want:    [][]string{{"set-focused-tags", "4"}},
		},
		{
			name:    "window",
			mode:    tags.Window,
			wantOut: "",
			want: [][]string{
				{"set-view-tags", "4"},
				{"set-focused-tags", "4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := &wltest.Compositor{
				Globals:                       wltest.RiverGlobals(),
				FocusedOutputs:                1,
				FocusedTags:                   []uint32{0b0010},
				ResendFocusedTagsAfterCommand: true,
			}

			out, err := runSession(t, comp, Options{TagCount: 4, Mode: tt.mode, Direction: tags.Right})
			if err != nil {
				t.Fatalf("Run() err=%v", err)
			}
			if out != tt.wantOut {
				t.Fatalf("stdout: got=%q want=%q", out, tt.wantOut)
			}
			if got := comp.Commands(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("commands: got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestSession_UnknownModeRejected(t *testing.T) {
	comp := &wltest.Compositor{
		Globals:        wltest.RiverGlobals(),
		FocusedOutputs: 1,
		FocusedTags:    []uint32{1},
	}

	out, err := runSession(t, comp, Options{TagCount: 4, Mode: tags.Mode(7), Direction: tags.Right})
	if err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if out != "" {
		t.Fatalf("no output expected, got %q", out)
	}
	if n := len(comp.Commands()); n != 0 {
		t.Fatalf("no commands expected, got %d", n)
	}
}

// ---- execute with a recording commander ----

type fakeCommander struct {
	out   *bytes.Buffer
	calls []fakeCall
	err   error
}

type fakeCall struct {
	name string
	args []string
	// printed is what stdout held when the command was sent
	printed string
}

func (f *fakeCommander) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, fakeCall{name: name, args: args, printed: f.out.String()})
	return f.err
}

func TestSession_ExecutePrintsBeforeCommands(t *testing.T) {
	var out bytes.Buffer
	fc := &fakeCommander{out: &out}

	s := NewSession(nil, Options{TagCount: 4, Mode: tags.Focus, Direction: tags.Right, Stdout: &out, Logger: quietLogger()})
	s.commander = fc

	plan, _ := s.trigger.Fire(0b0010)
	if err := s.execute(context.Background(), plan); err != nil {
		t.Fatalf("execute err=%v", err)
	}

	want := []fakeCall{{name: "set-focused-tags", args: []string{"4"}, printed: "4\n"}}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls: got=%+v want=%+v", fc.calls, want)
	}
}

func TestSession_ExecuteStopsOnCommandError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("connection lost")
	fc := &fakeCommander{out: &out, err: boom}

	s := NewSession(nil, Options{TagCount: 4, Mode: tags.Window, Direction: tags.Right, Stdout: &out, Logger: quietLogger()})
	s.commander = fc

	plan, _ := s.trigger.Fire(0b0010)
	if err := s.execute(context.Background(), plan); !errors.Is(err, boom) {
		t.Fatalf("expected command error, got %v", err)
	}

	if len(fc.calls) != 1 || fc.calls[0].name != "set-view-tags" {
		t.Fatalf("expected only set-view-tags to be sent, got %+v", fc.calls)
	}
	if out.Len() != 0 {
		t.Fatalf("window mode must not print, got %q", out.String())
	}
}
