// internal/shift/command.go
package shift

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tamzrod/river-shifttags/internal/river"
	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Commander submits one river command and returns once it has been sent.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) error
}

// CommandEncoder runs commands over zriver_control_v1 on behalf of one seat.
// Submission is fire-and-forget: the compositor's success or failure
// answer is logged, never acted on.
type CommandEncoder struct {
	control *river.Control
	seat    *wayland.Proxy
	log     *slog.Logger
}

func NewCommandEncoder(control *river.Control, seat *wayland.Proxy, log *slog.Logger) *CommandEncoder {
	if log == nil {
		log = slog.Default()
	}
	return &CommandEncoder{control: control, seat: seat, log: log}
}

// Run sends name and args as one command, then round-trips so the
// command is known to have reached the compositor.
func (e *CommandEncoder) Run(ctx context.Context, name string, args ...string) error {
	if err := e.control.AddArgument(name); err != nil {
		return err
	}
	for _, arg := range args {
		if err := e.control.AddArgument(arg); err != nil {
			return err
		}
	}

	_, err := e.control.RunCommand(e.seat, func(ev river.CommandEvent) {
		if ev.Failed {
			e.log.Debug("command failed", "command", name, "args", args, "message", ev.Output)
			return
		}
		e.log.Debug("command done", "command", name, "args", args)
	})
	if err != nil {
		return err
	}

	if err := e.control.Client().Roundtrip(ctx); err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	return nil
}
