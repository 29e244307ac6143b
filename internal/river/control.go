// internal/river/control.go
package river

import (
	"fmt"

	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Control is a bound zriver_control_v1.
// river builds one command per run_command out of every argument added
// since the previous one; the first argument is the command name.
type Control struct {
	*wayland.Proxy
}

// NewControl wraps a proxy bound to ControlInterface.
func NewControl(p *wayland.Proxy) *Control {
	return &Control{Proxy: p}
}

// AddArgument appends one argument to the pending command.
func (c *Control) AddArgument(arg string) error {
	var e wayland.Encoder
	e.String(arg)
	if err := c.Request(controlAddArgument, &e); err != nil {
		return fmt.Errorf("river control: add_argument: %w", err)
	}
	return nil
}

// RunCommand submits the pending command on behalf of seat.
// The compositor reports the outcome on the returned callback, once.
func (c *Control) RunCommand(seat *wayland.Proxy, h func(CommandEvent)) (*wayland.Proxy, error) {
	cb := c.Client().NewProxy("zriver_command_callback_v1", commandHandler(h))

	var e wayland.Encoder
	e.Object(seat.ID())
	e.NewID(cb.ID())
	if err := c.Request(controlRunCommand, &e); err != nil {
		return nil, fmt.Errorf("river control: run_command: %w", err)
	}
	return cb, nil
}

// Destroy releases the control object.
func (c *Control) Destroy() error {
	return c.Proxy.Destroy(controlDestroy)
}

// CommandEvent is the outcome of one run_command.
type CommandEvent struct {
	Failed bool
	// Output holds the command output on success and the failure
	// message otherwise.
	Output string
}

func commandHandler(h func(CommandEvent)) wayland.Handler {
	return wayland.HandlerFunc(func(opcode uint16, d *wayland.Decoder) error {
		var ev CommandEvent
		switch opcode {
		case commandEventSuccess:
			ev.Output = d.String()
		case commandEventFailure:
			ev.Failed = true
			ev.Output = d.String()
		default:
			return nil
		}
		if err := d.Err(); err != nil {
			return fmt.Errorf("river command callback: %w", err)
		}
		if h != nil {
			h(ev)
		}
		return nil
	})
}
