// internal/shift/binder.go
package shift

import (
	"context"
	"fmt"
	"strings"

	"github.com/tamzrod/river-shifttags/internal/river"
	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Handles are the globals a session needs, bound and exclusively owned.
type Handles struct {
	Output        *wayland.Proxy
	Seat          *wayland.Proxy
	Control       *river.Control
	StatusManager *river.StatusManager
}

// requiredGlobals in bind order.
var requiredGlobals = []string{
	river.OutputInterface,
	river.SeatInterface,
	river.ControlInterface,
	river.StatusManagerInterface,
}

// MissingGlobalsError means the compositor does not implement the
// protocols this client needs. It is not retried.
type MissingGlobalsError struct {
	Interfaces []string
}

func (e *MissingGlobalsError) Error() string {
	return fmt.Sprintf("compositor does not advertise required globals: %s", strings.Join(e.Interfaces, ", "))
}

// BindGlobals enumerates the registry once and binds the first output,
// seat, river control and river status manager it announces.
func BindGlobals(ctx context.Context, c *wayland.Client) (*Handles, error) {
	found := make(map[string]wayland.Global, len(requiredGlobals))

	reg, err := c.GetRegistry(func(g wayland.Global) {
		for _, iface := range requiredGlobals {
			if g.Interface != iface {
				continue
			}
			if _, seen := found[iface]; !seen {
				found[iface] = g
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}

	if err := c.Roundtrip(ctx); err != nil {
		return nil, fmt.Errorf("registry roundtrip: %w", err)
	}

	var missing []string
	for _, iface := range requiredGlobals {
		if _, ok := found[iface]; !ok {
			missing = append(missing, iface)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingGlobalsError{Interfaces: missing}
	}

	// wl_output and wl_seat events are not used; version 1 keeps them quiet.
	output, err := reg.Bind(found[river.OutputInterface], 1, nil)
	if err != nil {
		return nil, err
	}
	seat, err := reg.Bind(found[river.SeatInterface], 1, nil)
	if err != nil {
		return nil, err
	}
	control, err := reg.Bind(found[river.ControlInterface], river.ControlVersion, nil)
	if err != nil {
		return nil, err
	}

	sm := found[river.StatusManagerInterface]
	manager, err := reg.Bind(sm, min(sm.Version, river.StatusManagerVersion), nil)
	if err != nil {
		return nil, err
	}

	return &Handles{
		Output:        output,
		Seat:          seat,
		Control:       river.NewControl(control),
		StatusManager: river.NewStatusManager(manager),
	}, nil
}
