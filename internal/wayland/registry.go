// internal/wayland/registry.go
package wayland

import "fmt"

// wl_registry opcodes.
const (
	registryBind uint16 = 0

	registryEventGlobal       uint16 = 0
	registryEventGlobalRemove uint16 = 1
)

// Global is one capability advertised by the compositor.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Registry is the client side of wl_registry.
type Registry struct {
	*Proxy
	onGlobal func(Global)
}

// Bind creates a client object for g at the given version.
// version must not exceed g.Version.
func (r *Registry) Bind(g Global, version uint32, h Handler) (*Proxy, error) {
	if version == 0 || version > g.Version {
		return nil, fmt.Errorf("wayland: bind %s: version %d not offered (max %d)", g.Interface, version, g.Version)
	}

	p := r.client.NewProxy(g.Interface, h)

	var e Encoder
	e.Uint(g.Name)
	e.UntypedNewID(g.Interface, version, p.ID())
	if err := r.Request(registryBind, &e); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Registry) HandleEvent(opcode uint16, d *Decoder) error {
	switch opcode {
	case registryEventGlobal:
		g := Global{
			Name:      d.Uint(),
			Interface: d.String(),
			Version:   d.Uint(),
		}
		if err := d.Err(); err != nil {
			return fmt.Errorf("wayland: registry global: %w", err)
		}
		if r.onGlobal != nil {
			r.onGlobal(g)
		}

	case registryEventGlobalRemove:
		// Bound globals going away is handled by the objects themselves.
	}
	return nil
}
