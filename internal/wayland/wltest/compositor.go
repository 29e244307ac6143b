// internal/wayland/wltest/compositor.go
package wltest

import (
	"errors"
	"io"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"testing"

	"github.com/tamzrod/river-shifttags/internal/wayland"
)

// Compositor is a scripted river stand-in for tests.
// It speaks the real wire protocol over a unix socket and records what
// the client asks for.
type Compositor struct {
	// Globals advertised on wl_registry, in order.
	Globals []wayland.Global
	// FocusedOutputs is how many focused_output events each new seat
	// status object sends for the bound wl_output.
	FocusedOutputs int
	// FocusedTags are sent on every new output status object.
	FocusedTags []uint32
	// SendExtraOutputStatusEvents makes output status objects also send
	// view_tags, urgent_tags and layout_name before the focused tags.
	SendExtraOutputStatusEvents bool
	// SendExtraSeatStatusEvents makes seat status objects also send
	// focused_view, mode and unfocused_output before the focused outputs.
	SendExtraSeatStatusEvents bool
	// ResendFocusedTagsAfterCommand echoes the last argument of every
	// run_command as focused_tags on each live output status object,
	// the way river reports a tag change it just applied.
	ResendFocusedTagsAfterCommand bool

	Path string

	ln   *net.UnixListener
	done chan struct{}

	mu          sync.Mutex
	commands    [][]string
	destroyed   []string
	outputSubs  int
	connections int
	ifaces      map[wayland.ObjectID]string
	pending     []string
	serial      uint32
	err         error
}

// RiverGlobals is what a stock river session advertises for this client.
func RiverGlobals() []wayland.Global {
	return []wayland.Global{
		{Name: 1, Interface: "wl_compositor", Version: 4},
		{Name: 2, Interface: "wl_output", Version: 4},
		{Name: 3, Interface: "wl_seat", Version: 7},
		{Name: 4, Interface: "zriver_control_v1", Version: 1},
		{Name: 5, Interface: "zriver_status_manager_v1", Version: 4},
	}
}

// Start listens on a fresh socket under t.TempDir and serves one client.
func (c *Compositor) Start(t *testing.T) {
	t.Helper()

	c.Path = filepath.Join(t.TempDir(), "wayland-test")
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: c.Path, Net: "unix"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	c.ln = ln
	c.done = make(chan struct{})
	c.ifaces = map[wayland.ObjectID]string{wayland.DisplayID: "wl_display"}

	go c.serve()

	t.Cleanup(func() {
		_ = c.ln.Close()
	})
}

// Config returns the client config pointing at this compositor.
func (c *Compositor) Config() wayland.Config {
	return wayland.Config{Display: c.Path}
}

// Wait blocks until the client has disconnected and returns the first
// server-side failure, if any.
func (c *Compositor) Wait() error {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Commands returns the argument lists of every run_command received.
func (c *Compositor) Commands() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]string, len(c.commands))
	copy(out, c.commands)
	return out
}

// Destroyed returns the interfaces of objects the client destroyed, in order.
func (c *Compositor) Destroyed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.destroyed...)
}

// OutputSubscriptions counts get_river_output_status requests.
func (c *Compositor) OutputSubscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outputSubs
}

// Connections counts accepted clients.
func (c *Compositor) Connections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connections
}

func (c *Compositor) serve() {
	defer close(c.done)

	uc, err := c.ln.AcceptUnix()
	if err != nil {
		return
	}
	c.mu.Lock()
	c.connections++
	c.mu.Unlock()

	conn := wayland.NewConn(uc)
	defer conn.Close()

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if !disconnected(err) {
				c.fail(err)
			}
			return
		}
		if err := c.handle(conn, msg); err != nil {
			if !disconnected(err) {
				c.fail(err)
			}
			return
		}
	}
}

// disconnected reports whether err only means the client went away.
// A client closing with unread replies queued shows up as a reset.
func disconnected(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func (c *Compositor) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Compositor) iface(id wayland.ObjectID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ifaces[id]
}

func (c *Compositor) track(id wayland.ObjectID, iface string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ifaces[id] = iface
}

func (c *Compositor) handle(conn *wayland.Conn, msg wayland.Message) error {
	d := wayland.NewDecoder(msg.Body)

	switch c.iface(msg.Sender) {
	case "wl_display":
		return c.handleDisplay(conn, msg.Opcode, d)
	case "wl_registry":
		return c.handleRegistry(msg.Opcode, d)
	case "zriver_control_v1":
		return c.handleControl(conn, msg.Sender, msg.Opcode, d)
	case "zriver_status_manager_v1":
		return c.handleStatusManager(conn, msg.Sender, msg.Opcode, d)
	case "zriver_output_status_v1", "zriver_seat_status_v1":
		if msg.Opcode == 0 {
			c.destroy(conn, msg.Sender)
		}
		return nil
	}
	return nil
}

func (c *Compositor) handleDisplay(conn *wayland.Conn, opcode uint16, d *wayland.Decoder) error {
	switch opcode {
	case 0: // sync
		cb := d.NewID()
		if err := d.Err(); err != nil {
			return err
		}
		c.mu.Lock()
		c.serial++
		serial := c.serial
		c.mu.Unlock()

		var e wayland.Encoder
		e.Uint(serial)
		if err := conn.WriteMessage(wayland.Message{Sender: cb, Opcode: 0, Body: e.Bytes()}); err != nil {
			return err
		}
		return c.deleteID(conn, cb)

	case 1: // get_registry
		id := d.NewID()
		if err := d.Err(); err != nil {
			return err
		}
		c.track(id, "wl_registry")
		for _, g := range c.Globals {
			var e wayland.Encoder
			e.Uint(g.Name)
			e.String(g.Interface)
			e.Uint(g.Version)
			if err := conn.WriteMessage(wayland.Message{Sender: id, Opcode: 0, Body: e.Bytes()}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compositor) handleRegistry(opcode uint16, d *wayland.Decoder) error {
	if opcode != 0 {
		return nil
	}
	name := d.Uint()
	iface, version, id := d.UntypedNewID()
	if err := d.Err(); err != nil {
		return err
	}

	for _, g := range c.Globals {
		if g.Name == name {
			if g.Interface != iface || version > g.Version {
				return errors.New("wltest: bind does not match advertised global " + iface)
			}
			c.track(id, iface)
			return nil
		}
	}
	return errors.New("wltest: bind of unknown global " + iface)
}

func (c *Compositor) handleControl(conn *wayland.Conn, self wayland.ObjectID, opcode uint16, d *wayland.Decoder) error {
	switch opcode {
	case 0: // destroy
		c.destroy(conn, self)

	case 1: // add_argument
		arg := d.String()
		if err := d.Err(); err != nil {
			return err
		}
		c.mu.Lock()
		c.pending = append(c.pending, arg)
		c.mu.Unlock()

	case 2: // run_command
		seat := d.Object()
		cb := d.NewID()
		if err := d.Err(); err != nil {
			return err
		}
		if c.iface(seat) != "wl_seat" {
			return errors.New("wltest: run_command without a bound seat")
		}

		c.mu.Lock()
		args := c.pending
		c.commands = append(c.commands, args)
		c.pending = nil
		c.mu.Unlock()

		if c.ResendFocusedTagsAfterCommand && len(args) > 0 {
			if err := c.resendFocusedTags(conn, args[len(args)-1]); err != nil {
				return err
			}
		}

		var e wayland.Encoder
		e.String("")
		if err := conn.WriteMessage(wayland.Message{Sender: cb, Opcode: 0, Body: e.Bytes()}); err != nil {
			return err
		}
		return c.deleteID(conn, cb)
	}
	return nil
}

func (c *Compositor) handleStatusManager(conn *wayland.Conn, self wayland.ObjectID, opcode uint16, d *wayland.Decoder) error {
	switch opcode {
	case 0: // destroy
		c.destroy(conn, self)

	case 1: // get_river_output_status
		id := d.NewID()
		output := d.Object()
		if err := d.Err(); err != nil {
			return err
		}
		if c.iface(output) != "wl_output" {
			return errors.New("wltest: output status for unknown output")
		}
		c.track(id, "zriver_output_status_v1")
		c.mu.Lock()
		c.outputSubs++
		c.mu.Unlock()

		if c.SendExtraOutputStatusEvents {
			if err := c.sendExtraOutputEvents(conn, id); err != nil {
				return err
			}
		}
		for _, tags := range c.FocusedTags {
			var e wayland.Encoder
			e.Uint(tags)
			if err := conn.WriteMessage(wayland.Message{Sender: id, Opcode: 0, Body: e.Bytes()}); err != nil {
				return err
			}
		}

	case 2: // get_river_seat_status
		id := d.NewID()
		seat := d.Object()
		if err := d.Err(); err != nil {
			return err
		}
		if c.iface(seat) != "wl_seat" {
			return errors.New("wltest: seat status for unknown seat")
		}
		c.track(id, "zriver_seat_status_v1")

		output, ok := c.boundOutput()
		if !ok {
			return errors.New("wltest: no bound output to focus")
		}
		if c.SendExtraSeatStatusEvents {
			if err := c.sendExtraSeatEvents(conn, id, output); err != nil {
				return err
			}
		}
		for i := 0; i < c.FocusedOutputs; i++ {
			var e wayland.Encoder
			e.Object(output)
			if err := conn.WriteMessage(wayland.Message{Sender: id, Opcode: 0, Body: e.Bytes()}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compositor) sendExtraOutputEvents(conn *wayland.Conn, id wayland.ObjectID) error {
	var view wayland.Encoder
	view.Array([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	var urgent wayland.Encoder
	urgent.Uint(8)
	var layout wayland.Encoder
	layout.String("rivertile")

	msgs := []wayland.Message{
		{Sender: id, Opcode: 1, Body: view.Bytes()},
		{Sender: id, Opcode: 2, Body: urgent.Bytes()},
		{Sender: id, Opcode: 3, Body: layout.Bytes()},
		{Sender: id, Opcode: 4},
	}
	for _, m := range msgs {
		if err := conn.WriteMessage(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compositor) sendExtraSeatEvents(conn *wayland.Conn, id, output wayland.ObjectID) error {
	var view wayland.Encoder
	view.String("kitty")
	var mode wayland.Encoder
	mode.String("normal")
	var unfocused wayland.Encoder
	unfocused.Object(output)

	msgs := []wayland.Message{
		{Sender: id, Opcode: 2, Body: view.Bytes()},
		{Sender: id, Opcode: 3, Body: mode.Bytes()},
		{Sender: id, Opcode: 1, Body: unfocused.Bytes()},
	}
	for _, m := range msgs {
		if err := conn.WriteMessage(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compositor) resendFocusedTags(conn *wayland.Conn, arg string) error {
	mask, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return nil
	}

	c.mu.Lock()
	var live []wayland.ObjectID
	for id, iface := range c.ifaces {
		if iface == "zriver_output_status_v1" {
			live = append(live, id)
		}
	}
	c.mu.Unlock()

	for _, id := range live {
		var e wayland.Encoder
		e.Uint(uint32(mask))
		if err := conn.WriteMessage(wayland.Message{Sender: id, Opcode: 0, Body: e.Bytes()}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compositor) boundOutput() (wayland.ObjectID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, iface := range c.ifaces {
		if iface == "wl_output" {
			return id, true
		}
	}
	return 0, false
}

func (c *Compositor) destroy(conn *wayland.Conn, id wayland.ObjectID) {
	c.mu.Lock()
	c.destroyed = append(c.destroyed, c.ifaces[id])
	delete(c.ifaces, id)
	c.mu.Unlock()
	_ = c.deleteID(conn, id)
}

func (c *Compositor) deleteID(conn *wayland.Conn, id wayland.ObjectID) error {
	var e wayland.Encoder
	e.Uint(uint32(id))
	return conn.WriteMessage(wayland.Message{Sender: wayland.DisplayID, Opcode: 1, Body: e.Bytes()})
}
