// internal/wayland/client.go
package wayland

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// wl_display opcodes.
const (
	displaySync        uint16 = 0
	displayGetRegistry uint16 = 1

	displayEventError    uint16 = 0
	displayEventDeleteID uint16 = 1
)

// wl_callback.done
const callbackEventDone uint16 = 0

// Handler receives the events of one object.
// Returning an error aborts the dispatching call.
type Handler interface {
	HandleEvent(opcode uint16, d *Decoder) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(opcode uint16, d *Decoder) error

func (f HandlerFunc) HandleEvent(opcode uint16, d *Decoder) error { return f(opcode, d) }

// ProtocolError is a fatal wl_display.error sent by the compositor.
type ProtocolError struct {
	Object  ObjectID
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland: protocol error on object %d (code %d): %s", e.Object, e.Code, e.Message)
}

// Proxy is the client side of one protocol object.
type Proxy struct {
	client *Client
	id     ObjectID
	iface  string
}

func (p *Proxy) ID() ObjectID      { return p.id }
func (p *Proxy) Client() *Client   { return p.client }

// Request sends a request from this object.
func (p *Proxy) Request(opcode uint16, e *Encoder) error {
	var body []byte
	if e != nil {
		body = e.Bytes()
	}
	return p.client.send(Message{Sender: p.id, Opcode: opcode, Body: body})
}

// Destroy sends the destructor request and stops delivering events to
// the object. The id stays reserved until the compositor confirms with
// wl_display.delete_id.
func (p *Proxy) Destroy(opcode uint16) error {
	p.client.SetHandler(p, nil)
	return p.Request(opcode, nil)
}

type object struct {
	proxy   *Proxy
	handler Handler
}

// Client owns a compositor connection and its object table.
// All dispatch happens on the goroutine calling Roundtrip or Dispatch.
type Client struct {
	conn *Conn
	log  *slog.Logger

	nextID  ObjectID
	objects map[ObjectID]*object

	err error
}

// Connect dials the compositor and returns a client.
func Connect(cfg Config, log *slog.Logger) (*Client, error) {
	conn, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, log), nil
}

// NewClient wraps an established connection.
func NewClient(conn *Conn, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		conn:    conn,
		log:     log,
		nextID:  DisplayID + 1,
		objects: make(map[ObjectID]*object),
	}
	display := &Proxy{client: c, id: DisplayID, iface: "wl_display"}
	c.objects[DisplayID] = &object{proxy: display, handler: HandlerFunc(c.handleDisplayEvent)}
	return c
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// NewProxy allocates a client-side object id for iface.
// The caller sends the request that creates it on the server.
func (c *Client) NewProxy(iface string, h Handler) *Proxy {
	p := &Proxy{client: c, id: c.nextID, iface: iface}
	c.nextID++
	c.objects[p.id] = &object{proxy: p, handler: h}
	return p
}

// SetHandler replaces the event handler of an existing proxy.
func (c *Client) SetHandler(p *Proxy, h Handler) {
	if o, ok := c.objects[p.id]; ok {
		o.handler = h
	}
}

// GetRegistry creates the registry object.
// Globals are announced to h during the next dispatch.
func (c *Client) GetRegistry(h func(Global)) (*Registry, error) {
	r := &Registry{onGlobal: h}
	r.Proxy = c.NewProxy("wl_registry", r)

	var e Encoder
	e.NewID(r.ID())
	if err := c.send(Message{Sender: DisplayID, Opcode: displayGetRegistry, Body: e.Bytes()}); err != nil {
		return nil, err
	}
	return r, nil
}

// Roundtrip sends wl_display.sync and dispatches events until the
// compositor answers it. Every request sent before it has been processed
// by the compositor when it returns.
func (c *Client) Roundtrip(ctx context.Context) error {
	done := false
	cb := c.NewProxy("wl_callback", HandlerFunc(func(opcode uint16, _ *Decoder) error {
		if opcode == callbackEventDone {
			done = true
		}
		return nil
	}))

	var e Encoder
	e.NewID(cb.ID())
	if err := c.send(Message{Sender: DisplayID, Opcode: displaySync, Body: e.Bytes()}); err != nil {
		return err
	}

	for !done {
		if err := c.Dispatch(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch blocks until one event arrives and runs its handler.
func (c *Client) Dispatch(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}

	msg, err := c.read(ctx)
	if err != nil {
		c.err = err
		return err
	}

	o, ok := c.objects[msg.Sender]
	if !ok || o.handler == nil {
		c.log.Debug("wayland: event for unknown object dropped", "object", msg.Sender, "opcode", msg.Opcode)
		return nil
	}

	c.log.Debug("wayland: event", "object", msg.Sender, "interface", o.proxy.iface, "opcode", msg.Opcode)

	if err := o.handler.HandleEvent(msg.Opcode, NewDecoder(msg.Body)); err != nil {
		c.err = err
		return err
	}
	return c.err
}

func (c *Client) read(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			_ = c.conn.SetReadDeadline(time.Unix(1, 0))
		})
		defer stop()
	}

	msg, err := c.conn.ReadMessage()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Message{}, ctxErr
		}
		return Message{}, fmt.Errorf("wayland: read: %w", err)
	}
	return msg, nil
}

func (c *Client) send(m Message) error {
	if c.err != nil {
		return c.err
	}
	if err := c.conn.WriteMessage(m); err != nil {
		c.err = err
		return err
	}
	return nil
}

func (c *Client) handleDisplayEvent(opcode uint16, d *Decoder) error {
	switch opcode {
	case displayEventError:
		perr := &ProtocolError{
			Object:  d.Object(),
			Code:    d.Uint(),
			Message: d.String(),
		}
		if err := d.Err(); err != nil {
			return err
		}
		return perr

	case displayEventDeleteID:
		id := ObjectID(d.Uint())
		if err := d.Err(); err != nil {
			return err
		}
		delete(c.objects, id)
		return nil
	}

	return nil
}

