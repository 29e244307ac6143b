// internal/wayland/wire.go
package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire layout (native byte order):
//
//	0-3  sender object id
//	4-5  opcode
//	6-7  total message size, header included
//	8+   arguments, each padded to 4 bytes
const headerSize = 8

// maxMessageSize is the largest message libwayland will frame.
const maxMessageSize = 4096

var order = binary.NativeEndian

// ObjectID identifies a protocol object on one connection.
type ObjectID uint32

// DisplayID is the id of wl_display, fixed by the protocol.
const DisplayID ObjectID = 1

// Message is one framed request or event.
type Message struct {
	Sender ObjectID
	Opcode uint16
	Body   []byte
}

// Encoder appends request arguments.
type Encoder struct {
	buf []byte
}

func (e *Encoder) Uint(v uint32) {
	e.buf = order.AppendUint32(e.buf, v)
}

func (e *Encoder) Int(v int32) {
	e.buf = order.AppendUint32(e.buf, uint32(v))
}

func (e *Encoder) Object(id ObjectID) {
	e.Uint(uint32(id))
}

func (e *Encoder) NewID(id ObjectID) {
	e.Uint(uint32(id))
}

// UntypedNewID writes a new_id argument that has no interface in the
// protocol XML, as used by wl_registry.bind.
func (e *Encoder) UntypedNewID(iface string, version uint32, id ObjectID) {
	e.String(iface)
	e.Uint(version)
	e.NewID(id)
}

// String writes a length-prefixed, NUL-terminated, padded string.
func (e *Encoder) String(s string) {
	e.Uint(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	e.pad()
}

// Array writes a length-prefixed, padded byte array.
func (e *Encoder) Array(b []byte) {
	e.Uint(uint32(len(b)))
	e.buf = append(e.buf, b...)
	e.pad()
}

func (e *Encoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

// Bytes returns the encoded arguments.
func (e *Encoder) Bytes() []byte { return e.buf }

// EncodeMessage frames a message with its header.
func EncodeMessage(m Message) ([]byte, error) {
	size := headerSize + len(m.Body)
	if size > maxMessageSize {
		return nil, fmt.Errorf("wayland: message too large: object=%d opcode=%d size=%d", m.Sender, m.Opcode, size)
	}

	out := make([]byte, headerSize, size)
	order.PutUint32(out[0:4], uint32(m.Sender))
	order.PutUint32(out[4:8], uint32(size)<<16|uint32(m.Opcode))
	return append(out, m.Body...), nil
}

// decodeHeader returns sender, opcode and total size.
func decodeHeader(b []byte) (ObjectID, uint16, int) {
	sender := ObjectID(order.Uint32(b[0:4]))
	word := order.Uint32(b[4:8])
	return sender, uint16(word & 0xffff), int(word >> 16)
}

// ErrShortMessage is returned when a message body ends before its arguments do.
var ErrShortMessage = errors.New("wayland: message body shorter than arguments")

// Decoder reads arguments out of a message body.
// The first failure sticks; check Err after reading.
type Decoder struct {
	body []byte
	off  int
	err  error
}

func NewDecoder(body []byte) *Decoder {
	return &Decoder{body: body}
}

func (d *Decoder) Err() error { return d.err }

func (d *Decoder) Uint() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.body)-d.off < 4 {
		d.err = ErrShortMessage
		return 0
	}
	v := order.Uint32(d.body[d.off:])
	d.off += 4
	return v
}

func (d *Decoder) Int() int32 {
	return int32(d.Uint())
}

func (d *Decoder) Object() ObjectID {
	return ObjectID(d.Uint())
}

func (d *Decoder) NewID() ObjectID {
	return ObjectID(d.Uint())
}

// UntypedNewID reads the interface, version and id triple of wl_registry.bind.
func (d *Decoder) UntypedNewID() (string, uint32, ObjectID) {
	iface := d.String()
	version := d.Uint()
	id := d.NewID()
	return iface, version, id
}

// String reads a string argument. A null string decodes as "".
func (d *Decoder) String() string {
	b := d.Array()
	if len(b) == 0 {
		return ""
	}
	if b[len(b)-1] != 0 {
		if d.err == nil {
			d.err = errors.New("wayland: string argument not NUL-terminated")
		}
		return ""
	}
	return string(b[:len(b)-1])
}

// Array reads an array argument. The returned slice aliases the body.
func (d *Decoder) Array() []byte {
	n := int(d.Uint())
	if d.err != nil {
		return nil
	}
	padded := (n + 3) &^ 3
	if n < 0 || len(d.body)-d.off < padded {
		d.err = ErrShortMessage
		return nil
	}
	b := d.body[d.off : d.off+n]
	d.off += padded
	return b
}

// Uint32Array reads an array argument of 32-bit words.
func (d *Decoder) Uint32Array() []uint32 {
	b := d.Array()
	if len(b)%4 != 0 {
		if d.err == nil {
			d.err = errors.New("wayland: uint array length not a multiple of 4")
		}
		return nil
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = order.Uint32(b[4*i:])
	}
	return out
}
