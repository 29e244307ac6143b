// internal/wayland/conn.go
package wayland

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultDisplay is used when no display name is configured.
const DefaultDisplay = "wayland-0"

// Config is the socket discovery input, usually taken from the environment.
type Config struct {
	// Socket is an already connected file descriptor (WAYLAND_SOCKET).
	// It takes precedence over Display.
	Socket string
	// Display is a socket name relative to RuntimeDir, or an absolute path.
	Display    string
	RuntimeDir string
}

// SocketPath resolves the display socket path for cfg.
func (cfg Config) SocketPath() (string, error) {
	name := cfg.Display
	if name == "" {
		name = DefaultDisplay
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if cfg.RuntimeDir == "" {
		return "", errors.New("wayland: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(cfg.RuntimeDir, name), nil
}

// Conn frames messages over a unix stream socket.
// It is not safe for concurrent use.
type Conn struct {
	uc *net.UnixConn

	in  []byte
	rd  []byte
	oob []byte
}

// NewConn wraps an established unix socket.
func NewConn(uc *net.UnixConn) *Conn {
	return &Conn{
		uc:  uc,
		rd:  make([]byte, maxMessageSize),
		oob: make([]byte, unix.CmsgSpace(28*4)),
	}
}

// Dial opens the compositor socket described by cfg.
func Dial(cfg Config) (*Conn, error) {
	if cfg.Socket != "" {
		return dialFD(cfg.Socket)
	}

	path, err := cfg.SocketPath()
	if err != nil {
		return nil, err
	}

	uc, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("wayland: dial %s: %w", path, err)
	}
	return NewConn(uc), nil
}

func dialFD(s string) (*Conn, error) {
	fd, err := strconv.Atoi(s)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("wayland: invalid WAYLAND_SOCKET %q", s)
	}

	f := os.NewFile(uintptr(fd), "wayland-socket")
	defer f.Close()

	fc, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("wayland: WAYLAND_SOCKET: %w", err)
	}
	uc, ok := fc.(*net.UnixConn)
	if !ok {
		_ = fc.Close()
		return nil, fmt.Errorf("wayland: WAYLAND_SOCKET %d is not a unix socket", fd)
	}
	return NewConn(uc), nil
}

// Close closes the socket.
func (c *Conn) Close() error {
	if c == nil || c.uc == nil {
		return nil
	}
	return c.uc.Close()
}

// SetReadDeadline bounds the next blocking read.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.uc.SetReadDeadline(t)
}

// WriteMessage frames and sends one message.
func (c *Conn) WriteMessage(m Message) error {
	b, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	if err := writeAll(c.uc, b); err != nil {
		return fmt.Errorf("wayland: write: %w", err)
	}
	return nil
}

// ReadMessage blocks until one complete message is available.
func (c *Conn) ReadMessage() (Message, error) {
	for {
		if len(c.in) >= headerSize {
			sender, opcode, size := decodeHeader(c.in)
			if size < headerSize {
				return Message{}, fmt.Errorf("wayland: bad message size %d from object %d", size, sender)
			}
			if len(c.in) >= size {
				body := make([]byte, size-headerSize)
				copy(body, c.in[headerSize:size])
				c.in = c.in[size:]
				return Message{Sender: sender, Opcode: opcode, Body: body}, nil
			}
		}

		n, oobn, _, _, err := c.uc.ReadMsgUnix(c.rd, c.oob)
		if oobn > 0 {
			closeRights(c.oob[:oobn])
		}
		if n > 0 {
			c.in = append(c.in, c.rd[:n]...)
		}
		if err != nil {
			return Message{}, err
		}
		if n == 0 {
			return Message{}, io.EOF
		}
	}
}

// closeRights closes file descriptors passed as ancillary data.
// None of the interfaces this client binds send fds, so keeping them
// would only leak.
func closeRights(oob []byte) {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return
	}
	for i := range msgs {
		fds, err := unix.ParseUnixRights(&msgs[i])
		if err != nil {
			continue
		}
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
	}
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
