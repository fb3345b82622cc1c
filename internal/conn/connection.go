// Package conn is the transport under the client: one TCP connection with a
// buffered writer for pipelined sends and a blocking RESP reader.
//
// A Connection is single-owner. Replies come back in the order commands were
// written, and nothing here correlates them, so a Connection must not be
// shared between goroutines.
package conn

import (
	"bufio"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/resp"
)

// ErrTimeout is returned by Receive when not a single byte of the next reply
// arrived in time. The reply is still owed and the stream is intact, so a
// later Receive reads it.
var ErrTimeout = errors.New("no reply before read timeout")

// Options configure Connect.
type Options struct {
	Host        string
	Port        string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
	// ReadTimeout bounds each Receive during the handshake. Zero blocks.
	ReadTimeout time.Duration
}

// Connection is a RESP connection to a server.
type Connection struct {
	Host       string
	Port       string
	ServerInfo map[string]string

	nc     net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	buf    []byte
}

// New wraps an established net.Conn. No handshake is performed.
func New(nc net.Conn) *Connection {
	c := &Connection{
		nc:     nc,
		reader: bufio.NewReader(nc),
		writer: bufio.NewWriter(nc),
	}
	if host, port, err := net.SplitHostPort(nc.RemoteAddr().String()); err == nil {
		c.Host, c.Port = host, port
	}
	return c
}

// Connect dials the server, authenticates when a password is set, selects
// the database and loads INFO into ServerInfo.
func Connect(opts Options) (*Connection, error) {
	address := net.JoinHostPort(opts.Host, opts.Port)
	nc, err := net.DialTimeout("tcp", address, opts.DialTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", address)
	}

	c := New(nc)
	c.Host, c.Port = opts.Host, opts.Port

	if opts.Password != "" {
		auth := command.Argv("AUTH", opts.Password)
		if opts.Username != "" {
			auth = command.Argv("AUTH", opts.Username, opts.Password)
		}
		if err := c.expectOK(auth, opts.ReadTimeout); err != nil {
			c.Close()
			return nil, errors.Wrap(err, "authentication failed")
		}
	}

	if opts.DB != 0 {
		if err := c.expectOK(command.Argv("SELECT", strconv.Itoa(opts.DB)), opts.ReadTimeout); err != nil {
			c.Close()
			return nil, errors.Wrapf(err, "select db %d", opts.DB)
		}
	}

	// Restricted ACLs may refuse INFO; the connection is still usable.
	if err := c.loadServerInfo(opts.ReadTimeout); err != nil {
		c.ServerInfo = map[string]string{"error": err.Error()}
	}

	return c, nil
}

// Write appends cmd to the send buffer. Nothing reaches the server until
// Flush.
func (c *Connection) Write(cmd *command.Command) error {
	c.buf = cmd.AppendTo(c.buf[:0])
	if _, err := c.writer.Write(c.buf); err != nil {
		return errors.Wrapf(err, "write %s", cmd.Name)
	}
	return nil
}

// Flush sends everything written so far.
func (c *Connection) Flush() error {
	return errors.Wrap(c.writer.Flush(), "flush")
}

// Send writes cmd and flushes it.
func (c *Connection) Send(cmd *command.Command) error {
	if err := c.Write(cmd); err != nil {
		return err
	}
	return c.Flush()
}

// Receive reads the next reply. A positive timeout bounds the read; zero
// blocks until a reply arrives or the connection fails.
//
// Running out of time before the reply starts yields ErrTimeout. Any other
// error, a timeout in the middle of a reply included, leaves the stream at
// an unknown position.
func (c *Connection) Receive(timeout time.Duration) (resp.Value, error) {
	if timeout > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, errors.Wrap(err, "set read deadline")
		}
		defer c.nc.SetReadDeadline(time.Time{})
	}

	if _, err := c.reader.Peek(1); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, errors.WithMessagef(ErrTimeout, "after %s", timeout)
		}
		return nil, errors.Wrap(err, "read reply")
	}

	v, err := resp.Read(c.reader)
	if err != nil {
		return nil, errors.Wrap(err, "read reply")
	}
	return v, nil
}

// Close terminates the connection.
func (c *Connection) Close() error {
	if c.nc != nil {
		return c.nc.Close()
	}
	return nil
}

// roundTrip sends cmd and reads its reply, turning an error reply into a Go
// error.
func (c *Connection) roundTrip(cmd *command.Command, timeout time.Duration) (resp.Value, error) {
	if err := c.Send(cmd); err != nil {
		return nil, err
	}
	v, err := c.Receive(timeout)
	if err != nil {
		return nil, err
	}
	if e, ok := v.(resp.Error); ok {
		return v, errors.Errorf("%s: %s", cmd.Name, e.Value)
	}
	return v, nil
}

func (c *Connection) expectOK(cmd *command.Command, timeout time.Duration) error {
	v, err := c.roundTrip(cmd, timeout)
	if err != nil {
		return err
	}
	if s, ok := v.(resp.Status); !ok || s.Value != "OK" {
		return errors.Errorf("unexpected %s reply: %s %q", cmd.Name, v.Kind(), v.Text())
	}
	return nil
}
