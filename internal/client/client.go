// Package client is a synchronous, single-owner client: it encodes commands,
// writes them on a conn.Connection and decodes the replies.
//
// Every command written is remembered until its reply has been read. Do
// reads every reply still outstanding and returns the last one, so a caller
// that abandoned a pipelined batch half way (a transaction failing on its
// MULTI acknowledgement, say) cannot shift later replies onto the wrong
// commands.
package client

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/conn"
	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
	"github.com/cosmez/redistx-go/internal/resp"
)

var (
	commandsTotal      = metrics.NewCounter("redistx_commands_total")
	commandErrorsTotal = metrics.NewCounter("redistx_command_errors_total")
)

// DefaultScanCount is the COUNT hint sent with scan commands.
const DefaultScanCount = 100

// Client is not safe for concurrent use.
type Client struct {
	conn      *conn.Connection
	timeout   time.Duration
	scanCount int
	log       *zap.Logger

	pending []string
	// broken is the transport failure that left the stream at an unknown
	// position. Once set, every call fails without I/O.
	broken error
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-command debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout bounds every reply read. Zero blocks.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithScanCount sets the COUNT hint for the scan family.
func WithScanCount(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.scanCount = n
		}
	}
}

// New wraps an established connection.
func New(cn *conn.Connection, opts ...Option) *Client {
	c := &Client{
		conn:      cn,
		scanCount: DefaultScanCount,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects with conn.Connect and wraps the result.
func Dial(o conn.Options, opts ...Option) (*Client, error) {
	cn, err := conn.Connect(o)
	if err != nil {
		return nil, err
	}
	return New(cn, opts...), nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() *conn.Connection { return c.conn }

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// Pending returns how many written commands still await a reply.
func (c *Client) Pending() int { return len(c.pending) }

// Append buffers cmd for a later Flush.
func (c *Client) Append(cmd *command.Command) error {
	if c.broken != nil {
		return c.fail(cmd.String(), errors.Wrap(c.broken, "connection unusable after earlier failure"))
	}
	if err := c.conn.Write(cmd); err != nil {
		c.breakConn(err)
		return c.fail(cmd.String(), err)
	}
	c.pending = append(c.pending, cmd.String())
	commandsTotal.Inc()
	return nil
}

// Flush sends every buffered command.
func (c *Client) Flush() error {
	if c.broken != nil {
		return c.fail(c.lastPending(), errors.Wrap(c.broken, "connection unusable after earlier failure"))
	}
	if err := c.conn.Flush(); err != nil {
		cmd := c.lastPending()
		c.breakConn(err)
		return c.fail(cmd, err)
	}
	return nil
}

// Receive reads the reply to the oldest outstanding command. Error replies
// are returned as replies, not as errors; decoding them reports
// reply_is_error.
//
// When the timeout runs out before the reply starts, the command stays
// outstanding and its late reply is drained by the next Do. Any other
// transport failure closes the connection for good.
func (c *Client) Receive() (reply.Reply, error) {
	if len(c.pending) == 0 {
		return reply.Reply{}, rediserr.Newf(rediserr.CommandError, "", "no reply pending")
	}
	cmd := c.pending[0]

	v, err := c.conn.Receive(c.timeout)
	if err != nil {
		if !errors.Is(err, conn.ErrTimeout) {
			c.breakConn(err)
		}
		return reply.Reply{}, c.fail(cmd, err)
	}
	c.pending = c.pending[1:]
	if e, ok := v.(resp.Error); ok {
		commandErrorsTotal.Inc()
		c.log.Debug("error reply", zap.String("cmd", cmd), zap.String("error", e.Value))
	}
	return reply.New(v, cmd), nil
}

// Do sends cmd and returns its reply, first discarding replies to any
// commands still outstanding.
func (c *Client) Do(cmd *command.Command) (reply.Reply, error) {
	if err := c.Append(cmd); err != nil {
		return reply.Reply{}, err
	}
	if err := c.Flush(); err != nil {
		return reply.Reply{}, err
	}
	for len(c.pending) > 1 {
		stale, err := c.Receive()
		if err != nil {
			return reply.Reply{}, err
		}
		c.log.Debug("drained reply", zap.String("cmd", stale.Cmd()))
	}
	c.log.Debug("round trip", zap.String("cmd", cmd.String()))
	return c.Receive()
}

// DoTimeout is Do with a reply timeout for this call only. Zero blocks, for
// commands such as BLPOP that wait on the server.
func (c *Client) DoTimeout(cmd *command.Command, d time.Duration) (reply.Reply, error) {
	prev := c.timeout
	c.timeout = d
	defer func() { c.timeout = prev }()
	return c.Do(cmd)
}

// Command sends a typed command. See command.Typed for how arguments are
// formatted.
func (c *Client) Command(name string, args ...any) (reply.Reply, error) {
	cmd, err := command.Typed(name, args...)
	if err != nil {
		return reply.Reply{}, err
	}
	return c.Do(cmd)
}

// CommandArgv sends a command with verbatim arguments.
func (c *Client) CommandArgv(name string, argv ...string) (reply.Reply, error) {
	return c.Do(command.Argv(name, argv...))
}

// breakConn gives up on a stream whose position is unknown.
func (c *Client) breakConn(err error) {
	c.broken = err
	c.pending = nil
	c.conn.Close()
}

func (c *Client) fail(cmd string, err error) error {
	commandErrorsTotal.Inc()
	c.log.Debug("transport failure", zap.String("cmd", cmd), zap.Error(err))
	return rediserr.Wrap(err, rediserr.CommandError, cmd)
}

func (c *Client) lastPending() string {
	if len(c.pending) == 0 {
		return ""
	}
	return c.pending[len(c.pending)-1]
}

// call runs cmd and decodes the reply with d.
func call[T any](c *Client, d reply.Decoder[T], cmd *command.Command) (T, error) {
	r, err := c.Do(cmd)
	return reply.Decode(d, r, err)
}

func argv[T any](c *Client, d reply.Decoder[T], name string, args ...string) (T, error) {
	return call(c, d, command.Argv(name, args...))
}

func typed[T any](c *Client, d reply.Decoder[T], name string, args ...any) (T, error) {
	cmd, err := command.Typed(name, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return call(c, d, cmd)
}
