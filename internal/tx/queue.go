// Package tx implements client-side transactions: a Queue that buffers
// commands and submits them as one MULTI/EXEC batch, and Watch, an
// optimistic retry loop around WATCH.
package tx

import (
	"bytes"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
)

var (
	execTotal    = metrics.NewCounter("redistx_tx_exec_total")
	discardTotal = metrics.NewCounter("redistx_tx_discard_total")
)

// Conn is the connection a transaction runs on. Append buffers a command
// without sending it, Flush sends everything buffered, and Receive reads
// the reply to the oldest command still awaiting one. Do sends a single
// command and returns its reply.
type Conn interface {
	Append(cmd *command.Command) error
	Flush() error
	Receive() (reply.Reply, error)
	Do(cmd *command.Command) (reply.Reply, error)
}

type options struct {
	logger *zap.Logger
}

// Option configures a Queue or a Watch loop.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type builder func() (*command.Command, error)

// Queue buffers commands for a single MULTI/EXEC submission. Nothing is sent
// until Exec. A Queue is not safe for concurrent use.
type Queue struct {
	conn    Conn
	pending []builder
	log     *zap.Logger
}

// NewQueue returns an empty queue on c.
func NewQueue(c Conn, opts ...Option) *Queue {
	o := buildOptions(opts)
	return &Queue{conn: c, log: o.logger}
}

// Append queues a typed command. The arguments are copied now and encoded at
// Exec, so later changes to the caller's variables do not affect it.
func (q *Queue) Append(name string, args ...any) {
	copied := make([]any, len(args))
	for i, arg := range args {
		if b, ok := arg.([]byte); ok {
			arg = bytes.Clone(b)
		}
		copied[i] = arg
	}
	q.pending = append(q.pending, func() (*command.Command, error) {
		return command.Typed(name, copied...)
	})
}

// AppendArgv queues a command whose arguments are sent verbatim.
func (q *Queue) AppendArgv(name string, argv ...string) {
	cmd := command.Argv(name, argv...)
	q.pending = append(q.pending, func() (*command.Command, error) {
		return cmd, nil
	})
}

// Len returns the number of queued commands.
func (q *Queue) Len() int { return len(q.pending) }

// Exec submits MULTI, every queued command and EXEC back to back, then reads
// the replies in the same order. MULTI must be acknowledged with OK and each
// queued command with QUEUED, otherwise Exec fails with reply_is_error
// without reading further. The returned reply is the EXEC reply: an array of
// results, or Nil when a watched key changed.
//
// The queue is empty afterwards whatever the outcome.
func (q *Queue) Exec() (reply.Reply, error) {
	pending := q.pending
	q.pending = nil

	cmds := make([]*command.Command, 0, len(pending)+2)
	cmds = append(cmds, command.Argv("MULTI"))
	for _, build := range pending {
		cmd, err := build()
		if err != nil {
			return reply.Reply{}, err
		}
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, command.Argv("EXEC"))

	for _, cmd := range cmds {
		if err := q.conn.Append(cmd); err != nil {
			return reply.Reply{}, err
		}
	}
	if err := q.conn.Flush(); err != nil {
		return reply.Reply{}, err
	}
	execTotal.Inc()
	q.log.Debug("transaction submitted", zap.Int("commands", len(pending)))

	r, err := q.conn.Receive()
	if err != nil {
		return reply.Reply{}, err
	}
	if ok, err := r.IsOK(); err != nil || !ok {
		return r, ackError(r, "OK", err)
	}

	for range pending {
		r, err := q.conn.Receive()
		if err != nil {
			return reply.Reply{}, err
		}
		if queued, err := r.IsQueued(); err != nil || !queued {
			return r, ackError(r, "QUEUED", err)
		}
	}

	r, err = q.conn.Receive()
	if err != nil {
		return reply.Reply{}, err
	}
	if r.IsError() {
		return r, r.Err()
	}
	return r, nil
}

// ackError reports a missing acknowledgement as reply_is_error.
func ackError(r reply.Reply, want string, cause error) error {
	if rediserr.KindOf(cause) == rediserr.ReplyIsError {
		return cause
	}
	return rediserr.Newf(rediserr.ReplyIsError, r.Cmd(), "expected %s, got %s", want, r)
}

// Discard empties the queue without any wire I/O and returns a locally made
// OK reply for DISCARD.
func (q *Queue) Discard() reply.Reply {
	q.pending = nil
	discardTotal.Inc()
	return reply.OK("DISCARD")
}

// Commit runs Exec and tags the outcome: Committed for an array reply,
// Conflicted for Nil.
func (q *Queue) Commit() (Result, error) {
	r, err := q.Exec()
	if err != nil {
		return Result{}, err
	}
	if r.IsNil() {
		return Result{State: Conflicted, Reply: r}, nil
	}
	return Result{State: Committed, Reply: r}, nil
}

// Rollback runs Discard and tags the outcome as OptedOut.
func (q *Queue) Rollback() Result {
	return Result{State: OptedOut, Reply: q.Discard()}
}
