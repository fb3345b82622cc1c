package main

import (
	"context"
	"fmt"
	"iter"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/client"
	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/output"
	"github.com/cosmez/redistx-go/internal/reply"
	"github.com/cosmez/redistx-go/internal/resp"
	"github.com/cosmez/redistx-go/internal/serializer"
	"github.com/cosmez/redistx-go/internal/tx"
)

// pageSize is how many values SAFEKEYS and VIEW print before asking to go on.
const pageSize = 100

// handle runs one parsed line and reports whether the session should end.
func (s *session) handle(parsed *command.ParsedCommand) bool {
	if s.queue != nil && s.handleQueued(parsed) {
		return false
	}

	switch parsed.Name {
	case "EXIT", "QUIT":
		return true
	case "CLEAR":
		fmt.Fprint(s.out, "\033[2J\033[H")
	case "HELP":
		s.handleHelp(parsed)
	case "CONNECT":
		s.handleConnect(parsed)
	case "SAFEKEYS":
		s.handleSafeKeys(parsed)
	case "VIEW":
		s.handleView(parsed)
	case "EXPORT":
		s.handleExport(parsed)
	case "SUBSCRIBE", "PSUBSCRIBE", "SSUBSCRIBE":
		s.handleSubscribe(parsed)
	case "MULTI":
		s.queue = tx.NewQueue(s.client, tx.WithLogger(s.log))
		s.refreshPrompt()
		output.Print(s.out, resp.Status{Value: "OK"}, s.printOpts())
	case "EXEC", "DISCARD":
		red.Fprintf(s.out, "(error) ERR %s without MULTI\n", parsed.Name)
	case "WATCHINCR":
		s.handleWatchIncr(parsed)
	case "METRICS":
		metrics.WritePrometheus(s.out, false)
	default:
		s.handleStandardCommand(parsed)
	}
	return false
}

// handleQueued deals with a line typed between MULTI and EXEC. Server
// commands are queued locally and only reach the server at EXEC. It returns
// false for commands that run as usual inside a transaction.
func (s *session) handleQueued(parsed *command.ParsedCommand) bool {
	switch parsed.Name {
	case "EXEC":
		s.handleExec()
	case "DISCARD":
		output.Print(s.out, s.queue.Discard().Wire(), s.printOpts())
		s.queue = nil
		s.refreshPrompt()
	case "MULTI":
		red.Fprintln(s.out, "(error) ERR MULTI calls can not be nested")
	case "WATCH":
		red.Fprintln(s.out, "(error) ERR WATCH inside MULTI is not allowed")
	default:
		attrs := s.reg.Attrs(parsed.Name)
		if attrs.Has(command.NoQueue) {
			red.Fprintf(s.out, "(error) %s is not allowed inside MULTI\n", parsed.Name)
			return true
		}
		if attrs.Has(command.Local) {
			return false
		}
		if !s.confirmDangerous(parsed.Name) {
			return true
		}
		s.queue.AppendArgv(parsed.Command.Name, parsed.Command.Args...)
		output.Print(s.out, resp.Status{Value: "QUEUED"}, s.printOpts())
	}
	return true
}

func (s *session) handleExec() {
	q := s.queue
	s.queue = nil
	s.refreshPrompt()

	r, err := q.Exec()
	if err != nil {
		s.printErr(err)
		return
	}
	output.Print(s.out, r.Wire(), s.printOpts())
	if r.IsNil() {
		yellow.Fprintln(s.out, "Transaction aborted: a watched key was modified.")
	}
}

func (s *session) handleHelp(parsed *command.ParsedCommand) {
	if len(parsed.Args) == 0 {
		yellow.Fprintln(s.out, "Usage: HELP <command>")
		for _, doc := range command.AppCommands {
			cyan.Fprintf(s.out, "  %-10s", doc.Command)
			fmt.Fprintf(s.out, " %s\n", doc.Summary)
		}
		return
	}

	name := strings.ToUpper(strings.Join(parsed.Args, " "))
	doc := s.reg.Get(name)
	if doc == nil {
		doc = s.reg.Get(strings.ToUpper(parsed.Args[0]))
	}
	if doc == nil {
		red.Fprintf(s.out, "Unknown command: %s\n", name)
		return
	}
	cyan.Fprintf(s.out, "%s %s\n", doc.Command, doc.Arguments)
	fmt.Fprintln(s.out, doc.Summary)
	if doc.Since != "" {
		blue.Fprintf(s.out, "Since: %s\n", doc.Since)
	}
	if doc.Group != "" {
		blue.Fprintf(s.out, "Group: %s\n", doc.Group)
	}
}

func (s *session) handleConnect(parsed *command.ParsedCommand) {
	if len(parsed.Args) < 2 {
		red.Fprintln(s.out, "Usage: CONNECT <host> <port> [user] [pass]")
		return
	}

	cfg := *s.cfg
	cfg.Host = parsed.Args[0]
	cfg.Port = parsed.Args[1]
	cfg.Username, cfg.Password = "", ""
	switch len(parsed.Args) {
	case 2:
	case 3:
		cfg.Password = parsed.Args[2]
	default:
		cfg.Username = parsed.Args[2]
		cfg.Password = parsed.Args[3]
	}
	if err := cfg.Validate(); err != nil {
		red.Fprintf(s.out, "Invalid address: %v\n", err)
		return
	}

	c, err := dial(&cfg, s.log)
	if err != nil {
		red.Fprintf(s.out, "%v\n", err)
		return
	}

	s.client.Close()
	s.client = c
	s.cfg = &cfg
	s.queue = nil

	s.mergeServerCommands()
	s.refreshPrompt()
	s.printConnectionInfo()
}

func (s *session) handleSafeKeys(parsed *command.ParsedCommand) {
	pattern := "*"
	if len(parsed.Args) > 0 {
		pattern = parsed.Args[0]
	}

	keys := mapSeq(s.client.Scan(pattern), func(k string) resp.Value { return resp.Bulk{Value: k} })
	if err := output.PrintSeq(s.out, s.in, keys, s.printOpts(), pageSize); err != nil {
		s.printErr(err)
	}
}

// keyView is what VIEW shows for a key: a single value, or a stream of
// values fetched page by page. Hint is passed on to the printer.
type keyView struct {
	typ    string
	single resp.Value
	seq    iter.Seq2[resp.Value, error]
	hint   string
}

func (s *session) view(key string) (keyView, error) {
	typ, err := s.client.Type(key)
	if err != nil {
		return keyView{}, err
	}
	v := keyView{typ: typ}

	switch typ {
	case "none":
	case "string":
		val, err := s.client.Get(key)
		if err != nil {
			return v, err
		}
		v.single = resp.Nil{}
		if val != nil {
			v.single = resp.Bulk{Value: *val}
		}
	case "list":
		items, err := s.client.LRange(key, 0, -1)
		if err != nil {
			return v, err
		}
		v.single = resp.Strings(items...)
	case "set":
		v.seq = mapSeq(s.client.SScan(key, "*"), func(m string) resp.Value { return resp.Bulk{Value: m} })
	case "hash":
		v.hint = "hash"
		v.seq = mapSeq(s.client.HScan(key, "*"), func(kv reply.KV[string, string]) resp.Value {
			return resp.Strings(kv.Key, kv.Val)
		})
	case "zset":
		v.hint = "hash"
		v.seq = mapSeq(s.client.ZScan(key, "*"), func(z client.Z) resp.Value {
			return resp.Strings(z.Member, strconv.FormatFloat(z.Score, 'g', -1, 64))
		})
	case "stream":
		r, err := s.client.CommandArgv("XRANGE", key, "-", "+")
		if err != nil {
			return v, err
		}
		v.single = r.Wire()
	default:
		return v, fmt.Errorf("cannot view a key of type %s", typ)
	}
	return v, nil
}

func (s *session) handleView(parsed *command.ParsedCommand) {
	if len(parsed.Args) == 0 {
		red.Fprintln(s.out, "Usage: VIEW <key>")
		return
	}

	v, err := s.view(parsed.Args[0])
	if err != nil {
		s.printErr(err)
		return
	}
	if v.typ == "none" {
		yellow.Fprintln(s.out, "Key not found")
		return
	}

	opts := s.printOpts()
	if !s.applyCodec(parsed, &opts) {
		return
	}
	if v.single != nil {
		output.Print(s.out, v.single, opts)
		return
	}
	opts.Hint = v.hint
	if err := output.PrintSeq(s.out, s.in, v.seq, opts, pageSize); err != nil {
		s.printErr(err)
	}
}

func (s *session) handleExport(parsed *command.ParsedCommand) {
	if len(parsed.Args) < 2 {
		red.Fprintln(s.out, "Usage: EXPORT <filename> <command> [args...]")
		return
	}
	filename := parsed.Args[0]
	sub := command.Argv(strings.ToUpper(parsed.Args[1]), parsed.Args[2:]...)

	if sub.Name == "VIEW" {
		if len(sub.Args) == 0 {
			red.Fprintln(s.out, "Usage: EXPORT <filename> VIEW <key>")
			return
		}
		v, err := s.view(sub.Args[0])
		if err != nil {
			s.printErr(err)
			return
		}
		if v.typ == "none" {
			yellow.Fprintln(s.out, "Key not found")
			return
		}
		s.export(filename, v.single, v.seq, v.hint)
		return
	}

	r, err := s.client.Do(sub)
	if err != nil {
		s.printErr(err)
		return
	}
	s.export(filename, r.Wire(), nil, "")
}

func (s *session) export(filename string, single resp.Value, seq iter.Seq2[resp.Value, error], hint string) {
	if err := output.Export(filename, single, seq, hint); err != nil {
		red.Fprintf(s.out, "Export failed: %v\n", err)
		return
	}
	green.Fprintf(s.out, "Exported to %s\n", filename)
}

// handleSubscribe prints pushed messages until interrupted. A subscribed
// connection accepts no ordinary commands, so the session reconnects
// afterwards.
func (s *session) handleSubscribe(parsed *command.ParsedCommand) {
	if err := s.client.Conn().Send(parsed.Command); err != nil {
		s.printErr(err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	yellow.Fprintln(s.out, "Subscribed. Press Ctrl+C to stop.")
	for msg, err := range s.client.Conn().Subscribe(ctx) {
		if err != nil {
			s.printErr(err)
			break
		}
		if parsed.Pipe != "" {
			if err := output.Pipe(s.out, msg, parsed.Pipe); err != nil {
				s.printErr(err)
			}
			continue
		}
		output.Print(s.out, msg, s.printOpts())
	}

	c, err := dial(s.cfg, s.log)
	if err != nil {
		red.Fprintf(s.out, "%v\n", err)
		return
	}
	s.client.Close()
	s.client = c
}

// handleWatchIncr increments an integer key with GET then SET under WATCH,
// retrying when another client changes the key in between.
func (s *session) handleWatchIncr(parsed *command.ParsedCommand) {
	if len(parsed.Args) == 0 {
		red.Fprintln(s.out, "Usage: WATCHINCR <key> [increment] [retries]")
		return
	}
	key := parsed.Args[0]

	by := int64(1)
	if len(parsed.Args) > 1 {
		n, err := strconv.ParseInt(parsed.Args[1], 10, 64)
		if err != nil {
			red.Fprintf(s.out, "Invalid increment %q\n", parsed.Args[1])
			return
		}
		by = n
	}
	retries := s.cfg.WatchRetries
	if len(parsed.Args) > 2 {
		n, err := strconv.ParseUint(parsed.Args[2], 10, 0)
		if err != nil {
			red.Fprintf(s.out, "Invalid retry count %q\n", parsed.Args[2])
			return
		}
		retries = uint(n)
	}

	var next int64
	var reason string
	res, err := tx.Watch(s.client, []string{key}, retries, func(q *tx.Queue) (tx.Result, error) {
		cur, err := s.client.Get(key)
		if err != nil {
			return tx.Result{}, err
		}
		var n int64
		if cur != nil {
			if n, err = strconv.ParseInt(*cur, 10, 64); err != nil {
				reason = "value is not an integer"
				return q.Rollback(), nil
			}
		}
		if (by > 0 && n > math.MaxInt64-by) || (by < 0 && n < math.MinInt64-by) {
			reason = "increment would overflow"
			return q.Rollback(), nil
		}
		next = n + by
		q.AppendArgv("SET", key, strconv.FormatInt(next, 10))
		return q.Commit()
	}, tx.WithLogger(s.log))
	if err != nil {
		s.printErr(err)
		return
	}

	switch res.State {
	case tx.Committed:
		output.Print(s.out, resp.Integer{Value: next}, s.printOpts())
	case tx.OptedOut:
		red.Fprintf(s.out, "(error) %s\n", reason)
	default:
		s.printErr(res.Err())
	}
}

// confirmDangerous asks before a dangerous command runs or is queued. It
// reports whether to go ahead.
func (s *session) confirmDangerous(name string) bool {
	if !s.reg.IsDangerous(name) {
		return true
	}
	yellow.Fprintf(s.out, "The command %s is considered dangerous to execute, execute anyway? (Y/N) ", name)
	if name == "KEYS" {
		cyan.Fprint(s.out, "Hint: You can execute SAFEKEYS or SCAN instead. ")
	}
	if !output.Confirm(s.in) {
		yellow.Fprintln(s.out, "Aborted.")
		return false
	}
	return true
}

func (s *session) handleStandardCommand(parsed *command.ParsedCommand) {
	if !s.confirmDangerous(parsed.Name) {
		return
	}

	opts := s.printOpts()
	if !s.applyCodec(parsed, &opts) {
		return
	}

	var r reply.Reply
	var err error
	if s.reg.IsBlocking(parsed.Name) {
		r, err = s.client.DoTimeout(parsed.Command, 0)
	} else {
		r, err = s.client.Do(parsed.Command)
	}
	if err != nil {
		s.log.Debug("command failed", zap.String("cmd", parsed.Command.String()), zap.Error(err))
		s.printErr(err)
		return
	}

	if parsed.Pipe != "" {
		if err := output.Pipe(s.out, r.Wire(), parsed.Pipe); err != nil {
			red.Fprintf(s.out, "Pipe error: %v\n", err)
		}
		return
	}
	output.Print(s.out, r.Wire(), opts)
}

// applyCodec sets the codec named by the line's #: modifier on opts. It
// reports false, after printing why, when the codec does not exist.
func (s *session) applyCodec(parsed *command.ParsedCommand, opts *output.Options) bool {
	if parsed.Modifier == "" {
		return true
	}
	codec, err := serializer.Get(parsed.Modifier)
	if err != nil {
		red.Fprintf(s.out, "Serializer error: %v\n", err)
		return false
	}
	opts.Codec = codec
	return true
}

func mapSeq[T any](seq iter.Seq2[T, error], fn func(T) resp.Value) iter.Seq2[resp.Value, error] {
	return func(yield func(resp.Value, error) bool) {
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(fn(v), nil) {
				return
			}
		}
	}
}
