package tx

import (
	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/rediserr"
)

var (
	conflictsTotal = metrics.NewCounter("redistx_watch_conflicts_total")
	abortsTotal    = metrics.NewCounter("redistx_watch_aborts_total")
)

// AttemptFunc reads current values and either commits a transaction built
// on q (q.Commit) or opts out (q.Rollback or Unwatch).
type AttemptFunc func(q *Queue) (Result, error)

// Watch runs attempt under WATCH keys until it commits, opts out, or
// conflicts more than retries times. The first attempt is not a retry, so at
// most retries+1 attempts are made.
//
// Running out of retries is not an error: Watch returns an Aborted result
// holding the final Nil EXEC reply. Callers check Result.Succeeded, or
// Result.Err for an error value.
func Watch(c Conn, keys []string, retries uint, attempt AttemptFunc, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	watch := command.Argv("WATCH", keys...)
	if len(keys) == 0 {
		return Result{}, rediserr.Newf(rediserr.CommandError, watch.String(), "WATCH needs at least one key")
	}

	remaining := retries
	for {
		r, err := c.Do(watch)
		if err != nil {
			return Result{}, err
		}
		if ok, err := r.IsOK(); err != nil || !ok {
			return Result{}, rediserr.Newf(rediserr.CommandError, watch.String(), "WATCH not acknowledged: %s", r)
		}

		res, err := attempt(NewQueue(c, opts...))
		if err != nil {
			disarm(c, o.logger)
			return res, err
		}

		switch res.State {
		case OptedOut:
			if ok, err := res.Reply.IsOK(); err != nil || !ok {
				return res, rediserr.Newf(rediserr.CommandError, res.Reply.Cmd(), "opt-out not acknowledged: %s", res.Reply)
			}
			if res.Reply.Cmd() == "DISCARD" {
				// DISCARD never reached the server, so the watch is still armed.
				if _, err := c.Do(command.Argv("UNWATCH")); err != nil {
					return res, err
				}
			}
			return res, nil

		case Committed, Conflicted:
			if !res.Reply.IsNil() {
				return Result{State: Committed, Reply: res.Reply}, nil
			}
			conflictsTotal.Inc()
			if remaining == 0 {
				abortsTotal.Inc()
				o.logger.Warn("watch retries exhausted",
					zap.Strings("keys", keys), zap.Uint("retries", retries))
				return Result{State: Aborted, Reply: res.Reply}, nil
			}
			remaining--
			o.logger.Debug("watched key changed, retrying",
				zap.Strings("keys", keys), zap.Uint("remaining", remaining))

		default:
			disarm(c, o.logger)
			return res, rediserr.Newf(rediserr.CommandError, res.Reply.Cmd(),
				"attempt returned %s, want committed, conflicted or opted out", res.State)
		}
	}
}

// disarm clears the watch after a failed attempt so later commands on c are
// not tied to it. The attempt's error is what the caller sees.
func disarm(c Conn, log *zap.Logger) {
	if _, err := c.Do(command.Argv("UNWATCH")); err != nil {
		log.Debug("unwatch after failed attempt", zap.Error(err))
	}
}

// Unwatch sends UNWATCH and returns it as an OptedOut result. Attempt
// functions use it to leave Watch without queuing anything.
func Unwatch(c Conn) (Result, error) {
	r, err := c.Do(command.Argv("UNWATCH"))
	if err != nil {
		return Result{}, err
	}
	return Result{State: OptedOut, Reply: r}, nil
}
