package tx

import (
	"fmt"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
)

// State is the outcome of one transaction attempt.
type State int

const (
	_ State = iota
	// Committed: EXEC ran and returned its results.
	Committed
	// Conflicted: EXEC returned Nil because a watched key changed.
	Conflicted
	// Aborted: every attempt conflicted and the retry budget is spent.
	Aborted
	// OptedOut: the attempt chose not to commit (DISCARD or UNWATCH).
	OptedOut
)

func (s State) String() string {
	switch s {
	case Committed:
		return "committed"
	case Conflicted:
		return "conflicted"
	case Aborted:
		return "aborted"
	case OptedOut:
		return "opted_out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is a tagged transaction outcome with the reply that produced it.
type Result struct {
	State State
	Reply reply.Reply
}

// Executed reports whether the result came from an EXEC.
func (r Result) Executed() bool {
	switch r.State {
	case Committed, Conflicted, Aborted:
		return true
	}
	return false
}

// Succeeded reports whether EXEC ran and returned results.
func (r Result) Succeeded() bool {
	return r.Executed() && !r.Reply.IsNil()
}

// Err returns exceeded_retry_times for an Aborted result and nil otherwise.
func (r Result) Err() error {
	if r.State == Aborted {
		return rediserr.New(rediserr.ExceededRetryTimes, r.Reply.Cmd())
	}
	return nil
}
