// Package rediserr defines the error kinds shared by the command encoder,
// the reply decoder and the transaction layer.
package rediserr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	ReplyIsNull
	ReplyTypeIncorrect
	ReplyDataIncorrect
	ReplyIsError
	TestFailed
	CommandError
	ExceededRetryTimes
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	ReplyIsNull:        "reply_is_null",
	ReplyTypeIncorrect: "reply_type_incorrect",
	ReplyDataIncorrect: "reply_data_incorrect",
	ReplyIsError:       "reply_is_error",
	TestFailed:         "test_failed",
	CommandError:       "command_error",
	ExceededRetryTimes: "exceeded_retry_times",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the error type returned by every layer of the client core.
// Cmd holds the diagnostic text of the command the failure belongs to.
type Error struct {
	Kind    Kind
	Message string
	Cmd     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Cmd != "" {
		return fmt.Sprintf("%s (cmd: %s)", msg, e.Cmd)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. This lets callers
// compare against the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrReplyIsNull        = &Error{Kind: ReplyIsNull}
	ErrReplyTypeIncorrect = &Error{Kind: ReplyTypeIncorrect}
	ErrReplyDataIncorrect = &Error{Kind: ReplyDataIncorrect}
	ErrReplyIsError       = &Error{Kind: ReplyIsError}
	ErrTestFailed         = &Error{Kind: TestFailed}
	ErrCommandError       = &Error{Kind: CommandError}
	ErrExceededRetryTimes = &Error{Kind: ExceededRetryTimes}
)

// New returns an error of the given kind whose message is the kind name.
func New(kind Kind, cmd string) *Error {
	return &Error{Kind: kind, Message: kind.String(), Cmd: cmd}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, cmd, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cmd: cmd}
}

// Wrap attaches a kind and command text to an underlying error.
func Wrap(err error, kind Kind, cmd string) *Error {
	return &Error{Kind: kind, Message: kind.String(), Cmd: cmd, Err: err}
}

// Test returns nil when ok holds and an error of the given kind otherwise.
func Test(ok bool, kind Kind, cmd string) error {
	if ok {
		return nil
	}
	return New(kind, cmd)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
