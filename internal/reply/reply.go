// Package reply converts wire replies into Go values.
//
// Every conversion validates before it interprets: a Nil reply fails with
// reply_is_null unless the target is optional, and an Error reply always
// fails with reply_is_error carrying the server message. Only then is the
// variant checked against the requested shape.
package reply

import (
	"strconv"
	"strings"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/resp"
)

// Reply is a wire reply paired with the diagnostic text of the command that
// produced it. The zero Reply holds no value and behaves like Nil.
type Reply struct {
	v   resp.Value
	cmd string
}

// New wraps v as the reply to cmd.
func New(v resp.Value, cmd string) Reply {
	return Reply{v: v, cmd: cmd}
}

// OK fabricates an OK status reply for cmd without any wire I/O.
func OK(cmd string) Reply {
	return Reply{v: resp.Status{Value: "OK"}, cmd: cmd}
}

// Cmd returns the diagnostic text of the command this reply answers.
func (r Reply) Cmd() string { return r.cmd }

// Wire returns the underlying wire value. It is never nil.
func (r Reply) Wire() resp.Value {
	if r.v == nil {
		return resp.Nil{}
	}
	return r.v
}

// Kind returns the wire variant of the reply.
func (r Reply) Kind() resp.Kind { return r.Wire().Kind() }

// IsNil reports whether the reply is the Nil variant.
func (r Reply) IsNil() bool { return r.Kind() == resp.KindNil }

// IsError reports whether the server answered with an error.
func (r Reply) IsError() bool { return r.Kind() == resp.KindError }

// Err returns the universal precondition failure for this reply:
// reply_is_null for Nil, reply_is_error for a server error, nil otherwise.
func (r Reply) Err() error {
	switch v := r.Wire().(type) {
	case resp.Nil:
		return rediserr.New(rediserr.ReplyIsNull, r.cmd)
	case resp.Error:
		return rediserr.Newf(rediserr.ReplyIsError, r.cmd, "%s", v.Value)
	}
	return nil
}

func (r Reply) typeError(want string) error {
	return rediserr.Newf(rediserr.ReplyTypeIncorrect, r.cmd,
		"expected %s reply, got %s", want, r.Kind())
}

// IsOK reports whether the reply is an OK acknowledgement.
func (r Reply) IsOK() (bool, error) { return r.statusIs("OK") }

// IsQueued reports whether the reply is a QUEUED acknowledgement.
func (r Reply) IsQueued() (bool, error) { return r.statusIs("QUEUED") }

// statusIs only matches a status line. A bulk string holding "OK" is data
// stored by someone, not an acknowledgement.
func (r Reply) statusIs(want string) (bool, error) {
	if err := r.Err(); err != nil {
		return false, err
	}
	v, ok := r.v.(resp.Status)
	return ok && strings.EqualFold(v.Value, want), nil
}

// Int returns an Integer reply.
func (r Reply) Int() (int64, error) {
	if err := r.Err(); err != nil {
		return 0, err
	}
	v, ok := r.v.(resp.Integer)
	if !ok {
		return 0, r.typeError("integer")
	}
	return v.Value, nil
}

// Str returns the text of a bulk or status reply.
func (r Reply) Str() (string, error) {
	if err := r.Err(); err != nil {
		return "", err
	}
	switch v := r.v.(type) {
	case resp.Bulk:
		return v.Value, nil
	case resp.Status:
		return v.Value, nil
	}
	return "", r.typeError("string")
}

// Float parses a bulk, status or integer reply as a float64.
func (r Reply) Float() (float64, error) {
	if err := r.Err(); err != nil {
		return 0, err
	}
	switch v := r.v.(type) {
	case resp.Integer:
		return float64(v.Value), nil
	case resp.Bulk, resp.Status:
		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil {
			return 0, rediserr.Newf(rediserr.ReplyDataIncorrect, r.cmd,
				"not a float: %q", v.Text())
		}
		return f, nil
	}
	return 0, r.typeError("float")
}

// Val returns an Integer or bulk reply as a Value.
func (r Reply) Val() (Value, error) {
	if err := r.Err(); err != nil {
		return Value{}, err
	}
	switch v := r.v.(type) {
	case resp.Integer:
		return Value{text: v.Text(), num: true}, nil
	case resp.Bulk:
		return Value{text: v.Value}, nil
	}
	return Value{}, r.typeError("integer or string")
}

// Elements returns the elements of an Array reply. Each element carries the
// parent's command text and can be decoded on its own.
func (r Reply) Elements() ([]Reply, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	arr, ok := r.v.(resp.Array)
	if !ok {
		return nil, r.typeError("array")
	}
	out := make([]Reply, len(arr.Elems))
	for i, e := range arr.Elems {
		out[i] = Reply{v: e, cmd: r.cmd}
	}
	return out, nil
}

// Len returns the element count of an Array reply and 0 for anything else.
func (r Reply) Len() int {
	if arr, ok := r.v.(resp.Array); ok {
		return len(arr.Elems)
	}
	return 0
}

func (r Reply) String() string {
	switch v := r.Wire().(type) {
	case resp.Nil:
		return "(nil)"
	case resp.Error:
		return "(error) " + v.Value
	case resp.Integer:
		return "(integer) " + v.Text()
	case resp.Array:
		return "(array) " + strconv.Itoa(len(v.Elems)) + " elements"
	default:
		return strconv.Quote(v.Text())
	}
}
