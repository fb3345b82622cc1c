package reply

import (
	"strconv"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/rediserr"
)

// Value is a scalar that keeps its wire text and converts on demand. Scan
// cursors, scores and INCR results are all read through it.
type Value struct {
	text string
	num  bool
}

// ValueOf builds a Value from an integer, float, bool or text argument,
// formatted the same way a typed command argument would be.
func ValueOf(v any) (Value, error) {
	s, err := command.FormatArg(v)
	if err != nil {
		return Value{}, rediserr.Newf(rediserr.TestFailed, "", "%v", err)
	}
	switch v.(type) {
	case string, []byte:
		return Value{text: s}, nil
	}
	return Value{text: s, num: true}, nil
}

// String returns the wire text.
func (v Value) String() string { return v.text }

// IsNumeric reports whether the value came from an Integer reply or a
// numeric argument.
func (v Value) IsNumeric() bool { return v.num }

// Int parses the value as a base 10 integer.
func (v Value) Int() (int64, error) {
	n, err := strconv.ParseInt(v.text, 10, 64)
	if err != nil {
		return 0, rediserr.Newf(rediserr.ReplyDataIncorrect, "", "not an integer: %q", v.text)
	}
	return n, nil
}

// Uint parses the value as an unsigned integer. Scan cursors use the full
// unsigned 64-bit range.
func (v Value) Uint() (uint64, error) {
	n, err := strconv.ParseUint(v.text, 10, 64)
	if err != nil {
		return 0, rediserr.Newf(rediserr.ReplyDataIncorrect, "", "not an unsigned integer: %q", v.text)
	}
	return n, nil
}

// Float parses the value as a float64.
func (v Value) Float() (float64, error) {
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, rediserr.Newf(rediserr.ReplyDataIncorrect, "", "not a float: %q", v.text)
	}
	return f, nil
}
