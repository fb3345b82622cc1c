package command

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cosmez/redistx-go/internal/rediserr"
)

// Mode says how a Command's arguments were produced.
type Mode int

const (
	// ModeTyped arguments were classified by Go type and formatted to text.
	ModeTyped Mode = iota
	// ModeArgv arguments were taken verbatim as opaque byte strings.
	ModeArgv
)

// Command is an encoded request: a name plus ordered arguments, ready to be
// written to the wire.
type Command struct {
	Name string
	Args []string
	Mode Mode
	text string
}

// String returns the human-readable form of the command, used in errors and
// logs. Arguments are not escaped.
func (c *Command) String() string { return c.text }

// Bytes returns the RESP encoding of the command.
func (c *Command) Bytes() []byte {
	return c.AppendTo(make([]byte, 0, c.encodedLen()))
}

// AppendTo appends the RESP encoding of the command to buf. Every token is
// sent as a length-prefixed bulk string.
func (c *Command) AppendTo(buf []byte) []byte {
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(c.Args)+1), 10)
	buf = append(buf, '\r', '\n')
	buf = appendBulk(buf, c.Name)
	for _, arg := range c.Args {
		buf = appendBulk(buf, arg)
	}
	return buf
}

func appendBulk(buf []byte, s string) []byte {
	buf = append(buf, '$')
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, '\r', '\n')
	buf = append(buf, s...)
	return append(buf, '\r', '\n')
}

func (c *Command) encodedLen() int {
	n := 16 + len(c.Name)
	for _, arg := range c.Args {
		n += 16 + len(arg)
	}
	return n
}

// Argv builds a command whose arguments are sent exactly as given. Use it for
// anything that may carry keys or values: spaces, CR/LF and binary data are
// all safe.
func Argv(name string, argv ...string) *Command {
	args := make([]string, len(argv))
	copy(args, argv)
	return &Command{
		Name: name,
		Args: args,
		Mode: ModeArgv,
		text: joinText(name, args),
	}
}

// Typed builds a command from scalar arguments classified by type:
//
//   - integers, bools and named integer types (flag enums) become decimal text
//   - floats become fixed six-decimal text
//   - strings, named string types and []byte are sent as text
//
// A name containing spaces is split into separate tokens, so
// Typed("CONFIG GET", "maxmemory") sends three tokens. Text arguments must
// not contain whitespace; such values belong in Argv.
func Typed(name string, args ...any) (*Command, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, rediserr.Newf(rediserr.CommandError, "", "empty command name")
	}

	out := make([]string, 0, len(tokens)-1+len(args))
	out = append(out, tokens[1:]...)
	for i, arg := range args {
		s, err := FormatArg(arg)
		if err != nil {
			return nil, rediserr.Newf(rediserr.CommandError, bestEffortText(name, args),
				"argument %d: %v", i+1, err)
		}
		if strings.ContainsAny(s, " \t\r\n") {
			return nil, rediserr.Newf(rediserr.CommandError, bestEffortText(name, args),
				"argument %d contains whitespace, use Argv for arbitrary text", i+1)
		}
		out = append(out, s)
	}

	return &Command{
		Name: tokens[0],
		Args: out,
		Mode: ModeTyped,
		text: joinText(tokens[0], out),
	}, nil
}

// MustTyped is Typed for literal arguments known to be valid.
func MustTyped(name string, args ...any) *Command {
	cmd, err := Typed(name, args...)
	if err != nil {
		panic(err)
	}
	return cmd
}

// FormatArg formats a scalar the way Typed does.
func FormatArg(arg any) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case float64:
		return formatFloat(v), nil
	case float32:
		return formatFloat(float64(v)), nil
	}

	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return "", fmt.Errorf("unsigned value %d overflows int64", u)
		}
		return strconv.FormatInt(int64(u), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float()), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", arg)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func joinText(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, arg := range args {
		sb.WriteByte(' ')
		sb.WriteString(arg)
	}
	return sb.String()
}

// bestEffortText renders a command that failed to encode, for diagnostics.
func bestEffortText(name string, args []any) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, arg := range args {
		sb.WriteByte(' ')
		if s, err := FormatArg(arg); err == nil {
			sb.WriteString(s)
		} else {
			fmt.Fprintf(&sb, "%v", arg)
		}
	}
	return sb.String()
}
