// Package output renders replies for people: a colored redis-cli style
// printer, a paged printer for long scans, a shell pipe and a file export.
package output

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/resp"
	"github.com/cosmez/redistx-go/internal/serializer"
)

// Options configure Print.
type Options struct {
	Color bool
	// Codec, when set, decodes bulk and status text before printing. Values
	// that fail to decode are printed as stored.
	Codec serializer.Serializer
	// Hint changes how arrays are laid out: "hash" prints field=value lines.
	Hint    string
	Newline bool

	padding string
}

var (
	colorString  = color.New(color.FgHiBlue)
	colorInteger = color.New(color.FgHiGreen)
	colorError   = color.New(color.FgRed, color.Bold)
	colorNil     = color.New(color.FgHiBlack)
	colorPrompt  = color.New(color.FgHiYellow)
	colorIndex   = color.New(color.FgHiBlack)
)

func paint(w io.Writer, c *color.Color, on bool, s string) {
	if on {
		c.Fprint(w, s)
		return
	}
	fmt.Fprint(w, s)
}

func digitWidth(n int) int {
	w := 1
	for n >= 10 {
		w++
		n /= 10
	}
	return w
}

func (o Options) decode(s string) string {
	if o.Codec == nil {
		return s
	}
	if out, err := o.Codec.Deserialize([]byte(s)); err == nil {
		return string(out)
	}
	return s
}

// Print writes v the way redis-cli does: quoted bulk strings, "(integer) n",
// "(nil)", and numbered array elements with nested arrays indented.
func Print(w io.Writer, v resp.Value, opts Options) {
	if v == nil {
		v = resp.Nil{}
	}

	arr, isArray := v.(resp.Array)
	if !isArray {
		printScalar(w, v, opts)
		if opts.Newline {
			fmt.Fprintln(w)
		}
		return
	}

	if len(arr.Elems) == 0 {
		paint(w, colorNil, opts.Color, "(empty array)")
		if opts.Newline {
			fmt.Fprintln(w)
		}
		return
	}

	if opts.Hint == "hash" {
		printPairs(w, arr, opts)
		return
	}

	digits := digitWidth(len(arr.Elems))
	for i, elem := range arr.Elems {
		if i > 0 {
			fmt.Fprint(w, opts.padding)
		}
		paint(w, colorIndex, opts.Color, fmt.Sprintf("%*d) ", digits, i+1))

		child := opts
		child.padding = opts.padding + strings.Repeat(" ", digits+2)
		child.Newline = false
		child.Hint = ""
		Print(w, elem, child)

		// A non-empty nested array already ended its last line.
		if nested, ok := elem.(resp.Array); !ok || len(nested.Elems) == 0 {
			fmt.Fprintln(w)
		}
	}
}

func printPairs(w io.Writer, arr resp.Array, opts Options) {
	child := opts
	child.padding = opts.padding + "  "
	child.Newline = false
	child.Hint = ""
	for i := 0; i < len(arr.Elems); i += 2 {
		fmt.Fprintf(w, "%s#", opts.padding)
		Print(w, arr.Elems[i], child)
		if i+1 < len(arr.Elems) {
			fmt.Fprint(w, "=")
			Print(w, arr.Elems[i+1], child)
		}
		fmt.Fprintln(w)
	}
}

func printScalar(w io.Writer, v resp.Value, opts Options) {
	switch v := v.(type) {
	case resp.Nil:
		paint(w, colorNil, opts.Color, "(nil)")
	case resp.Status:
		paint(w, colorString, opts.Color, opts.decode(v.Value))
	case resp.Bulk:
		paint(w, colorString, opts.Color, `"`+opts.decode(v.Value)+`"`)
	case resp.Integer:
		paint(w, colorInteger, opts.Color, "(integer) "+v.Text())
	case resp.Error:
		paint(w, colorError, opts.Color, "(error) "+v.Value)
	}
}

// PrintError writes err, prefixed with its kind when it is a client error.
func PrintError(w io.Writer, err error, useColor bool) {
	msg := err.Error()
	if k := rediserr.KindOf(err); k != rediserr.KindUnknown {
		msg = fmt.Sprintf("[%s] %s", k, msg)
	}
	paint(w, colorError, useColor, msg)
	fmt.Fprintln(w)
}

// PrintSeq prints a numbered stream of values. Every pageSize values it asks
// on w whether to continue and reads the answer from in one byte at a time,
// so it never buffers input meant for the REPL. A pageSize of zero never
// asks. The first error from values is returned.
func PrintSeq(w io.Writer, in io.Reader, values iter.Seq2[resp.Value, error], opts Options, pageSize int) error {
	i := 0
	for v, err := range values {
		if err != nil {
			return err
		}
		i++
		if opts.Hint == "hash" {
			Print(w, v, opts)
		} else {
			paint(w, colorIndex, opts.Color, fmt.Sprintf("%d) ", i))
			Print(w, v, opts)
		}

		if pageSize > 0 && i%pageSize == 0 {
			fmt.Fprint(w, "Continue listing? ")
			paint(w, colorPrompt, opts.Color, "(Y/N) ")
			if !Confirm(in) {
				return nil
			}
		}
	}
	return nil
}

// Confirm reads one line from in, a byte at a time so nothing meant for a
// line editor is buffered away, and reports whether it starts with Y.
func Confirm(in io.Reader) bool {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err != nil {
			break
		}
	}
	ans := strings.TrimSpace(string(line))
	return ans != "" && (ans[0] == 'Y' || ans[0] == 'y')
}

// Pipe runs shellCmd with the raw text of v on its stdin, one scalar per
// line, and its output on w.
func Pipe(w io.Writer, v resp.Value, shellCmd string) error {
	args := strings.Fields(shellCmd)
	if len(args) == 0 {
		return nil
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = w
	cmd.Stderr = w
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "pipe stdin")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "start %s", args[0])
	}

	bw := bufio.NewWriter(stdin)
	writeRaw(bw, v)
	bw.Flush()
	stdin.Close()

	return cmd.Wait()
}

func writeRaw(w io.Writer, v resp.Value) {
	if arr, ok := v.(resp.Array); ok {
		for _, elem := range arr.Elems {
			writeRaw(w, elem)
		}
		return
	}
	fmt.Fprintln(w, v.Text())
}

// Export writes v, or every value of values, to filename as plain text. With
// hint "hash" arrays are written as field=value lines.
func Export(filename string, v resp.Value, values iter.Seq2[resp.Value, error], hint string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if v != nil {
		writeExport(bw, v, hint)
	}
	if values != nil {
		for v, err := range values {
			if err != nil {
				return err
			}
			writeExport(bw, v, hint)
		}
	}
	return errors.Wrap(bw.Flush(), "write export file")
}

func writeExport(w io.Writer, v resp.Value, hint string) {
	arr, ok := v.(resp.Array)
	if !ok {
		if _, isNil := v.(resp.Nil); isNil {
			fmt.Fprintln(w, "(nil)")
			return
		}
		fmt.Fprintln(w, v.Text())
		return
	}
	for i := 0; i < len(arr.Elems); i++ {
		if hint == "hash" && i+1 < len(arr.Elems) {
			fmt.Fprintf(w, "%s=%s\n", arr.Elems[i].Text(), arr.Elems[i+1].Text())
			i++
			continue
		}
		writeExport(w, arr.Elems[i], "")
	}
}
