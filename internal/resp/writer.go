package resp

import (
	"fmt"
	"io"
	"strconv"
)

// Append appends the RESP encoding of v to buf.
func Append(buf []byte, v Value) []byte {
	switch val := v.(type) {
	case nil, Nil:
		return append(buf, "$-1\r\n"...)
	case Status:
		buf = append(buf, '+')
		buf = append(buf, val.Value...)
		return append(buf, '\r', '\n')
	case Error:
		buf = append(buf, '-')
		buf = append(buf, val.Value...)
		return append(buf, '\r', '\n')
	case Integer:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, val.Value, 10)
		return append(buf, '\r', '\n')
	case Bulk:
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(val.Value)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, val.Value...)
		return append(buf, '\r', '\n')
	case Array:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(val.Elems)), 10)
		buf = append(buf, '\r', '\n')
		for _, elem := range val.Elems {
			buf = Append(buf, elem)
		}
		return buf
	default:
		panic(fmt.Sprintf("resp: unknown value type %T", v))
	}
}

// Write writes the RESP encoding of v to w.
func Write(w io.Writer, v Value) error {
	_, err := w.Write(Append(nil, v))
	return err
}
