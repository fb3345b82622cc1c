package resp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read reads a single RESP value from r. Bulk strings are read by exact byte
// count, so any payload survives unchanged.
func Read(r *bufio.Reader) (Value, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch b {
	case '+':
		return readStatus(r)
	case '-':
		return readError(r)
	case ':':
		return readInteger(r)
	case '$':
		return readBulk(r)
	case '*':
		return readArray(r)
	default:
		return nil, fmt.Errorf("unknown RESP type byte: %q", b)
	}
}

// readLine reads until \n and strips the trailing \r\n.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}

func readStatus(r *bufio.Reader) (Value, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	return Status{Value: line}, nil
}

func readError(r *bufio.Reader) (Value, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	return Error{Value: line}, nil
}

func readInteger(r *bufio.Reader) (Value, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	val, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer format: %w", err)
	}
	return Integer{Value: val}, nil
}

func readBulk(r *bufio.Reader) (Value, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	length, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("invalid bulk string length: %w", err)
	}
	if length == -1 {
		return Nil{}, nil
	}
	if length < -1 {
		return nil, fmt.Errorf("invalid bulk string length: %d", length)
	}

	// payload plus trailing CRLF in one read
	buf := make([]byte, length+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read bulk string payload: %w", err)
	}
	if buf[length] != '\r' || buf[length+1] != '\n' {
		return nil, fmt.Errorf("expected CRLF after bulk string payload, got %q", buf[length:])
	}

	return Bulk{Value: string(buf[:length])}, nil
}

func readArray(r *bufio.Reader) (Value, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	count, err := strconv.Atoi(line)
	if err != nil {
		return nil, fmt.Errorf("invalid array count: %w", err)
	}
	if count == -1 {
		return Nil{}, nil
	}
	if count < -1 {
		return nil, fmt.Errorf("invalid array count: %d", count)
	}

	elems := make([]Value, count)
	for i := 0; i < count; i++ {
		val, err := Read(r)
		if err != nil {
			return nil, fmt.Errorf("failed to parse array element %d: %w", i, err)
		}
		elems[i] = val
	}

	return Array{Elems: elems}, nil
}
