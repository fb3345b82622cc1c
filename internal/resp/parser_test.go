package resp

import (
	"bufio"
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
		wantErr  bool
	}{
		{
			name:     "Status",
			input:    "+OK\r\n",
			expected: Status{Value: "OK"},
		},
		{
			name:     "Error",
			input:    "-ERR unknown command\r\n",
			expected: Error{Value: "ERR unknown command"},
		},
		{
			name:     "Integer",
			input:    ":42\r\n",
			expected: Integer{Value: 42},
		},
		{
			name:     "Negative Integer",
			input:    ":-7\r\n",
			expected: Integer{Value: -7},
		},
		{
			name:     "Bulk String",
			input:    "$6\r\nfoobar\r\n",
			expected: Bulk{Value: "foobar"},
		},
		{
			name:     "Null Bulk String",
			input:    "$-1\r\n",
			expected: Nil{},
		},
		{
			name:     "Empty Bulk String",
			input:    "$0\r\n\r\n",
			expected: Bulk{Value: ""},
		},
		{
			name:     "Binary Bulk String",
			input:    "$4\r\n\x00\x01\x02\x03\r\n",
			expected: Bulk{Value: "\x00\x01\x02\x03"},
		},
		{
			name:     "Bulk String With CRLF",
			input:    "$8\r\na\r\nb c\r\n\r\n",
			expected: Bulk{Value: "a\r\nb c\r\n"},
		},
		{
			name:  "Array",
			input: "*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
			expected: Array{Elems: []Value{
				Bulk{Value: "foo"},
				Bulk{Value: "bar"},
			}},
		},
		{
			name:     "Null Array",
			input:    "*-1\r\n",
			expected: Nil{},
		},
		{
			name:     "Empty Array",
			input:    "*0\r\n",
			expected: Array{Elems: []Value{}},
		},
		{
			name:  "Nested Array",
			input: "*2\r\n$1\r\n0\r\n*2\r\n$1\r\na\r\n$-1\r\n",
			expected: Array{Elems: []Value{
				Bulk{Value: "0"},
				Array{Elems: []Value{Bulk{Value: "a"}, Nil{}}},
			}},
		},
		{
			name:    "Invalid Type",
			input:   "?OK\r\n",
			wantErr: true,
		},
		{
			name:    "Invalid Integer",
			input:   ":abc\r\n",
			wantErr: true,
		},
		{
			name:    "Invalid Bulk String Length",
			input:   "$abc\r\n",
			wantErr: true,
		},
		{
			name:    "Missing Bulk Terminator",
			input:   "$3\r\nfooXY",
			wantErr: true,
		},
		{
			name:    "Invalid Array Count",
			input:   "*abc\r\n",
			wantErr: true,
		},
		{
			name:    "Truncated Array",
			input:   "*2\r\n:1\r\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			got, err := Read(r)

			if (err != nil) != tt.wantErr {
				t.Errorf("Read() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() got = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	values := []Value{
		Status{Value: "QUEUED"},
		Error{Value: "EXECABORT Transaction discarded"},
		Integer{Value: 1 << 40},
		Bulk{Value: "line1\r\nline2 with spaces"},
		Nil{},
		Array{Elems: []Value{Integer{Value: 1}, Array{Elems: []Value{Bulk{Value: "x"}}}, Nil{}}},
	}

	var buf bytes.Buffer
	for _, v := range values {
		if err := Write(&buf, v); err != nil {
			t.Fatalf("Write(%#v) failed: %v", v, err)
		}
	}

	r := bufio.NewReader(&buf)
	for _, want := range values {
		got, err := Read(r)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %#v, want %#v", got, want)
		}
	}
}

func TestKindText(t *testing.T) {
	if got := (Integer{Value: -12}).Text(); got != "-12" {
		t.Errorf("Integer.Text() = %q", got)
	}
	if got := Strings("a", "b").Len(); got != 2 {
		t.Errorf("Strings().Len() = %d", got)
	}
	if KindBulk.String() != "string" || KindArray.String() != "array" {
		t.Errorf("unexpected kind names %s %s", KindBulk, KindArray)
	}
}
