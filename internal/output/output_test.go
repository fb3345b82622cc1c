package output

import (
	"bytes"
	"encoding/base64"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/resp"
	"github.com/cosmez/redistx-go/internal/serializer"
)

func seqOf(values ...resp.Value) iter.Seq2[resp.Value, error] {
	return func(yield func(resp.Value, error) bool) {
		for _, v := range values {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func TestPrint(t *testing.T) {
	codec, err := serializer.Get("base64")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		value    resp.Value
		opts     Options
		expected string
	}{
		{"Status", resp.Status{Value: "OK"}, Options{Newline: true}, "OK\n"},
		{"Bulk", resp.Bulk{Value: "hello"}, Options{Newline: true}, "\"hello\"\n"},
		{"Integer", resp.Integer{Value: 42}, Options{Newline: true}, "(integer) 42\n"},
		{"Nil", resp.Nil{}, Options{Newline: true}, "(nil)\n"},
		{"Untyped nil", nil, Options{}, "(nil)"},
		{"Error", resp.Error{Value: "ERR boom"}, Options{Newline: true}, "(error) ERR boom\n"},
		{
			name:     "Decoded Bulk",
			value:    resp.Bulk{Value: base64.StdEncoding.EncodeToString([]byte("secret"))},
			opts:     Options{Codec: codec, Newline: true},
			expected: "\"secret\"\n",
		},
		{
			name:     "Undecodable Bulk Printed As Is",
			value:    resp.Bulk{Value: "not base64!"},
			opts:     Options{Codec: codec},
			expected: "\"not base64!\"",
		},
		{
			name:     "Array",
			value:    resp.Array{Elems: []resp.Value{resp.Status{Value: "one"}, resp.Status{Value: "two"}}},
			opts:     Options{Newline: true},
			expected: "1) one\n2) two\n",
		},
		{
			name:     "Hash Array",
			value:    resp.Strings("field1", "val1", "field2", "val2"),
			opts:     Options{Hint: "hash", Newline: true},
			expected: "#\"field1\"=\"val1\"\n#\"field2\"=\"val2\"\n",
		},
		{
			name: "Nested Array",
			value: resp.Array{Elems: []resp.Value{
				resp.Status{Value: "one"},
				resp.Array{Elems: []resp.Value{resp.Status{Value: "two"}, resp.Status{Value: "three"}}},
			}},
			opts:     Options{Newline: true},
			expected: "1) one\n2) 1) two\n   2) three\n",
		},
		{"Empty Array", resp.Array{}, Options{Newline: true}, "(empty array)\n"},
		{
			name: "Transaction Replies",
			value: resp.Array{Elems: []resp.Value{
				resp.Status{Value: "OK"},
				resp.Integer{Value: 2},
				resp.Nil{},
				resp.Error{Value: "WRONGTYPE"},
			}},
			expected: "1) OK\n2) (integer) 2\n3) (nil)\n4) (error) WRONGTYPE\n",
		},
		{
			name:     "Aligned Indices",
			value:    resp.Strings("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"),
			expected: " 1) \"a\"\n 2) \"b\"\n 3) \"c\"\n 4) \"d\"\n 5) \"e\"\n 6) \"f\"\n 7) \"g\"\n 8) \"h\"\n 9) \"i\"\n10) \"j\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Print(&buf, tt.value, tt.opts)
			if got := buf.String(); got != tt.expected {
				t.Errorf("Print() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, rediserr.New(rediserr.ReplyIsNull, "GET k"), false)
	if got := buf.String(); !strings.HasPrefix(got, "[reply_is_null] ") {
		t.Errorf("PrintError() = %q, want kind prefix", got)
	}

	buf.Reset()
	PrintError(&buf, errors.New("plain"), false)
	if got := buf.String(); got != "plain\n" {
		t.Errorf("PrintError() = %q, want %q", got, "plain\n")
	}
}

func TestPrintSeq(t *testing.T) {
	var buf bytes.Buffer
	var in bytes.Buffer
	err := PrintSeq(&buf, &in, seqOf(resp.Status{Value: "one"}, resp.Status{Value: "two"}), Options{Newline: true}, 100)
	if err != nil {
		t.Fatal(err)
	}

	expected := "1) one\n2) two\n"
	if got := buf.String(); got != expected {
		t.Errorf("PrintSeq() = %q, want %q", got, expected)
	}
}

func TestPrintSeqPagination(t *testing.T) {
	values := seqOf(resp.Status{Value: "one"}, resp.Status{Value: "two"}, resp.Status{Value: "three"})

	t.Run("continue", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintSeq(&buf, strings.NewReader("Y\n"), values, Options{Newline: true}, 2); err != nil {
			t.Fatal(err)
		}
		expected := "1) one\n2) two\nContinue listing? (Y/N) 3) three\n"
		if got := buf.String(); got != expected {
			t.Errorf("PrintSeq() = %q, want %q", got, expected)
		}
	})

	t.Run("stop", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintSeq(&buf, strings.NewReader("n\n"), values, Options{Newline: true}, 2); err != nil {
			t.Fatal(err)
		}
		expected := "1) one\n2) two\nContinue listing? (Y/N) "
		if got := buf.String(); got != expected {
			t.Errorf("PrintSeq() = %q, want %q", got, expected)
		}
	})
}

func TestPrintSeqError(t *testing.T) {
	boom := errors.New("boom")
	values := func(yield func(resp.Value, error) bool) {
		if !yield(resp.Status{Value: "one"}, nil) {
			return
		}
		yield(nil, boom)
	}

	var buf bytes.Buffer
	err := PrintSeq(&buf, strings.NewReader(""), values, Options{Newline: true}, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("PrintSeq() error = %v, want %v", err, boom)
	}
	if got := buf.String(); got != "1) one\n" {
		t.Errorf("PrintSeq() = %q", got)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.txt")

	val := resp.Array{Elems: []resp.Value{resp.Bulk{Value: "one"}, resp.Nil{}, resp.Integer{Value: 3}}}
	if err := Export(file, val, nil, ""); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	if expected := "one\n(nil)\n3\n"; string(content) != expected {
		t.Errorf("Export() = %q, want %q", string(content), expected)
	}
}

func TestExportHashSeq(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export_hash.txt")

	values := seqOf(resp.Strings("field1", "val1"), resp.Strings("field2", "val2"))
	if err := Export(file, nil, values, "hash"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	if expected := "field1=val1\nfield2=val2\n"; string(content) != expected {
		t.Errorf("Export() = %q, want %q", string(content), expected)
	}
}

func TestPipe(t *testing.T) {
	if _, err := os.Stat("/bin/cat"); err != nil {
		t.Skip("cat not available")
	}
	var buf bytes.Buffer
	if err := Pipe(&buf, resp.Strings("a", "b"), "/bin/cat"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a\nb\n" {
		t.Errorf("Pipe() = %q, want %q", got, "a\nb\n")
	}
}
