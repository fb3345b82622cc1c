// Package serializer holds the value codecs selectable with the `#:name`
// REPL modifier. SET applies Serialize before the value goes on the wire;
// reads apply Deserialize to bulk replies before they are printed.
package serializer

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
	"sort"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Serializer converts a value to and from its stored form.
type Serializer interface {
	Serialize([]byte) ([]byte, error)
	Deserialize([]byte) ([]byte, error)
}

var codecs = map[string]Serializer{
	"base64": base64Codec{},
	"gzip":   gzipCodec{},
	"snappy": snappyCodec{},
}

// Get returns the codec registered under name (case-insensitive).
func Get(name string) (Serializer, error) {
	s, ok := codecs[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown serializer: %q", name)
	}
	return s, nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode looks up name and serializes data with it.
func Encode(name string, data []byte) ([]byte, error) {
	s, err := Get(name)
	if err != nil {
		return nil, err
	}
	out, err := s.Serialize(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s encode", strings.ToLower(name))
	}
	return out, nil
}

// Decode looks up name and deserializes data with it.
func Decode(name string, data []byte) ([]byte, error) {
	s, err := Get(name)
	if err != nil {
		return nil, err
	}
	out, err := s.Deserialize(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s decode", strings.ToLower(name))
	}
	return out, nil
}

type base64Codec struct{}

func (base64Codec) Serialize(data []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out, nil
}

func (base64Codec) Deserialize(data []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(out, data)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type gzipCodec struct{}

func (gzipCodec) Serialize(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "gzip write")
	}
	// Close writes the footer, so it must run before buf is read.
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip close")
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Deserialize(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "gzip header")
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "gzip read")
	}
	return out, nil
}

type snappyCodec struct{}

func (snappyCodec) Serialize(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCodec) Deserialize(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
