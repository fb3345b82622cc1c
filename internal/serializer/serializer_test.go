package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"ascii":  []byte("counter:42 value with spaces"),
		"binary": {0x00, 0x01, 0xFF, 0xFE, '\r', '\n', 0x00},
		"empty":  {},
	}

	for _, name := range Names() {
		for label, in := range inputs {
			t.Run(name+"/"+label, func(t *testing.T) {
				enc, err := Encode(name, in)
				require.NoError(t, err)

				dec, err := Decode(name, enc)
				require.NoError(t, err)
				assert.Equal(t, len(in), len(dec))
				if len(in) > 0 {
					assert.Equal(t, in, dec)
				}
			})
		}
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	_, err := Get("GZip")
	assert.NoError(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"base64", "gzip", "snappy"}, Names())
}

func TestUnknownCodec(t *testing.T) {
	codec, err := Get("rot13")
	assert.Error(t, err)
	assert.Nil(t, codec)

	_, err = Decode("rot13", []byte("x"))
	assert.Error(t, err)
}

func TestDecodeCorruptInput(t *testing.T) {
	_, err := Decode("gzip", []byte("not gzip"))
	assert.Error(t, err)

	_, err = Decode("base64", []byte("!!!"))
	assert.Error(t, err)
}
