package command

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmez/redistx-go/internal/rediserr"
)

type bitOp int

const (
	bitAnd bitOp = iota
	bitOr
	bitXor
)

type keyName string

func TestTypedEncoding(t *testing.T) {
	cmd, err := Typed("SET", "k", 42)
	require.NoError(t, err)
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$2\r\n42\r\n", string(cmd.Bytes()))
	assert.Equal(t, "SET k 42", cmd.String())
	assert.Equal(t, ModeTyped, cmd.Mode)
}

func TestTypedSplitsName(t *testing.T) {
	cmd, err := Typed("CONFIG GET", "maxmemory")
	require.NoError(t, err)
	assert.Equal(t, "CONFIG", cmd.Name)
	assert.Equal(t, []string{"GET", "maxmemory"}, cmd.Args)
	assert.Equal(t, "*3\r\n$6\r\nCONFIG\r\n$3\r\nGET\r\n$9\r\nmaxmemory\r\n", string(cmd.Bytes()))
}

func TestTypedScalarFormatting(t *testing.T) {
	tests := []struct {
		name string
		arg  any
		want string
	}{
		{"int", 7, "7"},
		{"negative int64", int64(-12), "-12"},
		{"int32", int32(3), "3"},
		{"uint", uint(9), "9"},
		{"uint8", uint8(255), "255"},
		{"float", 3.5, "3.500000"},
		{"float32", float32(0.25), "0.250000"},
		{"negative float", -1.0, "-1.000000"},
		{"true", true, "1"},
		{"false", false, "0"},
		{"enum", bitXor, "2"},
		{"named string", keyName("user:1"), "user:1"},
		{"bytes", []byte("raw"), "raw"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatArg(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypedEnumArgument(t *testing.T) {
	cmd, err := Typed("TESTOP", bitOr, "dest")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "dest"}, cmd.Args)
}

func TestTypedRejectsWhitespace(t *testing.T) {
	for _, arg := range []string{"hello world", "a\tb", "line\r\n", "x\ny"} {
		_, err := Typed("SET", "k", arg)
		require.Error(t, err, "%q", arg)
		assert.True(t, errors.Is(err, rediserr.ErrCommandError), "%q", arg)
	}
}

func TestTypedErrorCarriesCommandText(t *testing.T) {
	_, err := Typed("SET", "k", "a b")
	require.Error(t, err)

	var rerr *rediserr.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "SET k a b", rerr.Cmd)
}

func TestTypedRejectsUnsupported(t *testing.T) {
	_, err := Typed("SET", "k", struct{}{})
	assert.True(t, errors.Is(err, rediserr.ErrCommandError))

	_, err = Typed("SET", "k", []int{1})
	assert.True(t, errors.Is(err, rediserr.ErrCommandError))

	_, err = Typed("INCRBY", "k", uint64(math.MaxUint64))
	assert.True(t, errors.Is(err, rediserr.ErrCommandError))
}

func TestTypedEmptyName(t *testing.T) {
	_, err := Typed("   ")
	assert.True(t, errors.Is(err, rediserr.ErrCommandError))
}

func TestMustTypedPanics(t *testing.T) {
	assert.Panics(t, func() { MustTyped("SET", "k", "two words") })
	assert.NotPanics(t, func() { MustTyped("PING") })
}

func TestArgvCarriesArbitraryBytes(t *testing.T) {
	cmd := Argv("SET", "my key", "line1\r\nline2", "\x00\xff")
	assert.Equal(t, ModeArgv, cmd.Mode)
	assert.Equal(t,
		"*4\r\n$3\r\nSET\r\n$6\r\nmy key\r\n$12\r\nline1\r\nline2\r\n$2\r\n\x00\xff\r\n",
		string(cmd.Bytes()))
}

func TestArgvCopiesArguments(t *testing.T) {
	args := []string{"k", "v"}
	cmd := Argv("SET", args...)
	args[1] = "changed"
	assert.Equal(t, []string{"k", "v"}, cmd.Args)
}

func TestArgvNoArgs(t *testing.T) {
	cmd := Argv("MULTI")
	assert.Equal(t, "*1\r\n$5\r\nMULTI\r\n", string(cmd.Bytes()))
	assert.Equal(t, "MULTI", cmd.String())
}

func TestAppendToReusesBuffer(t *testing.T) {
	buf := Argv("MULTI").AppendTo(nil)
	buf = Argv("GET", "a").AppendTo(buf)
	buf = Argv("EXEC").AppendTo(buf)
	assert.Equal(t,
		"*1\r\n$5\r\nMULTI\r\n*2\r\n$3\r\nGET\r\n$1\r\na\r\n*1\r\n$4\r\nEXEC\r\n",
		string(buf))
}
