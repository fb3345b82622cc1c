package reply

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/resp"
)

func TestOptional(t *testing.T) {
	dec := Optional(String)

	got, err := dec(New(resp.Nil{}, "GET k"))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = dec(New(resp.Bulk{Value: "v"}, "GET k"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v", *got)

	_, err = String(New(resp.Nil{}, "GET k"))
	assert.True(t, errors.Is(err, rediserr.ErrReplyIsNull))
}

func TestSliceKeepsOrder(t *testing.T) {
	got, err := Slice(String)(New(resp.Strings("c", "a", "b", "a"), "LRANGE"))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "a"}, got)
}

func TestSliceOfOptional(t *testing.T) {
	r := New(resp.Array{Elems: []resp.Value{resp.Bulk{Value: "1"}, resp.Nil{}}}, "MGET a b")
	got, err := Slice(Optional(String))(r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", *got[0])
	assert.Nil(t, got[1])
}

func TestSliceElementError(t *testing.T) {
	r := New(resp.Array{Elems: []resp.Value{resp.Bulk{Value: "a"}, resp.Integer{Value: 1}}}, "X")
	_, err := Slice(String)(r)
	assert.True(t, errors.Is(err, rediserr.ErrReplyTypeIncorrect))
}

func TestSetDedup(t *testing.T) {
	for _, elems := range [][]string{
		{},
		{"a"},
		{"a", "a", "a"},
		{"a", "b", "a", "c", "b"},
	} {
		distinct := map[string]struct{}{}
		for _, e := range elems {
			distinct[e] = struct{}{}
		}
		got, err := Set(String)(New(resp.Strings(elems...), "SMEMBERS s"))
		require.NoError(t, err)
		assert.Equal(t, distinct, got, "%v", elems)
	}
}

func TestMappingParity(t *testing.T) {
	for n := 0; n <= 4; n++ {
		var flat []string
		for i := 0; i < n; i++ {
			flat = append(flat, fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i))
		}

		got, err := Map(String, String)(New(resp.Strings(flat...), "HGETALL h"))
		require.NoError(t, err)
		assert.Len(t, got, n)
		for i := 0; i < len(flat); i += 2 {
			assert.Equal(t, flat[i+1], got[flat[i]])
		}

		odd := append(append([]string(nil), flat...), "dangling")
		_, err = Map(String, String)(New(resp.Strings(odd...), "HGETALL h"))
		assert.True(t, errors.Is(err, rediserr.ErrReplyDataIncorrect), "n=%d", n)
	}
}

func TestMapLaterKeysOverwrite(t *testing.T) {
	got, err := Map(String, String)(New(resp.Strings("k", "1", "k", "2"), "X"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "2"}, got)
}

func TestPairsKeepOrder(t *testing.T) {
	got, err := Pairs(String, Float)(New(resp.Strings("b", "2", "a", "1.5"), "ZRANGE z 0 -1 WITHSCORES"))
	require.NoError(t, err)
	assert.Equal(t, []KV[string, float64]{{"b", 2}, {"a", 1.5}}, got)
}

func TestPairArity(t *testing.T) {
	dec := Pair(Val, Slice(String))

	page := resp.Array{Elems: []resp.Value{resp.Bulk{Value: "17"}, resp.Strings("x", "y")}}
	got, err := dec(New(page, "SCAN 0"))
	require.NoError(t, err)
	cursor, err := got.First.Uint()
	require.NoError(t, err)
	assert.Equal(t, uint64(17), cursor)
	assert.Equal(t, []string{"x", "y"}, got.Second)

	for _, n := range []int{0, 1, 3} {
		elems := make([]resp.Value, n)
		for i := range elems {
			elems[i] = resp.Bulk{Value: "0"}
		}
		_, err := Pair(String, String)(New(resp.Array{Elems: elems}, "SCAN 0"))
		assert.True(t, errors.Is(err, rediserr.ErrReplyDataIncorrect), "n=%d", n)
	}
}

func TestBoolAndAck(t *testing.T) {
	b, err := Bool(New(resp.Integer{Value: 1}, "EXISTS k"))
	require.NoError(t, err)
	assert.True(t, b)

	b, err = Bool(New(resp.Integer{Value: 0}, "EXISTS k"))
	require.NoError(t, err)
	assert.False(t, b)

	ok, err := Ack(New(resp.Status{Value: "OK"}, "SET k v"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRaw(t *testing.T) {
	in := New(resp.Strings("a"), "X")
	out, err := Raw(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = Raw(New(resp.Error{Value: "ERR"}, "X"))
	assert.True(t, errors.Is(err, rediserr.ErrReplyIsError))
}

func TestDecodePassesThroughError(t *testing.T) {
	cause := rediserr.New(rediserr.CommandError, "GET k")
	_, err := Decode(String, Reply{}, cause)
	assert.Equal(t, cause, err)

	s, err := Decode(String, New(resp.Bulk{Value: "v"}, "GET k"), nil)
	require.NoError(t, err)
	assert.Equal(t, "v", s)
}

func TestValueRoundTrip(t *testing.T) {
	tests := []struct {
		in   any
		text string
	}{
		{int64(-7), "-7"},
		{42, "42"},
		{2.5, "2.500000"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		v, err := ValueOf(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.text, v.String())

		// A server echoing the encoded argument back decodes to the same value.
		echoed, err := Val(New(resp.Bulk{Value: v.String()}, "ECHO"))
		require.NoError(t, err)
		switch want := tt.in.(type) {
		case int64:
			got, err := echoed.Int()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		case int:
			got, err := echoed.Int()
			require.NoError(t, err)
			assert.Equal(t, int64(want), got)
		case float64:
			got, err := echoed.Float()
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-6)
		case string:
			assert.Equal(t, want, echoed.String())
		}
	}
}

func TestValueConversionErrors(t *testing.T) {
	v, err := Val(New(resp.Bulk{Value: "abc"}, "GET"))
	require.NoError(t, err)
	assert.False(t, v.IsNumeric())

	_, err = v.Int()
	assert.True(t, errors.Is(err, rediserr.ErrReplyDataIncorrect))
	_, err = v.Float()
	assert.True(t, errors.Is(err, rediserr.ErrReplyDataIncorrect))

	n, err := Val(New(resp.Integer{Value: 3}, "INCR"))
	require.NoError(t, err)
	assert.True(t, n.IsNumeric())

	_, err = ValueOf(struct{}{})
	assert.Error(t, err)
}
