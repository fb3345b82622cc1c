package rediserr

import (
	"errors"
	"io"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{ReplyIsNull, "reply_is_null"},
		{ReplyTypeIncorrect, "reply_type_incorrect"},
		{ReplyDataIncorrect, "reply_data_incorrect"},
		{ReplyIsError, "reply_is_error"},
		{TestFailed, "test_failed"},
		{CommandError, "command_error"},
		{ExceededRetryTimes, "exceeded_retry_times"},
		{Kind(99), "kind(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := Newf(ReplyIsError, "GET foo", "WRONGTYPE Operation against a key")

	assert.True(t, errors.Is(err, ErrReplyIsError))
	assert.False(t, errors.Is(err, ErrReplyIsNull))
	assert.Equal(t, "WRONGTYPE Operation against a key (cmd: GET foo)", err.Error())
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := Wrap(io.EOF, CommandError, "PING")
	outer := pkgerrors.Wrap(inner, "round trip")

	require.Equal(t, CommandError, KindOf(outer))
	assert.True(t, errors.Is(outer, io.EOF))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}

func TestTest(t *testing.T) {
	assert.NoError(t, Test(true, TestFailed, ""))

	err := Test(false, TestFailed, "SET k v NX XX")
	require.Error(t, err)
	assert.Equal(t, TestFailed, KindOf(err))
	assert.Equal(t, "test_failed (cmd: SET k v NX XX)", err.Error())
}
