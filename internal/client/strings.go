package client

import (
	"slices"
	"strconv"
	"time"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
)

// SetOptions are the optional SET modifiers. A TTL that is a whole number of
// seconds is sent as EX, anything else as PX. A TTL under a millisecond fails
// with test_failed.
type SetOptions struct {
	TTL time.Duration
	NX  bool
	XX  bool
}

// Get returns nil when key does not exist.
func (c *Client) Get(key string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "GET", key)
}

// Set stores value at key. It returns false when an NX or XX condition
// prevented the write. NX and XX together fail with test_failed.
func (c *Client) Set(key, value string, opts SetOptions) (bool, error) {
	args := []string{key, value}
	if opts.TTL > 0 {
		if opts.TTL%time.Second == 0 {
			args = append(args, "EX", itoa(int64(opts.TTL/time.Second)))
		} else {
			ms, err := ttlArg(opts.TTL, time.Millisecond, "SET", key)
			if err != nil {
				return false, err
			}
			args = append(args, "PX", ms)
		}
	}
	cmd := command.Argv("SET", args...)
	if err := rediserr.Test(!(opts.NX && opts.XX), rediserr.TestFailed, cmd.String()); err != nil {
		return false, err
	}
	if opts.NX {
		cmd = command.Argv("SET", append(args, "NX")...)
	}
	if opts.XX {
		cmd = command.Argv("SET", append(args, "XX")...)
	}

	r, err := c.Do(cmd)
	if err != nil {
		return false, err
	}
	if r.IsNil() {
		return false, nil
	}
	return r.IsOK()
}

func (c *Client) SetNX(key, value string) (bool, error) {
	return argv(c, reply.Bool, "SETNX", key, value)
}

func (c *Client) SetEX(key string, ttl time.Duration, value string) (bool, error) {
	secs, err := ttlArg(ttl, time.Second, "SETEX", key)
	if err != nil {
		return false, err
	}
	return argv(c, reply.Ack, "SETEX", key, secs, value)
}

func (c *Client) PSetEX(key string, ttl time.Duration, value string) (bool, error) {
	ms, err := ttlArg(ttl, time.Millisecond, "PSETEX", key)
	if err != nil {
		return false, err
	}
	return argv(c, reply.Ack, "PSETEX", key, ms, value)
}

// GetSet stores value and returns the previous value, nil if there was none.
func (c *Client) GetSet(key, value string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "GETSET", key, value)
}

// AppendString appends value to the string at key and returns the new
// length.
func (c *Client) AppendString(key, value string) (int64, error) {
	return argv(c, reply.Int, "APPEND", key, value)
}

func (c *Client) StrLen(key string) (int64, error) {
	return argv(c, reply.Int, "STRLEN", key)
}

func (c *Client) GetRange(key string, start, end int64) (string, error) {
	return argv(c, reply.String, "GETRANGE", key, itoa(start), itoa(end))
}

func (c *Client) SetRange(key string, offset int64, value string) (int64, error) {
	return argv(c, reply.Int, "SETRANGE", key, itoa(offset), value)
}

func (c *Client) GetBit(key string, offset int64) (bool, error) {
	return argv(c, reply.Bool, "GETBIT", key, itoa(offset))
}

// SetBit returns the previous bit value.
func (c *Client) SetBit(key string, offset int64, on bool) (bool, error) {
	bit := "0"
	if on {
		bit = "1"
	}
	return argv(c, reply.Bool, "SETBIT", key, itoa(offset), bit)
}

func (c *Client) BitCount(key string, start, end int64) (int64, error) {
	return argv(c, reply.Int, "BITCOUNT", key, itoa(start), itoa(end))
}

func (c *Client) Incr(key string) (int64, error) {
	return argv(c, reply.Int, "INCR", key)
}

func (c *Client) IncrBy(key string, n int64) (int64, error) {
	return argv(c, reply.Int, "INCRBY", key, itoa(n))
}

func (c *Client) IncrByFloat(key string, f float64) (float64, error) {
	return argv(c, reply.Float, "INCRBYFLOAT", key, formatScore(f))
}

func (c *Client) Decr(key string) (int64, error) {
	return argv(c, reply.Int, "DECR", key)
}

func (c *Client) DecrBy(key string, n int64) (int64, error) {
	return argv(c, reply.Int, "DECRBY", key, itoa(n))
}

// MGet returns one entry per key, nil where the key does not exist.
func (c *Client) MGet(keys ...string) ([]*string, error) {
	return argv(c, reply.Slice(reply.Optional(reply.String)), "MGET", keys...)
}

// MSet stores every pair. Keys are sent in sorted order.
func (c *Client) MSet(pairs map[string]string) (bool, error) {
	return argv(c, reply.Ack, "MSET", flattenSorted(pairs)...)
}

// MSetNX stores every pair only if none of the keys exist.
func (c *Client) MSetNX(pairs map[string]string) (bool, error) {
	return argv(c, reply.Bool, "MSETNX", flattenSorted(pairs)...)
}

func flattenSorted(pairs map[string]string) []string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		out = append(out, k, pairs[k])
	}
	return out
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
