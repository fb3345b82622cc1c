package client

import "github.com/cosmez/redistx-go/internal/reply"

// LPush prepends values and returns the new length.
func (c *Client) LPush(key string, values ...string) (int64, error) {
	return argv(c, reply.Int, "LPUSH", append([]string{key}, values...)...)
}

// RPush appends values and returns the new length.
func (c *Client) RPush(key string, values ...string) (int64, error) {
	return argv(c, reply.Int, "RPUSH", append([]string{key}, values...)...)
}

func (c *Client) LPushX(key, value string) (int64, error) {
	return argv(c, reply.Int, "LPUSHX", key, value)
}

func (c *Client) RPushX(key, value string) (int64, error) {
	return argv(c, reply.Int, "RPUSHX", key, value)
}

// LPop returns nil for an empty or missing list.
func (c *Client) LPop(key string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "LPOP", key)
}

func (c *Client) RPop(key string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "RPOP", key)
}

func (c *Client) RPopLPush(src, dst string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "RPOPLPUSH", src, dst)
}

func (c *Client) LLen(key string) (int64, error) {
	return argv(c, reply.Int, "LLEN", key)
}

func (c *Client) LRange(key string, start, stop int64) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "LRANGE", key, itoa(start), itoa(stop))
}

func (c *Client) LIndex(key string, index int64) (*string, error) {
	return argv(c, reply.Optional(reply.String), "LINDEX", key, itoa(index))
}

func (c *Client) LSet(key string, index int64, value string) (bool, error) {
	return argv(c, reply.Ack, "LSET", key, itoa(index), value)
}

func (c *Client) LTrim(key string, start, stop int64) (bool, error) {
	return argv(c, reply.Ack, "LTRIM", key, itoa(start), itoa(stop))
}

// LRem removes count occurrences of value; see the server docs for the sign
// of count.
func (c *Client) LRem(key string, count int64, value string) (int64, error) {
	return argv(c, reply.Int, "LREM", key, itoa(count), value)
}

// LInsert inserts value before pivot, or after it when after is set. It
// returns -1 when pivot is not found.
func (c *Client) LInsert(key, pivot, value string, after bool) (int64, error) {
	where := "BEFORE"
	if after {
		where = "AFTER"
	}
	return argv(c, reply.Int, "LINSERT", key, where, pivot, value)
}
