package client

import "github.com/cosmez/redistx-go/internal/reply"

// HSet sets one field and reports whether it was newly created.
func (c *Client) HSet(key, field, value string) (bool, error) {
	return argv(c, reply.Bool, "HSET", key, field, value)
}

func (c *Client) HSetNX(key, field, value string) (bool, error) {
	return argv(c, reply.Bool, "HSETNX", key, field, value)
}

// HMSet sets several fields. Fields are sent in sorted order.
func (c *Client) HMSet(key string, fields map[string]string) (bool, error) {
	return argv(c, reply.Ack, "HMSET", append([]string{key}, flattenSorted(fields)...)...)
}

// HGet returns nil when the field or the key does not exist.
func (c *Client) HGet(key, field string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "HGET", key, field)
}

func (c *Client) HMGet(key string, fields ...string) ([]*string, error) {
	return argv(c, reply.Slice(reply.Optional(reply.String)), "HMGET", append([]string{key}, fields...)...)
}

func (c *Client) HGetAll(key string) (map[string]string, error) {
	return argv(c, reply.Map(reply.String, reply.String), "HGETALL", key)
}

func (c *Client) HDel(key string, fields ...string) (int64, error) {
	return argv(c, reply.Int, "HDEL", append([]string{key}, fields...)...)
}

func (c *Client) HExists(key, field string) (bool, error) {
	return argv(c, reply.Bool, "HEXISTS", key, field)
}

func (c *Client) HIncrBy(key, field string, n int64) (int64, error) {
	return argv(c, reply.Int, "HINCRBY", key, field, itoa(n))
}

func (c *Client) HIncrByFloat(key, field string, f float64) (float64, error) {
	return argv(c, reply.Float, "HINCRBYFLOAT", key, field, formatScore(f))
}

func (c *Client) HKeys(key string) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "HKEYS", key)
}

func (c *Client) HVals(key string) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "HVALS", key)
}

func (c *Client) HLen(key string) (int64, error) {
	return argv(c, reply.Int, "HLEN", key)
}
