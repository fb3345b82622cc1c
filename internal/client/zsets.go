package client

import "github.com/cosmez/redistx-go/internal/reply"

// Z is a sorted set member with its score.
type Z struct {
	Member string
	Score  float64
}

var scored = reply.Pairs(reply.String, reply.Float)

// zpairs decodes a flat member, score, member, score... array.
func zpairs(r reply.Reply) ([]Z, error) {
	kvs, err := scored(r)
	if err != nil {
		return nil, err
	}
	out := make([]Z, len(kvs))
	for i, kv := range kvs {
		out[i] = Z{Member: kv.Key, Score: kv.Val}
	}
	return out, nil
}

// ZAdd adds or updates members and returns how many were added.
func (c *Client) ZAdd(key string, members ...Z) (int64, error) {
	args := make([]string, 0, 1+2*len(members))
	args = append(args, key)
	for _, m := range members {
		args = append(args, formatScore(m.Score), m.Member)
	}
	return argv(c, reply.Int, "ZADD", args...)
}

func (c *Client) ZCard(key string) (int64, error) {
	return argv(c, reply.Int, "ZCARD", key)
}

// ZCount counts members with a score between min and max. Bounds are sent as
// given, so "(1" and "-inf" work.
func (c *Client) ZCount(key, min, max string) (int64, error) {
	return argv(c, reply.Int, "ZCOUNT", key, min, max)
}

// ZIncrBy returns the new score.
func (c *Client) ZIncrBy(key string, incr float64, member string) (float64, error) {
	return argv(c, reply.Float, "ZINCRBY", key, formatScore(incr), member)
}

// ZScore returns nil when member is not in the set.
func (c *Client) ZScore(key, member string) (*float64, error) {
	return argv(c, reply.Optional(reply.Float), "ZSCORE", key, member)
}

func (c *Client) ZRange(key string, start, stop int64) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "ZRANGE", key, itoa(start), itoa(stop))
}

func (c *Client) ZRangeWithScores(key string, start, stop int64) ([]Z, error) {
	return argv(c, zpairs, "ZRANGE", key, itoa(start), itoa(stop), "WITHSCORES")
}

func (c *Client) ZRevRange(key string, start, stop int64) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "ZREVRANGE", key, itoa(start), itoa(stop))
}

func (c *Client) ZRevRangeWithScores(key string, start, stop int64) ([]Z, error) {
	return argv(c, zpairs, "ZREVRANGE", key, itoa(start), itoa(stop), "WITHSCORES")
}

func (c *Client) ZRangeByScore(key, min, max string) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "ZRANGEBYSCORE", key, min, max)
}

func (c *Client) ZRevRangeByScore(key, max, min string) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "ZREVRANGEBYSCORE", key, max, min)
}

// ZRank returns the member's rank, or -1 when it is not in the set.
func (c *Client) ZRank(key, member string) (int64, error) {
	return c.rank("ZRANK", key, member)
}

// ZRevRank is ZRank with the order reversed.
func (c *Client) ZRevRank(key, member string) (int64, error) {
	return c.rank("ZREVRANK", key, member)
}

func (c *Client) rank(name, key, member string) (int64, error) {
	n, err := argv(c, reply.Optional(reply.Int), name, key, member)
	if err != nil || n == nil {
		return -1, err
	}
	return *n, nil
}

func (c *Client) ZRem(key string, members ...string) (int64, error) {
	return argv(c, reply.Int, "ZREM", append([]string{key}, members...)...)
}

func (c *Client) ZRemRangeByRank(key string, start, stop int64) (int64, error) {
	return argv(c, reply.Int, "ZREMRANGEBYRANK", key, itoa(start), itoa(stop))
}

func (c *Client) ZRemRangeByScore(key, min, max string) (int64, error) {
	return argv(c, reply.Int, "ZREMRANGEBYSCORE", key, min, max)
}
