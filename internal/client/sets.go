package client

import "github.com/cosmez/redistx-go/internal/reply"

var stringSet = reply.Set(reply.String)

// SAdd adds members and returns how many were new.
func (c *Client) SAdd(key string, members ...string) (int64, error) {
	return argv(c, reply.Int, "SADD", append([]string{key}, members...)...)
}

func (c *Client) SRem(key string, members ...string) (int64, error) {
	return argv(c, reply.Int, "SREM", append([]string{key}, members...)...)
}

func (c *Client) SCard(key string) (int64, error) {
	return argv(c, reply.Int, "SCARD", key)
}

func (c *Client) SIsMember(key, member string) (bool, error) {
	return argv(c, reply.Bool, "SISMEMBER", key, member)
}

func (c *Client) SMembers(key string) (map[string]struct{}, error) {
	return argv(c, stringSet, "SMEMBERS", key)
}

func (c *Client) SMove(src, dst, member string) (bool, error) {
	return argv(c, reply.Bool, "SMOVE", src, dst, member)
}

// SPop removes and returns a random member, nil for an empty set.
func (c *Client) SPop(key string) (*string, error) {
	return argv(c, reply.Optional(reply.String), "SPOP", key)
}

func (c *Client) SRandMember(key string, count int64) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "SRANDMEMBER", key, itoa(count))
}

func (c *Client) SDiff(keys ...string) (map[string]struct{}, error) {
	return argv(c, stringSet, "SDIFF", keys...)
}

func (c *Client) SInter(keys ...string) (map[string]struct{}, error) {
	return argv(c, stringSet, "SINTER", keys...)
}

func (c *Client) SUnion(keys ...string) (map[string]struct{}, error) {
	return argv(c, stringSet, "SUNION", keys...)
}

// SDiffStore stores the difference at dst and returns its size.
func (c *Client) SDiffStore(dst string, keys ...string) (int64, error) {
	return argv(c, reply.Int, "SDIFFSTORE", append([]string{dst}, keys...)...)
}

func (c *Client) SInterStore(dst string, keys ...string) (int64, error) {
	return argv(c, reply.Int, "SINTERSTORE", append([]string{dst}, keys...)...)
}

func (c *Client) SUnionStore(dst string, keys ...string) (int64, error) {
	return argv(c, reply.Int, "SUNIONSTORE", append([]string{dst}, keys...)...)
}
