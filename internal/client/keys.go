package client

import (
	"strconv"
	"time"

	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

// ttlArg renders ttl as a whole count of unit, truncating. A positive ttl
// shorter than one unit fails with test_failed rather than going out as 0.
// Zero and negative values pass through; the server decides what they mean.
func ttlArg(ttl, unit time.Duration, cmd, key string) (string, error) {
	if ttl > 0 && ttl < unit {
		return "", rediserr.Newf(rediserr.TestFailed, cmd+" "+key,
			"ttl %s is shorter than the %s resolution of %s", ttl, unit, cmd)
	}
	return itoa(int64(ttl / unit)), nil
}

// Ping checks the connection.
func (c *Client) Ping() (string, error) {
	return typed(c, reply.String, "PING")
}

// Echo returns msg back from the server.
func (c *Client) Echo(msg string) (string, error) {
	return argv(c, reply.String, "ECHO", msg)
}

// Select switches the connection to database db.
func (c *Client) Select(db int) (bool, error) {
	return typed(c, reply.Ack, "SELECT", db)
}

// DBSize returns the number of keys in the current database.
func (c *Client) DBSize() (int64, error) {
	return typed(c, reply.Int, "DBSIZE")
}

// FlushDB deletes every key in the current database.
func (c *Client) FlushDB() (bool, error) {
	return typed(c, reply.Ack, "FLUSHDB")
}

// Del removes keys and returns how many existed.
func (c *Client) Del(keys ...string) (int64, error) {
	return argv(c, reply.Int, "DEL", keys...)
}

func (c *Client) Exists(key string) (bool, error) {
	return argv(c, reply.Bool, "EXISTS", key)
}

// Expire sets a timeout in whole seconds.
func (c *Client) Expire(key string, ttl time.Duration) (bool, error) {
	secs, err := ttlArg(ttl, time.Second, "EXPIRE", key)
	if err != nil {
		return false, err
	}
	return argv(c, reply.Bool, "EXPIRE", key, secs)
}

// ExpireAt sets an absolute expiry with second precision.
func (c *Client) ExpireAt(key string, at time.Time) (bool, error) {
	return argv(c, reply.Bool, "EXPIREAT", key, itoa(at.Unix()))
}

// PExpire sets a timeout in milliseconds.
func (c *Client) PExpire(key string, ttl time.Duration) (bool, error) {
	ms, err := ttlArg(ttl, time.Millisecond, "PEXPIRE", key)
	if err != nil {
		return false, err
	}
	return argv(c, reply.Bool, "PEXPIRE", key, ms)
}

func (c *Client) PExpireAt(key string, at time.Time) (bool, error) {
	return argv(c, reply.Bool, "PEXPIREAT", key, itoa(at.UnixMilli()))
}

func (c *Client) Persist(key string) (bool, error) {
	return argv(c, reply.Bool, "PERSIST", key)
}

// TTL returns the remaining time to live in seconds, -1 for no expiry and
// -2 for a missing key.
func (c *Client) TTL(key string) (int64, error) {
	return argv(c, reply.Int, "TTL", key)
}

// PTTL is TTL in milliseconds.
func (c *Client) PTTL(key string) (int64, error) {
	return argv(c, reply.Int, "PTTL", key)
}

// Keys returns every key matching pattern. It blocks the server; prefer Scan.
func (c *Client) Keys(pattern string) ([]string, error) {
	return argv(c, reply.Slice(reply.String), "KEYS", pattern)
}

// RandomKey returns nil when the database is empty.
func (c *Client) RandomKey() (*string, error) {
	return argv(c, reply.Optional(reply.String), "RANDOMKEY")
}

func (c *Client) Rename(key, newKey string) (bool, error) {
	return argv(c, reply.Ack, "RENAME", key, newKey)
}

func (c *Client) RenameNX(key, newKey string) (bool, error) {
	return argv(c, reply.Bool, "RENAMENX", key, newKey)
}

// Move moves key to database db.
func (c *Client) Move(key string, db int) (bool, error) {
	return argv(c, reply.Bool, "MOVE", key, strconv.Itoa(db))
}

// Type returns the type name of key, "none" if it does not exist.
func (c *Client) Type(key string) (string, error) {
	return argv(c, reply.String, "TYPE", key)
}
