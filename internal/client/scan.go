package client

import (
	"iter"
	"strconv"

	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/rediserr"
	"github.com/cosmez/redistx-go/internal/reply"
)

// Scan iterates over keys matching pattern ("" means every key). Each key is
// yielded once even if the server repeats it across pages. Breaking out of
// the loop stops without another round trip. A failure is yielded once as
// the error and ends the iteration.
func (c *Client) Scan(pattern string) iter.Seq2[string, error] {
	return scanEach(c, "SCAN", nil, pattern, reply.Slice(reply.String), identity)
}

// SScan iterates over the members of a set.
func (c *Client) SScan(key, pattern string) iter.Seq2[string, error] {
	return scanEach(c, "SSCAN", []string{key}, pattern, reply.Slice(reply.String), identity)
}

// HScan iterates over the field/value pairs of a hash.
func (c *Client) HScan(key, pattern string) iter.Seq2[reply.KV[string, string], error] {
	return scanEach(c, "HSCAN", []string{key}, pattern, reply.Pairs(reply.String, reply.String),
		func(kv reply.KV[string, string]) string { return kv.Key })
}

// ZScan iterates over the members of a sorted set with their scores.
func (c *Client) ZScan(key, pattern string) iter.Seq2[Z, error] {
	return scanEach(c, "ZSCAN", []string{key}, pattern, zpairs, func(z Z) string { return z.Member })
}

func identity(s string) string { return s }

// scanEach yields every distinct element of a cursor scan. id names the
// element for deduplication.
func scanEach[T any, K comparable](c *Client, name string, prefix []string, pattern string,
	dec reply.Decoder[[]T], id func(T) K) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		seen := make(map[K]struct{})
		err := c.scanPages(name, prefix, pattern, func(page reply.Reply) (bool, error) {
			items, err := dec(page)
			if err != nil {
				return false, err
			}
			for _, item := range items {
				k := id(item)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				if !yield(item, nil) {
					return false, nil
				}
			}
			return true, nil
		})
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// scanPages sends `name prefix... cursor MATCH pattern COUNT n` until the
// server returns cursor 0 or fn returns false. fn receives each page's
// result array.
func (c *Client) scanPages(name string, prefix []string, pattern string, fn func(reply.Reply) (bool, error)) error {
	if pattern == "" {
		pattern = "*"
	}
	page := reply.Pair(reply.Val, reply.Raw)
	count := strconv.Itoa(c.scanCount)

	var cursor uint64
	for {
		args := make([]string, 0, len(prefix)+5)
		args = append(args, prefix...)
		args = append(args, strconv.FormatUint(cursor, 10), "MATCH", pattern, "COUNT", count)
		cmd := command.Argv(name, args...)

		p, err := call(c, page, cmd)
		if err != nil {
			return err
		}
		next, err := p.First.Uint()
		if err != nil {
			return rediserr.Newf(rediserr.ReplyDataIncorrect, cmd.String(), "bad cursor %q", p.First)
		}

		more, err := fn(p.Second)
		if err != nil || !more {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
