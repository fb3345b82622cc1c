package conn

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/cosmez/redistx-go/internal/resp"
)

// Subscribe yields pushed messages until ctx is cancelled or the connection
// fails. Reads use a short deadline so cancellation is noticed promptly. A
// read failure is yielded once as the error and ends the sequence.
func (c *Connection) Subscribe(ctx context.Context) iter.Seq2[resp.Value, error] {
	return func(yield func(resp.Value, error) bool) {
		for ctx.Err() == nil {
			v, err := c.Receive(200 * time.Millisecond)
			if err != nil {
				if errors.Is(err, ErrTimeout) {
					continue
				}
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
