package timeops

import (
	"context"

	"github.com/Aid-On/nagare"
)

// ConcatMap maps each item of s to an inner stream via fn and drains each
// inner stream fully, in order, before moving on to the next outer item.
// Unlike SwitchMap it needs no background goroutine: it is a purely
// synchronous pull composition.
func ConcatMap[T, R any](s nagare.Stream[T], fn func(T) nagare.Stream[R]) nagare.Stream[R] {
	return &concatMapStream[T, R]{upstream: s, fn: fn}
}

type concatMapStream[T, R any] struct {
	upstream nagare.Stream[T]
	fn       func(T) nagare.Stream[R]
	cur      nagare.Stream[R]
	done     bool
}

func (c *concatMapStream[T, R]) Next(ctx context.Context) (R, error) {
	var zero R
	for {
		if c.done {
			return zero, nagare.End
		}
		if c.cur == nil {
			v, err := c.upstream.Next(ctx)
			if err == nagare.End {
				c.done = true
				return zero, nagare.End
			}
			if err != nil {
				c.done = true
				return zero, err
			}
			c.cur = c.fn(v)
		}
		rv, err := c.cur.Next(ctx)
		if err == nagare.End {
			c.cur.Close()
			c.cur = nil
			continue
		}
		if err != nil {
			c.cur.Close()
			c.cur = nil
			c.done = true
			return zero, err
		}
		return rv, nil
	}
}

func (c *concatMapStream[T, R]) Close() {
	if c.cur != nil {
		c.cur.Close()
	}
	c.upstream.Close()
}
