// Package reveal paces the delivery of generated personas so clients can
// show them one card at a time.
package reveal

import (
	"context"
	"time"
)

// Stagger calls produce(i) for i in [0, n) at start+i*delay and sends each
// result on the returned channel in index order. The channel is closed after
// the last value or once ctx is done.
func Stagger[T any](ctx context.Context, n int, delay time.Duration, produce func(i int) T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		start := time.Now()
		for i := 0; i < n; i++ {
			if wait := time.Until(start.Add(time.Duration(i) * delay)); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			} else if ctx.Err() != nil {
				return
			}

			select {
			case out <- produce(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
