// Package redis provides a feed.Watcher that pops action documents from a
// Redis list.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultPollTimeout bounds each blocking pop so cancellation is noticed.
const DefaultPollTimeout = time.Second

// Watcher consumes a Redis list as an inbox. Producers RPUSH documents onto
// the list; each popped element is emitted once, in push order. Elements
// popped by another consumer are not seen.
//
// An element popped while the watcher is being canceled, before anyone
// received it, is pushed back to the head of the list so the next consumer
// gets it first. If that push fails the element is lost.
type Watcher struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
	retryDelay  time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPollTimeout sets how long each BLPOP blocks. Non-positive values are
// ignored.
func WithPollTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollTimeout = d
		}
	}
}

// WithRetryDelay sets the pause after a failed pop. Non-positive values are
// ignored.
func WithRetryDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.retryDelay = d
		}
	}
}

// New creates a new Watcher for the given list key.
func New(client *redis.Client, key string, opts ...Option) *Watcher {
	w := &Watcher{
		client:      client,
		key:         key,
		pollTimeout: DefaultPollTimeout,
		retryDelay:  DefaultPollTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Key returns the list key.
func (w *Watcher) Key() string {
	return w.key
}

// Watch checks the connection and starts popping documents. The channel is
// closed when ctx is canceled.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if err := w.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)

		for ctx.Err() == nil {
			res, err := w.client.BLPop(ctx, w.pollTimeout, w.key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				select {
				case <-time.After(w.retryDelay):
					continue
				case <-ctx.Done():
					return
				}
			}

			// BLPOP replies with [key, value].
			if len(res) != 2 {
				continue
			}

			select {
			case out <- []byte(res[1]):
			case <-ctx.Done():
				w.giveBack(ctx, res[1])
				return
			}
		}
	}()

	return out, nil
}

// giveBack returns an undelivered element to the head of the list.
func (w *Watcher) giveBack(ctx context.Context, element string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.retryDelay)
	defer cancel()
	_ = w.client.LPush(ctx, w.key, element).Err() //nolint:errcheck // Nothing left to report to
}

// Push appends a document to the inbox list.
func Push(ctx context.Context, client *redis.Client, key string, data []byte) error {
	if err := client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to push to %s: %w", key, err)
	}
	return nil
}
