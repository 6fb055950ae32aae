// Package nats provides a feed.Watcher that receives action documents
// published on a NATS subject.
package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultBuffer is the number of messages held between the subscription
// and the feed.
const DefaultBuffer = 64

// Watcher subscribes to a subject and emits each message body. With a queue
// group, each message goes to one member of the group.
type Watcher struct {
	conn    *nats.Conn
	subject string
	queue   string
	buffer  int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithQueue joins the subscription to a queue group.
func WithQueue(group string) Option {
	return func(w *Watcher) {
		w.queue = group
	}
}

// WithBuffer sets the message buffer size. Non-positive values are ignored.
func WithBuffer(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.buffer = n
		}
	}
}

// New creates a new Watcher for the given subject.
func New(conn *nats.Conn, subject string, opts ...Option) *Watcher {
	w := &Watcher{
		conn:    conn,
		subject: subject,
		buffer:  DefaultBuffer,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Subject returns the watched subject.
func (w *Watcher) Subject() string {
	return w.subject
}

// Watch subscribes to the subject. The subscription is removed and the
// channel closed when ctx is canceled.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	msgs := make(chan *nats.Msg, w.buffer)

	var sub *nats.Subscription
	var err error
	if w.queue != "" {
		sub, err = w.conn.ChanQueueSubscribe(w.subject, w.queue, msgs)
	} else {
		sub, err = w.conn.ChanSubscribe(w.subject, msgs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", w.subject, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer sub.Unsubscribe() //nolint:errcheck // Best effort on shutdown

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				select {
				case out <- msg.Data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
