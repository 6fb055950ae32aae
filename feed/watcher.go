package feed

import (
	"context"
	"errors"
	"sync"
)

// Watcher observes a source for action documents and emits each one as raw
// bytes. The channel is closed when the context is canceled or the source
// ends.
type Watcher interface {
	Watch(ctx context.Context) (<-chan []byte, error)
}

var (
	// ErrInboxClosed is returned by Post after Close.
	ErrInboxClosed = errors.New("inbox closed")

	// ErrInboxWatched is returned by a second Watch on the same Inbox.
	ErrInboxWatched = errors.New("inbox already has a consumer")
)

// Inbox is an in-process document queue. Producers Post documents, the feed
// consuming it receives them in order. An Inbox has a single consumer.
//
// Watch hands out the queue itself, so a feed driven by Process sees posted
// documents without any goroutine in between.
type Inbox struct {
	mu      sync.RWMutex
	docs    chan []byte
	closed  bool
	watched bool
}

// NewInbox creates an Inbox holding up to buffer pending documents.
// Post blocks while the inbox is full.
func NewInbox(buffer int) *Inbox {
	if buffer < 0 {
		buffer = 0
	}
	return &Inbox{docs: make(chan []byte, buffer)}
}

// Post queues a document. Empty documents are dropped. It blocks while the
// inbox is full and returns ctx.Err() if ctx ends first.
func (i *Inbox) Post(ctx context.Context, doc []byte) error {
	if len(doc) == 0 {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return ErrInboxClosed
	}

	select {
	case i.docs <- doc:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued documents.
func (i *Inbox) Pending() int {
	return len(i.docs)
}

// Close stops accepting documents. It waits for blocked Post calls. Queued
// documents are still delivered, then the consumer's channel closes.
func (i *Inbox) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.closed {
		i.closed = true
		close(i.docs)
	}
}

// Watch returns the document queue. ctx is not observed: the channel closes
// on Close.
func (i *Inbox) Watch(_ context.Context) (<-chan []byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.watched {
		return nil, ErrInboxWatched
	}
	i.watched = true
	return i.docs, nil
}
