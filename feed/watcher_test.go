package feed

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInbox_DeliversInOrder(t *testing.T) {
	inbox := NewInbox(3)
	ctx := context.Background()

	for _, doc := range []string{"one", "two", "three"} {
		if err := inbox.Post(ctx, []byte(doc)); err != nil {
			t.Fatalf("Post(%s) error = %v", doc, err)
		}
	}
	if got := inbox.Pending(); got != 3 {
		t.Errorf("expected 3 pending, got %d", got)
	}

	out, err := inbox.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	for _, exp := range []string{"one", "two", "three"} {
		if got := string(<-out); got != exp {
			t.Errorf("expected %s, got %s", exp, got)
		}
	}
}

func TestInbox_DropsEmptyDocuments(t *testing.T) {
	inbox := NewInbox(1)

	if err := inbox.Post(context.Background(), nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if got := inbox.Pending(); got != 0 {
		t.Errorf("expected empty document to be dropped, got %d pending", got)
	}
}

func TestInbox_CloseDrainsThenCloses(t *testing.T) {
	inbox := NewInbox(1)
	_ = inbox.Post(context.Background(), []byte("last"))
	inbox.Close()
	inbox.Close()

	if err := inbox.Post(context.Background(), []byte("late")); !errors.Is(err, ErrInboxClosed) {
		t.Errorf("expected ErrInboxClosed, got %v", err)
	}

	out, _ := inbox.Watch(context.Background())
	if got := string(<-out); got != "last" {
		t.Errorf("expected queued document, got %q", got)
	}
	if _, ok := <-out; ok {
		t.Error("expected channel to close after the queue drained")
	}
}

func TestInbox_PostHonoursContext(t *testing.T) {
	inbox := NewInbox(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := inbox.Post(ctx, []byte("blocked")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestInbox_SingleConsumer(t *testing.T) {
	inbox := NewInbox(0)

	if _, err := inbox.Watch(context.Background()); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if _, err := inbox.Watch(context.Background()); !errors.Is(err, ErrInboxWatched) {
		t.Errorf("expected ErrInboxWatched, got %v", err)
	}
}
