package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

// setupNATS connects to the server named by CELL_NATS_URL and skips the test
// when it is unset.
func setupNATS(t *testing.T) *nats.Conn {
	t.Helper()
	url := os.Getenv("CELL_NATS_URL")
	if url == "" {
		t.Skip("CELL_NATS_URL not set")
	}

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func TestNew_Defaults(t *testing.T) {
	w := New(nil, "pond.actions")
	if w.Subject() != "pond.actions" {
		t.Errorf("expected subject 'pond.actions', got %q", w.Subject())
	}
	if w.buffer != DefaultBuffer {
		t.Errorf("expected default buffer, got %d", w.buffer)
	}
	if w.queue != "" {
		t.Errorf("expected no queue group, got %q", w.queue)
	}
}

func TestNew_Options(t *testing.T) {
	w := New(nil, "pond.actions", WithQueue("ponds"), WithBuffer(8))
	if w.queue != "ponds" {
		t.Errorf("expected queue 'ponds', got %q", w.queue)
	}
	if w.buffer != 8 {
		t.Errorf("expected buffer 8, got %d", w.buffer)
	}

	if New(nil, "s", WithBuffer(0)).buffer != DefaultBuffer {
		t.Error("expected non-positive buffer to be ignored")
	}
}

func TestWatcher_EmitsPublishedMessages(t *testing.T) {
	nc := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subject := "cell.test.actions"
	ch, err := New(nc, subject).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	for _, doc := range []string{`{"type": "A"}`, `{"type": "B"}`} {
		if err := nc.Publish(subject, []byte(doc)); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	for _, want := range []string{`{"type": "A"}`, `{"type": "B"}`} {
		select {
		case got := <-ch:
			if string(got) != want {
				t.Errorf("expected %s, got %s", want, got)
			}
		case <-ctx.Done():
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestWatcher_ClosedConnection(t *testing.T) {
	nc := setupNATS(t)
	nc.Close()

	if _, err := New(nc, "cell.test.closed").Watch(context.Background()); err == nil {
		t.Error("expected error on a closed connection")
	}
}
