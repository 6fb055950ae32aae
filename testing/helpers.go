// Package testing provides test utilities and helpers for cell stores and feeds.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/cell"
	"github.com/zoobzio/cell/feed"
)

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForState waits until the feed reaches the expected state or timeout occurs.
func WaitForState(t *testing.T, f *feed.Feed, expected feed.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return f.State() == expected
	})
}

// RequireState fails the test immediately if the feed is not in the expected state.
func RequireState(t *testing.T, f *feed.Feed, expected feed.State) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// NewTestFeed creates a started feed over an in-process inbox for testing.
// Returns the feed and the inbox to post documents to; use Process to handle
// them deterministically. The inbox is closed on cleanup.
func NewTestFeed(t *testing.T, target feed.Dispatcher, opts ...feed.Option) (*feed.Feed, *feed.Inbox) {
	t.Helper()
	inbox := feed.NewInbox(10)
	f := feed.New(inbox, target, opts...)
	if err := f.Start(context.Background()); err != nil {
		t.Fatalf("failed to start feed: %v", err)
	}
	t.Cleanup(inbox.Close)
	return f, inbox
}

// Recorder captures store states each time its listener fires.
type Recorder[S any] struct {
	mu     sync.Mutex
	store  *cell.Store[S]
	states []S
	unsub  func()
}

// Record subscribes a Recorder to store. The subscription is removed when
// the test ends.
func Record[S any](t *testing.T, store *cell.Store[S]) *Recorder[S] {
	t.Helper()
	r := &Recorder[S]{store: store}
	unsub, err := store.Subscribe(r.capture)
	if err != nil {
		t.Fatalf("failed to subscribe recorder: %v", err)
	}
	r.unsub = unsub
	t.Cleanup(unsub)
	return r
}

func (r *Recorder[S]) capture() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, r.store.GetState())
}

// Calls returns how many times the listener fired.
func (r *Recorder[S]) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// States returns the recorded states, oldest first.
func (r *Recorder[S]) States() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]S(nil), r.states...)
}

// Stop unsubscribes the recorder. Safe to call more than once.
func (r *Recorder[S]) Stop() {
	r.unsub()
}

// SpyReducer wraps a reducer and records every action it sees.
type SpyReducer[S any] struct {
	mu      sync.Mutex
	reducer cell.Reducer[S]
	actions []cell.Action
}

// NewSpyReducer creates a SpyReducer delegating to reducer.
func NewSpyReducer[S any](reducer cell.Reducer[S]) *SpyReducer[S] {
	return &SpyReducer[S]{reducer: reducer}
}

// Reduce records the action and delegates.
func (s *SpyReducer[S]) Reduce(state S, action cell.Action) S {
	s.mu.Lock()
	s.actions = append(s.actions, action)
	s.mu.Unlock()
	return s.reducer(state, action)
}

// Types returns the type of every action seen, as strings.
func (s *SpyReducer[S]) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, len(s.actions))
	for i, a := range s.actions {
		types[i] = a.TypeString()
	}
	return types
}

// Actions returns every action seen, oldest first.
func (s *SpyReducer[S]) Actions() []cell.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cell.Action(nil), s.actions...)
}

// Trace is a shared event log for RecordingMiddleware.
type Trace struct {
	mu     sync.Mutex
	events []string
}

// Events returns the recorded events in order.
func (tr *Trace) Events() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func (tr *Trace) add(event string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, event)
}

// RecordingMiddleware returns a middleware that appends name+":before" and
// name+":after" to trace around every dispatch it forwards.
func RecordingMiddleware[S any](name string, trace *Trace) cell.Middleware[S] {
	return func(_ cell.API[S]) func(cell.Dispatch) cell.Dispatch {
		return func(next cell.Dispatch) cell.Dispatch {
			return func(action any) (any, error) {
				trace.add(name + ":before")
				result, err := next(action)
				trace.add(name + ":after")
				return result, err
			}
		}
	}
}
