package feed

import (
	"fmt"
	"sync"
)

// Stage names the step at which a document failed.
type Stage string

const (
	// StageDecode means the document could not be turned into actions.
	StageDecode Stage = "decode"
	// StageDispatch means the target rejected one of the actions.
	StageDispatch Stage = "dispatch"
	// StagePipeline means a pipeline option (rate limit, timeout, circuit
	// breaker, ...) stopped the document.
	StagePipeline Stage = "pipeline"
)

// DispatchError reports an action of a document rejected by the target.
type DispatchError struct {
	Index int    // position of the action within its document
	Type  string // the action's type
	Err   error  // error returned by the target
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Failure describes a document the feed could not fully apply. Apply
// returns one for every failed document.
type Failure struct {
	Document int64 // sequence number of the document, from 1
	Stage    Stage
	Applied  int   // actions of the document accepted before the failure
	Err      error // *DispatchError for StageDispatch
}

func (f Failure) Error() string {
	if f.Stage == StageDispatch {
		return fmt.Sprintf("document %d: %v", f.Document, f.Err)
	}
	return fmt.Sprintf("document %d: %s: %v", f.Document, f.Stage, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// failureLog keeps the failures since the last applied document, bounded to
// size, and a running count per stage that never resets.
type failureLog struct {
	mu      sync.Mutex
	entries []Failure
	head    int
	count   int
	totals  map[Stage]int64
}

func newFailureLog(size int) *failureLog {
	if size < 0 {
		size = 0
	}
	return &failureLog{
		entries: make([]Failure, size),
		totals:  make(map[Stage]int64, 3),
	}
}

func (l *failureLog) record(f Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.totals[f.Stage]++
	if len(l.entries) == 0 {
		return
	}
	l.entries[l.head] = f
	l.head = (l.head + 1) % len(l.entries)
	if l.count < len(l.entries) {
		l.count++
	}
}

// recovered forgets recent failures once a document applies cleanly.
func (l *failureLog) recovered() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.entries)
	l.head = 0
	l.count = 0
}

func (l *failureLog) recent() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return nil
	}
	size := len(l.entries)
	out := make([]Failure, 0, l.count)
	for i := l.head - l.count + size; len(out) < l.count; i++ {
		out = append(out, l.entries[i%size])
	}
	return out
}

func (l *failureLog) total(stage Stage) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[stage]
}
