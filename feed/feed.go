package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

var (
	// ErrAlreadyStarted is returned by Start when the feed is already watching.
	ErrAlreadyStarted = errors.New("feed already started")

	// ErrNoTarget is returned when a feed has nothing to dispatch into.
	ErrNoTarget = errors.New("feed has no dispatch target")
)

// Dispatcher receives decoded actions. *cell.Store satisfies it.
type Dispatcher interface {
	Dispatch(action any) (any, error)
}

// DispatchFunc adapts a plain dispatch function, such as a cell.Dispatch,
// to Dispatcher.
type DispatchFunc func(action any) (any, error)

// Dispatch calls f.
func (f DispatchFunc) Dispatch(action any) (any, error) {
	return f(action)
}

// Feed decodes documents from a Watcher and dispatches the actions they hold.
//
// Every decoded document travels as a Batch through a pipz pipeline built
// from the Options given to New; the innermost step dispatches its actions in
// order. Within one document, the first rejected action stops the rest of
// that document. Failures are recorded (see LastError and ErrorHistory) and
// the feed keeps consuming.
//
// Dispatch happens on the goroutine calling Run, Process or Apply, except
// with WithTimeout, where the pipeline runs the dispatch step on its own
// goroutine. Dispatches of one Feed never overlap.
type Feed struct {
	watcher  Watcher
	target   Dispatcher
	pipeline pipz.Chainable[*Batch]
	codec    Codec
	onError  func(error)

	state      atomic.Int32
	lastError  atomic.Pointer[error]
	failures   *failureLog
	documents  atomic.Int64
	dispatched atomic.Int64
	skipped    atomic.Int64

	dispatchMu sync.Mutex

	mu      sync.Mutex
	started bool
	changes <-chan []byte
}

// New creates a Feed reading from watcher and dispatching into target.
// Pipeline options wrap the dispatch step; instance configuration uses
// chainable methods before calling Start or Run.
//
//	f := feed.New(feed.NewFileInbox("inbox.yaml"), store,
//	    feed.WithRateLimit(10, 5),
//	    feed.WithTimeout(time.Second),
//	).Codec(feed.YAMLCodec{})
func New(watcher Watcher, target Dispatcher, opts ...Option) *Feed {
	f := &Feed{
		watcher:  watcher,
		target:   target,
		codec:    JSONCodec{},
		failures: newFailureLog(0),
	}
	f.pipeline = buildPipeline(f.dispatchStep(), opts)
	return f
}

// Codec sets the codec for decoding documents.
// Default: JSONCodec. Must be called before Start().
func (f *Feed) Codec(codec Codec) *Feed {
	f.codec = codec
	return f
}

// ErrorHistorySize sets the number of recent failures to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (f *Feed) ErrorHistorySize(n int) *Feed {
	f.failures = newFailureLog(n)
	return f
}

// OnError sets a callback invoked for every failed document with the
// Failure that Apply returns. Must be called before Start().
func (f *Feed) OnError(fn func(error)) *Feed {
	f.onError = fn
	return f
}

// State returns the current feed state.
func (f *Feed) State() State {
	return State(f.state.Load())
}

// Documents returns the number of documents received.
func (f *Feed) Documents() int64 {
	return f.documents.Load()
}

// Dispatched returns the number of actions accepted by the target.
func (f *Feed) Dispatched() int64 {
	return f.dispatched.Load()
}

// Skipped returns the number of documents a WithFilter option held back.
func (f *Feed) Skipped() int64 {
	return f.skipped.Load()
}

// LastError returns the most recent failure since the last fully applied
// document, or nil.
func (f *Feed) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the failures since the last fully applied document,
// oldest first. Returns nil if error history is not enabled (see
// ErrorHistorySize).
func (f *Feed) ErrorHistory() []Failure {
	return f.failures.recent()
}

// FailureCount returns how many documents ever failed at stage.
func (f *Feed) FailureCount(stage Stage) int64 {
	return f.failures.total(stage)
}

// Start begins watching the source. It does not consume anything; use Run
// or Process to dispatch.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return ErrAlreadyStarted
	}
	if f.target == nil {
		return ErrNoTarget
	}

	ch, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	f.changes = ch
	f.started = true
	f.transitionTo(ctx, StateWaiting)

	capitan.Emit(ctx, FeedStarted,
		KeyWatcherType.Field(fmt.Sprintf("%T", f.watcher)),
		KeyContentType.Field(f.codec.ContentType()),
	)
	return nil
}

// Run starts the feed if needed and dispatches every document until the
// source closes (nil) or ctx ends (ctx.Err()). Failures of individual
// documents do not stop Run.
func (f *Feed) Run(ctx context.Context) error {
	if err := f.ensureStarted(ctx); err != nil {
		return err
	}
	defer capitan.Emit(ctx, FeedStopped,
		KeyWatcherType.Field(fmt.Sprintf("%T", f.watcher)),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-f.changes:
			if !ok {
				return nil
			}
			_ = f.Apply(ctx, raw) //nolint:errcheck // Errors stored via fail
		}
	}
}

// Process handles at most one pending document without blocking and reports
// whether one was handled. The feed must have been started.
func (f *Feed) Process(ctx context.Context) bool {
	if !f.isStarted() {
		return false
	}
	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		_ = f.Apply(ctx, raw) //nolint:errcheck // Errors stored via fail
		return true
	default:
		return false
	}
}

// Apply decodes one document and runs it through the pipeline. A failed
// document is recorded and returned as a Failure.
func (f *Feed) Apply(ctx context.Context, raw []byte) error {
	if f.target == nil {
		return ErrNoTarget
	}
	seq := f.documents.Add(1)

	actions, err := Decode(f.codec, raw)
	if err != nil {
		return f.fail(ctx, Failure{Document: seq, Stage: StageDecode, Err: err})
	}

	capitan.Emit(ctx, FeedBatchReceived,
		KeyDocument.Field(int(seq)),
		KeyActions.Field(len(actions)),
	)

	batch := &Batch{Seq: seq, Actions: actions, Raw: raw}
	if _, err := f.pipeline.Process(ctx, batch); err != nil {
		failure := Failure{Document: seq, Stage: StagePipeline, Applied: batch.Applied(), Err: err}
		if derr := batch.rejected.Load(); derr != nil {
			failure.Stage = StageDispatch
			failure.Err = derr
		}
		return f.fail(ctx, failure)
	}

	if !batch.delivered.Load() {
		f.skipped.Add(1)
		capitan.Emit(ctx, FeedBatchSkipped,
			KeyDocument.Field(int(seq)),
		)
		return nil
	}

	f.lastError.Store(nil)
	f.failures.recovered()
	f.transitionTo(ctx, StateHealthy)
	return nil
}

// dispatchStep is the innermost pipeline step. A batch seen again after a
// retry continues after its accepted actions.
func (f *Feed) dispatchStep() pipz.Chainable[*Batch] {
	return pipz.Apply("dispatch", func(ctx context.Context, b *Batch) (*Batch, error) {
		f.dispatchMu.Lock()
		defer f.dispatchMu.Unlock()

		b.delivered.Store(true)
		b.rejected.Store(nil)

		for i := b.Applied(); i < len(b.Actions); i++ {
			if err := ctx.Err(); err != nil {
				return b, err
			}
			action := b.Actions[i]
			if _, err := f.target.Dispatch(action); err != nil {
				derr := &DispatchError{Index: i, Type: action.TypeString(), Err: err}
				b.rejected.Store(derr)
				return b, derr
			}
			b.applied.Add(1)
			f.dispatched.Add(1)
		}
		return b, nil
	})
}

func (f *Feed) ensureStarted(ctx context.Context) error {
	if f.isStarted() {
		return nil
	}
	return f.Start(ctx)
}

func (f *Feed) isStarted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *Feed) fail(ctx context.Context, failure Failure) error {
	var err error = failure
	f.lastError.Store(&err)
	f.failures.record(failure)
	f.transitionTo(ctx, StateDegraded)

	signal := FeedPipelineFailed
	switch failure.Stage {
	case StageDecode:
		signal = FeedDecodeFailed
	case StageDispatch:
		signal = FeedDispatchFailed
	}
	capitan.Emit(ctx, signal,
		KeyDocument.Field(int(failure.Document)),
		KeyStage.Field(string(failure.Stage)),
		KeyError.Field(failure.Err.Error()),
	)

	if f.onError != nil {
		f.onError(err)
	}
	return err
}

func (f *Feed) transitionTo(ctx context.Context, next State) {
	old := State(f.state.Swap(int32(next)))
	if old == next {
		return
	}
	capitan.Emit(ctx, FeedStateChanged,
		KeyOldState.Field(old.String()),
		KeyNewState.Field(next.String()),
	)
}
