package cell

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Reducer computes the next state from the current state and an action.
// Returning the state it was given signals that nothing changed.
type Reducer[S any] func(state S, action Action) S

// Dispatch submits an action. The core dispatch only accepts Action records;
// middleware sitting in front of it may accept other values.
type Dispatch func(action any) (any, error)

// Creator builds a store. New is the base Creator.
type Creator[S any] func(reducer Reducer[S], opts ...Option[S]) (*Store[S], error)

// Enhancer wraps a Creator to add capabilities before the store exists.
// The returned Creator must eventually call next to build the base store.
type Enhancer[S any] func(next Creator[S]) Creator[S]

// Store owns a single state value, the reducer that transitions it and the
// listeners notified after each accepted transition.
//
// A Store is not safe for concurrent use. Dispatch, Subscribe and
// ReplaceReducer must be called from one goroutine at a time; callers that
// share a store across goroutines provide their own locking.
type Store[S any] struct {
	name     string
	ctx      context.Context
	clock    clockz.Clock
	metrics  MetricsProvider
	equal    func(prev, next S) bool
	reducer  Reducer[S]
	state    S
	dispatch Dispatch

	listeners []*registration
}

// registration is one Subscribe call. The same func registered twice yields
// two registrations.
type registration struct {
	fn      func()
	removed bool
}

// New creates a Store.
//
// The reducer is called once with the preloaded state (or the zero value of S)
// and an action of type InitActionType; its result is the initial state.
// When WithEnhancer is given, construction is delegated to the enhancer and
// New performs no initialisation itself.
//
// Example:
//
//	store, err := cell.New(duckReducer, cell.WithPreloadedState(ducks))
//	if err != nil {
//	    return err
//	}
//	unsubscribe, _ := store.Subscribe(func() {
//	    fmt.Println(store.GetState())
//	})
//	defer unsubscribe()
//
//	store.Dispatch(cell.Action{"type": "ADD_DUCK", "duck": Duck{Name: "Rex"}})
func New[S any](reducer Reducer[S], opts ...Option[S]) (*Store[S], error) {
	if reducer == nil {
		return nil, fmt.Errorf("%w: reducer is nil", ErrTypeMismatch)
	}

	o := defaultOptions[S]()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.hasEnhancer {
		if o.enhancer == nil {
			return nil, fmt.Errorf("%w: enhancer is nil", ErrTypeMismatch)
		}
		create := o.enhancer(New[S])
		if create == nil {
			return nil, fmt.Errorf("%w: enhancer returned a nil creator", ErrTypeMismatch)
		}
		return create(reducer, resolved(o))
	}

	if o.hasEqual && o.equal == nil {
		return nil, fmt.Errorf("%w: equality function is nil", ErrTypeMismatch)
	}
	if o.name == "" {
		o.name = uuid.Must(uuid.NewV7()).String()
	}

	s := &Store[S]{
		name:    o.name,
		ctx:     o.ctx,
		clock:   o.clock,
		metrics: o.metrics,
		equal:   o.equal,
		reducer: reducer,
	}
	if s.equal == nil {
		s.equal = sameState[S]
	}
	s.dispatch = s.baseDispatch

	var initial S
	if o.hasPreloaded {
		initial = o.preloaded
	}
	s.state = reducer(initial, initAction())

	capitan.Emit(s.ctx, StoreCreated,
		KeyStore.Field(s.name),
	)

	return s, nil
}

// Name returns the label used for this store in signals.
func (s *Store[S]) Name() string {
	return s.name
}

// GetState returns the current state.
func (s *Store[S]) GetState() S {
	return s.state
}

// Dispatch submits an action through the store's dispatch entry point, which
// is the middleware chain when the store was built with ApplyMiddleware.
//
// The core dispatch rejects anything that is not an Action (or
// map[string]any) with ErrTypeMismatch, and records without a "type" entry
// with ErrInvalidAction. It runs the reducer and, when the result is a
// different state, stores it and calls every listener registered at the
// moment Dispatch began, in registration order. It returns the action it was
// given.
//
// Reducers and listeners may call Dispatch again. The nested call completes,
// notifications included, before the outer call resumes notifying its own
// listener snapshot.
func (s *Store[S]) Dispatch(action any) (any, error) {
	return s.dispatch(action)
}

func (s *Store[S]) baseDispatch(action any) (any, error) {
	a, err := asAction(action)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	start := s.clock.Now()
	prev := s.state
	next := s.reducer(prev, a)

	changed := !s.equal(prev, next)
	var notified int
	if changed {
		s.state = next
		snapshot := make([]*registration, len(s.listeners))
		copy(snapshot, s.listeners)
		notified = len(snapshot)

		capitan.Emit(s.ctx, StateChanged,
			KeyStore.Field(s.name),
			KeyActionType.Field(a.TypeString()),
			KeyListeners.Field(notified),
		)

		for _, r := range snapshot {
			r.fn()
		}
	}

	elapsed := s.clock.Since(start)
	capitan.Emit(s.ctx, ActionDispatched,
		KeyStore.Field(s.name),
		KeyActionType.Field(a.TypeString()),
		KeyListeners.Field(notified),
		KeyDuration.Field(elapsed),
	)
	if s.metrics != nil {
		s.metrics.OnDispatch(a.TypeString(), changed, elapsed)
	}

	return action, nil
}

func (s *Store[S]) reject(err error) {
	reason := "type_mismatch"
	if errors.Is(err, ErrInvalidAction) {
		reason = "invalid_action"
	}
	capitan.Emit(s.ctx, DispatchRejected,
		KeyStore.Field(s.name),
		KeyError.Field(err.Error()),
	)
	if s.metrics != nil {
		s.metrics.OnDispatchRejected(reason)
	}
}

// Subscribe registers listener to be called after every dispatch that
// changes the state. Each call adds an independent registration, even for a
// listener that is already registered.
//
// The returned function removes exactly this registration. Calling it again
// is a no-op. A listener removed while a notification round is in progress
// still runs in that round if the round had already captured it.
func (s *Store[S]) Subscribe(listener func()) (func(), error) {
	if listener == nil {
		return nil, fmt.Errorf("%w: listener is nil", ErrTypeMismatch)
	}

	r := &registration{fn: listener}
	s.listeners = append(s.listeners, r)
	s.listenersChanged(true)

	return func() {
		if r.removed {
			return
		}
		r.removed = true
		for i, existing := range s.listeners {
			if existing == r {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
		s.listenersChanged(false)
	}, nil
}

// ListenerCount returns the number of live listener registrations.
func (s *Store[S]) ListenerCount() int {
	return len(s.listeners)
}

func (s *Store[S]) listenersChanged(added bool) {
	signal := ListenerUnsubscribed
	if added {
		signal = ListenerSubscribed
	}
	capitan.Emit(s.ctx, signal,
		KeyStore.Field(s.name),
		KeyListeners.Field(len(s.listeners)),
	)
	if s.metrics != nil {
		s.metrics.OnListenersChanged(len(s.listeners))
	}
}

// ReplaceReducer swaps the reducer used by subsequent dispatches.
// The current state and listeners are left untouched and no init action runs.
func (s *Store[S]) ReplaceReducer(next Reducer[S]) error {
	if next == nil {
		return fmt.Errorf("%w: reducer is nil", ErrTypeMismatch)
	}
	s.reducer = next

	capitan.Emit(s.ctx, ReducerReplaced,
		KeyStore.Field(s.name),
	)
	if s.metrics != nil {
		s.metrics.OnReducerReplaced()
	}
	return nil
}
