package cell

import (
	"errors"
	"reflect"
	"testing"
)

// tracer builds a middleware recording when its wrapper runs.
func tracer(name string, events *[]string) Middleware[[]duck] {
	return func(_ API[[]duck]) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(action any) (any, error) {
				*events = append(*events, name+":before")
				result, err := next(action)
				*events = append(*events, name+":after")
				return result, err
			}
		}
	}
}

type thunkFunc func(dispatch Dispatch, getState func() []duck) (any, error)

func thunk(api API[[]duck]) func(Dispatch) Dispatch {
	return func(next Dispatch) Dispatch {
		return func(action any) (any, error) {
			if fn, ok := action.(thunkFunc); ok {
				return fn(api.Dispatch, api.GetState)
			}
			return next(action)
		}
	}
}

func newMiddlewareStore(t *testing.T, middlewares ...Middleware[[]duck]) *Store[[]duck] {
	t.Helper()
	store, err := New(duckReducer, WithEnhancer(ApplyMiddleware(middlewares...)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return store
}

func TestApplyMiddleware_UsesUnderlyingCreator(t *testing.T) {
	var calls int
	var gotReducer bool
	creator := func(reducer Reducer[[]duck], opts ...Option[[]duck]) (*Store[[]duck], error) {
		calls++
		gotReducer = reducer != nil
		return New(reducer, opts...)
	}

	store, err := ApplyMiddleware(thunk)(creator)(duckReducer)
	if err != nil {
		t.Fatalf("enhanced creator failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected underlying creator called once, got %d", calls)
	}
	if !gotReducer {
		t.Error("expected underlying creator to receive the reducer")
	}
	if !sameSlice(store.GetState(), initialDucks) {
		t.Errorf("expected initial ducks, got %v", store.GetState())
	}
}

func TestApplyMiddleware_PassesAPIToEveryMiddleware(t *testing.T) {
	var apis []API[[]duck]
	capture := func(api API[[]duck]) func(Dispatch) Dispatch {
		apis = append(apis, api)
		return func(next Dispatch) Dispatch { return next }
	}

	newMiddlewareStore(t, capture, capture)

	if len(apis) != 2 {
		t.Fatalf("expected 2 middleware invocations, got %d", len(apis))
	}
	for i, api := range apis {
		if api.GetState == nil || api.Dispatch == nil {
			t.Errorf("middleware %d: expected GetState and Dispatch", i)
		}
	}
}

func TestApplyMiddleware_NestingOrder(t *testing.T) {
	var events []string
	store, err := New(func(ducks []duck, action Action) []duck {
		if action[ActionTypeKey] != InitActionType {
			events = append(events, "reducer")
		}
		return duckReducer(ducks, action)
	}, WithEnhancer(ApplyMiddleware(tracer("m1", &events), tracer("m2", &events))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := store.Dispatch(addRubberDucky()); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	want := []string{"m1:before", "m2:before", "reducer", "m2:after", "m1:after"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestApplyMiddleware_TransparentMiddleware(t *testing.T) {
	var events []string
	store := newMiddlewareStore(t, tracer("pass", &events))
	plain := newDuckStore(t)
	action := addRubberDucky()

	got, err := store.Dispatch(action)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	_, _ = plain.Dispatch(addRubberDucky())

	if reflect.ValueOf(got).Pointer() != reflect.ValueOf(action).Pointer() {
		t.Error("expected the dispatched action back through the chain")
	}
	if !reflect.DeepEqual(store.GetState(), plain.GetState()) {
		t.Errorf("expected %v, got %v", plain.GetState(), store.GetState())
	}
}

func TestApplyMiddleware_NoMiddleware(t *testing.T) {
	store := newMiddlewareStore(t)

	if _, err := store.Dispatch(addRubberDucky()); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(store.GetState()) != len(initialDucks)+1 {
		t.Errorf("expected one duck added, got %v", store.GetState())
	}
}

func TestApplyMiddleware_ErrorsPropagate(t *testing.T) {
	var events []string
	store := newMiddlewareStore(t, tracer("m1", &events))

	if _, err := store.Dispatch("not an object"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := store.Dispatch(Action{}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestApplyMiddleware_Thunk(t *testing.T) {
	store := newMiddlewareStore(t, thunk)

	duck1 := duck{Name: "duck1", Color: "yellow"}
	duck2 := duck{Name: "duck2", Color: "white"}
	duck3 := duck{Name: "duck3", Color: "grey"}

	var sizes []int
	addMany := thunkFunc(func(dispatch Dispatch, getState func() []duck) (any, error) {
		for _, d := range []duck{duck1, duck2, duck3} {
			if _, err := dispatch(Action{"type": "ADD_DUCK", "duck": d}); err != nil {
				return nil, err
			}
			sizes = append(sizes, len(getState()))
		}
		return "done", nil
	})

	got, err := store.Dispatch(addMany)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if got != "done" {
		t.Errorf("expected thunk result, got %v", got)
	}

	want := append(append([]duck{}, initialDucks...), duck1, duck2, duck3)
	if !reflect.DeepEqual(store.GetState(), want) {
		t.Errorf("expected %v, got %v", want, store.GetState())
	}
	if !reflect.DeepEqual(sizes, []int{3, 4, 5}) {
		t.Errorf("expected getState to track each dispatch, got %v", sizes)
	}
}

func TestApplyMiddleware_RecursiveDispatchUsesFullChain(t *testing.T) {
	var events []string
	// expand turns one EXPAND action into two ADD_DUCK actions via api.Dispatch.
	expand := func(api API[[]duck]) func(Dispatch) Dispatch {
		return func(next Dispatch) Dispatch {
			return func(action any) (any, error) {
				if a, ok := action.(Action); ok && a[ActionTypeKey] == "EXPAND" {
					for _, name := range []string{"a", "b"} {
						if _, err := api.Dispatch(Action{"type": "ADD_DUCK", "duck": duck{Name: name}}); err != nil {
							return nil, err
						}
					}
					return action, nil
				}
				return next(action)
			}
		}
	}

	store := newMiddlewareStore(t, tracer("outer", &events), expand)

	if _, err := store.Dispatch(Action{"type": "EXPAND"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	want := []string{
		"outer:before",
		"outer:before", "outer:after",
		"outer:before", "outer:after",
		"outer:after",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
	if len(store.GetState()) != len(initialDucks)+2 {
		t.Errorf("expected two ducks added, got %v", store.GetState())
	}
}

func TestApplyMiddleware_GetStateIsLive(t *testing.T) {
	var api API[[]duck]
	capture := func(a API[[]duck]) func(Dispatch) Dispatch {
		api = a
		return func(next Dispatch) Dispatch { return next }
	}
	store := newMiddlewareStore(t, capture)

	_, _ = store.Dispatch(addRubberDucky())

	if !sameSlice(api.GetState(), store.GetState()) {
		t.Error("expected API GetState to reflect the current state")
	}
}

func TestApplyMiddleware_APIDispatchIsLateBound(t *testing.T) {
	var events []string
	var api API[[]duck]
	capture := func(a API[[]duck]) func(Dispatch) Dispatch {
		api = a
		return func(next Dispatch) Dispatch { return next }
	}
	newMiddlewareStore(t, capture, tracer("m", &events))

	if _, err := api.Dispatch(addRubberDucky()); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !reflect.DeepEqual(events, []string{"m:before", "m:after"}) {
		t.Errorf("expected API dispatch to enter the wrapped chain, got %v", events)
	}
}

func TestApplyMiddleware_NilMiddleware(t *testing.T) {
	_, err := New(duckReducer, WithEnhancer(ApplyMiddleware[[]duck](thunk, nil)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestApplyMiddleware_NilWrapper(t *testing.T) {
	broken := func(API[[]duck]) func(Dispatch) Dispatch { return nil }

	_, err := New(duckReducer, WithEnhancer(ApplyMiddleware[[]duck](broken)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestApplyMiddleware_NilDispatch(t *testing.T) {
	broken := func(API[[]duck]) func(Dispatch) Dispatch {
		return func(Dispatch) Dispatch { return nil }
	}

	_, err := New(duckReducer, WithEnhancer(ApplyMiddleware[[]duck](broken)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestApplyMiddleware_ListenersStillFire(t *testing.T) {
	store := newMiddlewareStore(t, thunk)
	fired := 0
	_, _ = store.Subscribe(func() { fired++ })

	_, _ = store.Dispatch(addRubberDucky())

	if fired != 1 {
		t.Errorf("expected 1 notification, got %d", fired)
	}
}

func TestComposeEnhancers_Order(t *testing.T) {
	var order []string
	named := func(name string) Enhancer[[]duck] {
		return func(next Creator[[]duck]) Creator[[]duck] {
			return func(reducer Reducer[[]duck], opts ...Option[[]duck]) (*Store[[]duck], error) {
				order = append(order, name)
				return next(reducer, opts...)
			}
		}
	}

	_, err := New(duckReducer, WithEnhancer(ComposeEnhancers(named("outer"), named("inner"))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !reflect.DeepEqual(order, []string{"outer", "inner"}) {
		t.Errorf("expected [outer inner], got %v", order)
	}
}

func TestComposeEnhancers_WithMiddleware(t *testing.T) {
	var events []string
	enhancer := ComposeEnhancers(
		ApplyMiddleware(tracer("a", &events)),
		ApplyMiddleware(tracer("b", &events)),
	)
	store, err := New(duckReducer, WithEnhancer(enhancer))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, _ = store.Dispatch(addRubberDucky())

	// The inner enhancer wraps first, so the outer chain runs first.
	want := []string{"a:before", "b:before", "b:after", "a:after"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestComposeEnhancers_Nil(t *testing.T) {
	_, err := New(duckReducer, WithEnhancer(ComposeEnhancers[[]duck](nil)))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
}
