package cell

import (
	"fmt"

	"github.com/zoobzio/capitan"
)

// API is the capability set handed to middleware. Both members forward to
// the live store: Dispatch always enters the fully wrapped chain, so a
// middleware that dispatches from inside its wrapper sends the action back
// through every middleware.
type API[S any] struct {
	GetState func() S
	Dispatch Dispatch
}

// Middleware wraps dispatch. It receives the store API once, when the chain
// is built, and returns a wrapper that takes the next dispatch in the chain.
//
//	logger := func(api cell.API[State]) func(cell.Dispatch) cell.Dispatch {
//	    return func(next cell.Dispatch) cell.Dispatch {
//	        return func(action any) (any, error) {
//	            result, err := next(action)
//	            log.Printf("%v -> %v", action, api.GetState())
//	            return result, err
//	        }
//	    }
//	}
type Middleware[S any] func(api API[S]) func(next Dispatch) Dispatch

// ApplyMiddleware returns an enhancer that builds the base store and then
// replaces its dispatch with the composition of middlewares.
//
// Middlewares run in argument order: with ApplyMiddleware(m1, m2), a dispatch
// enters m1's wrapper, which calls into m2's, which calls the store's own
// dispatch. A nil middleware, or a middleware returning a nil wrapper, fails
// construction with ErrTypeMismatch.
//
//	store, err := cell.New(reducer, cell.WithEnhancer(cell.ApplyMiddleware(thunk, logger)))
func ApplyMiddleware[S any](middlewares ...Middleware[S]) Enhancer[S] {
	return func(next Creator[S]) Creator[S] {
		return func(reducer Reducer[S], opts ...Option[S]) (*Store[S], error) {
			store, err := next(reducer, opts...)
			if err != nil {
				return nil, err
			}

			api := API[S]{
				GetState: func() S { return store.GetState() },
				Dispatch: func(action any) (any, error) { return store.Dispatch(action) },
			}

			chain := make([]Func[Dispatch], 0, len(middlewares))
			for i, mw := range middlewares {
				if mw == nil {
					return nil, fmt.Errorf("%w: middleware %d is nil", ErrTypeMismatch, i)
				}
				wrap := mw(api)
				if wrap == nil {
					return nil, fmt.Errorf("%w: middleware %d returned a nil wrapper", ErrTypeMismatch, i)
				}
				chain = append(chain, Unary(wrap))
			}

			dispatch := Compose(chain...)(store.dispatch)
			if dispatch == nil {
				return nil, fmt.Errorf("%w: middleware chain produced a nil dispatch", ErrTypeMismatch)
			}
			store.dispatch = dispatch

			capitan.Emit(store.ctx, MiddlewareApplied,
				KeyStore.Field(store.name),
				KeyMiddleware.Field(len(chain)),
			)

			return store, nil
		}
	}
}

// ComposeEnhancers combines enhancers into one. The leftmost enhancer is the
// outermost: it sees the creator produced by the enhancers to its right.
func ComposeEnhancers[S any](enhancers ...Enhancer[S]) Enhancer[S] {
	chain := make([]Func[Creator[S]], 0, len(enhancers))
	for i, e := range enhancers {
		if e == nil {
			index := i
			return func(Creator[S]) Creator[S] {
				return func(Reducer[S], ...Option[S]) (*Store[S], error) {
					return nil, fmt.Errorf("%w: enhancer %d is nil", ErrTypeMismatch, index)
				}
			}
		}
		chain = append(chain, Unary(func(c Creator[S]) Creator[S] { return e(c) }))
	}
	composed := Compose(chain...)
	return func(next Creator[S]) Creator[S] {
		return composed(next)
	}
}
