// Package cell provides a unidirectional state container.
//
// A Store holds one state value. The only way to change it is to dispatch an
// Action; the store hands the current state and the action to a pure Reducer
// and keeps whatever the reducer returns. Listeners registered with Subscribe
// run synchronously after every dispatch that changed the state.
//
// # Actions
//
// An Action is a record with a mandatory "type" entry:
//
//	cell.Action{"type": "ADD_DUCK", "duck": Duck{Name: "Rex"}}
//
// Only absence of "type" makes an action invalid. Falsy values such as nil,
// false or "" are accepted.
//
// # Reducers
//
// A reducer returns the state it was given to signal that nothing changed.
// Listeners only fire when the returned state differs by reference: slices,
// maps and pointers compare by address, plain values by ==. Use WithEquality
// to override this. Zero-capacity slices have no address of their own, so a
// reducer replacing one empty slice with a fresh make([]T, 0) is seen as
// returning the same state.
//
//	func duckReducer(ducks []Duck, action cell.Action) []Duck {
//	    if ducks == nil {
//	        ducks = initialDucks
//	    }
//	    switch action["type"] {
//	    case "ADD_DUCK":
//	        return append(slices.Clip(ducks), action["duck"].(Duck))
//	    default:
//	        return ducks
//	    }
//	}
//
// # Enhancers and Middleware
//
// An Enhancer wraps store construction. ApplyMiddleware builds one from
// Middleware functions, each wrapping dispatch:
//
//	store, err := cell.New(duckReducer,
//	    cell.WithEnhancer(cell.ApplyMiddleware(thunk, logger)),
//	)
//
// Middleware receives an API whose Dispatch always enters the full chain,
// so actions dispatched from inside a middleware pass through every
// middleware again.
//
// # Compose
//
// Compose chains functions right to left and is what ApplyMiddleware uses
// to stack dispatch wrappers:
//
//	cell.Compose(square, double, add)(1, 2, 3) // square(double(add(1, 2, 3)))
//
// # Concurrency
//
// Stores are synchronous and not safe for concurrent use. Dispatch runs the
// reducer and every listener before returning.
//
// # Observability
//
// Stores emit capitan signals (StoreCreated, ActionDispatched, StateChanged,
// DispatchRejected, ...) and report to an optional MetricsProvider. Neither
// affects dispatch results.
package cell
