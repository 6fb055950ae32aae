package cell

import "github.com/zoobzio/capitan"

// Store lifecycle signals.
var (
	// StoreCreated is emitted when a base store finishes initialising.
	StoreCreated = capitan.NewSignal(
		"cell.store.created",
		"Store initialised from reducer",
	)

	// MiddlewareApplied is emitted when a middleware chain replaces dispatch.
	MiddlewareApplied = capitan.NewSignal(
		"cell.store.middleware.applied",
		"Dispatch wrapped by middleware chain",
	)

	// ReducerReplaced is emitted when the active reducer is swapped.
	ReducerReplaced = capitan.NewSignal(
		"cell.store.reducer.replaced",
		"Reducer replaced",
	)
)

// Dispatch signals.
var (
	// ActionDispatched is emitted after the reducer accepted an action,
	// whether or not the state changed.
	ActionDispatched = capitan.NewSignal(
		"cell.action.dispatched",
		"Action reduced",
	)

	// DispatchRejected is emitted when an action fails validation.
	DispatchRejected = capitan.NewSignal(
		"cell.action.rejected",
		"Action rejected before reduction",
	)

	// StateChanged is emitted when a dispatch replaced the state, before
	// listeners are notified.
	StateChanged = capitan.NewSignal(
		"cell.state.changed",
		"State replaced",
	)
)

// Subscription signals.
var (
	// ListenerSubscribed is emitted when a listener registration is added.
	ListenerSubscribed = capitan.NewSignal(
		"cell.listener.subscribed",
		"Listener registered",
	)

	// ListenerUnsubscribed is emitted when a listener registration is removed.
	ListenerUnsubscribed = capitan.NewSignal(
		"cell.listener.unsubscribed",
		"Listener removed",
	)
)
