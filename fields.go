package cell

import "github.com/zoobzio/capitan"

// Field keys for store events.
var (
	// KeyStore is the store name.
	KeyStore = capitan.NewStringKey("store")

	// KeyActionType is the rendered discriminant of the dispatched action.
	KeyActionType = capitan.NewStringKey("action_type")

	// KeyListeners is the number of listeners notified or registered.
	KeyListeners = capitan.NewIntKey("listeners")

	// KeyMiddleware is the length of an applied middleware chain.
	KeyMiddleware = capitan.NewIntKey("middleware")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDuration is the time spent in a dispatch.
	KeyDuration = capitan.NewDurationKey("duration")
)
