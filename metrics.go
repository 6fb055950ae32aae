package cell

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key store events.
// Callbacks run synchronously inside the store operation that triggered them.
type MetricsProvider interface {
	// OnDispatch is called after the reducer ran for an action.
	// Duration covers the reducer and listener notification.
	OnDispatch(actionType string, changed bool, duration time.Duration)

	// OnDispatchRejected is called when an action fails validation.
	// Reason is "type_mismatch" or "invalid_action".
	OnDispatchRejected(reason string)

	// OnListenersChanged is called with the new registration count after a
	// subscribe or an effective unsubscribe.
	OnListenersChanged(count int)

	// OnReducerReplaced is called after ReplaceReducer swapped the reducer.
	OnReducerReplaced()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnDispatch(_ string, _ bool, _ time.Duration) {}
func (NoOpMetricsProvider) OnDispatchRejected(_ string)                  {}
func (NoOpMetricsProvider) OnListenersChanged(_ int)                     {}
func (NoOpMetricsProvider) OnReducerReplaced()                           {}
