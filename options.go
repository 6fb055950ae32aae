package cell

import (
	"context"

	"github.com/zoobzio/clockz"
)

// Option configures store construction.
//
// Options are resolved once per call to New. When an enhancer is present the
// creator handed to it receives every resolved option except the enhancer, so
// the enhancer's call back into New builds the base store.
type Option[S any] func(*options[S])

type options[S any] struct {
	preloaded    S
	hasPreloaded bool
	enhancer     Enhancer[S]
	hasEnhancer  bool
	equal        func(prev, next S) bool
	hasEqual     bool
	name         string
	ctx          context.Context
	clock        clockz.Clock
	metrics      MetricsProvider
}

func defaultOptions[S any]() options[S] {
	return options[S]{
		ctx:   context.Background(),
		clock: clockz.RealClock,
	}
}

// WithPreloadedState sets the state handed to the reducer alongside the init
// action. Without it the reducer receives the zero value of S.
func WithPreloadedState[S any](state S) Option[S] {
	return func(o *options[S]) {
		o.preloaded = state
		o.hasPreloaded = true
	}
}

// WithEnhancer delegates construction to enhancer. New returns whatever
// enhancer(New)(reducer, ...) returns. A nil enhancer fails with ErrTypeMismatch.
func WithEnhancer[S any](enhancer Enhancer[S]) Option[S] {
	return func(o *options[S]) {
		o.enhancer = enhancer
		o.hasEnhancer = true
	}
}

// WithEquality overrides how a dispatch decides that the reducer returned the
// same state. Returning true suppresses the state swap and notifications.
//
// The default treats any two zero-capacity slices as the same, since Go
// does not give them distinct addresses. A reducer that signals a change by
// returning a fresh empty slice needs an equality that says otherwise.
func WithEquality[S any](equal func(prev, next S) bool) Option[S] {
	return func(o *options[S]) {
		o.equal = equal
		o.hasEqual = true
	}
}

// WithName labels the store in emitted signals. Default: a generated UUIDv7.
func WithName[S any](name string) Option[S] {
	return func(o *options[S]) {
		o.name = name
	}
}

// WithContext sets the context used when emitting signals.
// Default: context.Background().
func WithContext[S any](ctx context.Context) Option[S] {
	return func(o *options[S]) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithClock sets the clock used to time dispatches.
// Use this with clockz.FakeClock for deterministic metrics tests.
func WithClock[S any](clock clockz.Clock) Option[S] {
	return func(o *options[S]) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetrics sets a metrics provider for observability integration.
func WithMetrics[S any](provider MetricsProvider) Option[S] {
	return func(o *options[S]) {
		o.metrics = provider
	}
}

// resolved replays an already resolved option set, minus the enhancer.
func resolved[S any](o options[S]) Option[S] {
	o.enhancer = nil
	o.hasEnhancer = false
	return func(dst *options[S]) {
		*dst = o
	}
}
