package feed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zoobzio/pipz"

	"github.com/zoobzio/cell"
)

// Batch is one decoded document travelling through the feed's pipeline.
type Batch struct {
	Seq     int64         // sequence number of the document, from 1
	Actions []cell.Action // decoded actions, in document order
	Raw     []byte        // the document as received

	applied   atomic.Int64
	delivered atomic.Bool
	rejected  atomic.Pointer[DispatchError]
}

// Applied returns how many of the batch's actions the target accepted.
func (b *Batch) Applied() int {
	return int(b.applied.Load())
}

// Option configures the pipeline a Feed runs every decoded document
// through. The innermost step dispatches the batch's actions; each option
// wraps what the options before it built.
type Option func(pipz.Chainable[*Batch]) pipz.Chainable[*Batch]

func buildPipeline(terminal pipz.Chainable[*Batch], opts []Option) pipz.Chainable[*Batch] {
	pipeline := terminal
	for _, opt := range opts {
		if opt != nil {
			pipeline = opt(pipeline)
		}
	}
	return pipeline
}

// WithFilter only lets batches matching keep through. Other batches are
// skipped: nothing is dispatched and the document does not count as a
// failure.
func WithFilter(keep func(context.Context, *Batch) bool) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewFilter("filter", keep, p)
	}
}

// WithRateLimit limits batches to rate per second with the given burst.
// Batches over the limit wait for a token.
func WithRateLimit(rate float64, burst int) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		limiter := pipz.NewRateLimiter[*Batch]("rate-limit", rate, burst)
		return pipz.NewSequence("rate-limited", limiter, p)
	}
}

// WithRateLimitDrop is WithRateLimit that fails batches over the limit
// instead of waiting.
func WithRateLimitDrop(rate float64, burst int) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		limiter := pipz.NewRateLimiter[*Batch]("rate-limit", rate, burst).SetMode("drop")
		return pipz.NewSequence("rate-limited", limiter, p)
	}
}

// WithTimeout fails a batch that is not done within d. The dispatch step
// stops at the next action boundary; an action already inside the target
// finishes on the pipeline's goroutine.
func WithTimeout(d time.Duration) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewTimeout("timeout", p, d)
	}
}

// WithRetry retries a failed batch up to attempts times. A retried batch
// resumes after the actions already accepted, so no action is dispatched
// twice once it succeeded.
func WithRetry(attempts int) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewRetry("retry", p, attempts)
	}
}

// WithBackoff is WithRetry with delays of baseDelay, 2*baseDelay, ...
// between attempts.
func WithBackoff(attempts int, baseDelay time.Duration) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewBackoff("backoff", p, attempts, baseDelay)
	}
}

// WithCircuitBreaker rejects batches without dispatching once failures
// consecutive batches failed, until recovery has passed.
func WithCircuitBreaker(failures int, recovery time.Duration) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewCircuitBreaker("circuit-breaker", p, failures, recovery)
	}
}

// WithErrorHandler passes every pipeline failure to handler. The failure
// still propagates.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*Batch]]) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		return pipz.NewHandle("error-handler", p, handler)
	}
}

// WithMiddleware runs processors, in order, before the wrapped pipeline.
func WithMiddleware(processors ...pipz.Chainable[*Batch]) Option {
	return func(p pipz.Chainable[*Batch]) pipz.Chainable[*Batch] {
		all := make([]pipz.Chainable[*Batch], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence("middleware", all...)
	}
}

// UseEffect creates a processor for WithMiddleware that observes a batch.
// An error fails the batch before anything is dispatched.
func UseEffect(name string, fn func(context.Context, *Batch) error) pipz.Chainable[*Batch] {
	return pipz.Effect(pipz.Name(name), fn)
}
