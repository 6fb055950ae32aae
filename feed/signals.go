package feed

import "github.com/zoobzio/capitan"

// Feed lifecycle signals.
var (
	// FeedStarted is emitted when a Feed begins watching its source.
	FeedStarted = capitan.NewSignal(
		"cell.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when Run returns.
	FeedStopped = capitan.NewSignal(
		"cell.feed.stopped",
		"Feed watching stopped",
	)

	// FeedStateChanged is emitted when the feed moves between states.
	FeedStateChanged = capitan.NewSignal(
		"cell.feed.state.changed",
		"Feed state transition",
	)
)

// Batch processing signals.
var (
	// FeedBatchReceived is emitted when a document decoded successfully.
	FeedBatchReceived = capitan.NewSignal(
		"cell.feed.batch.received",
		"Action document decoded",
	)

	// FeedDecodeFailed is emitted when a document could not be decoded.
	FeedDecodeFailed = capitan.NewSignal(
		"cell.feed.decode.failed",
		"Action document decode failed",
	)

	// FeedDispatchFailed is emitted when the target rejected an action.
	FeedDispatchFailed = capitan.NewSignal(
		"cell.feed.dispatch.failed",
		"Action dispatch failed",
	)

	// FeedPipelineFailed is emitted when a pipeline option stopped a
	// document, such as a timeout, a dropped rate limit or an open circuit.
	FeedPipelineFailed = capitan.NewSignal(
		"cell.feed.pipeline.failed",
		"Action document stopped by the pipeline",
	)

	// FeedBatchSkipped is emitted when a filter held a document back.
	FeedBatchSkipped = capitan.NewSignal(
		"cell.feed.batch.skipped",
		"Action document skipped by filter",
	)
)

// Field keys for feed events.
var (
	// KeyWatcherType is the type name of the watcher implementation.
	KeyWatcherType = capitan.NewStringKey("watcher_type")

	// KeyContentType is the codec MIME type.
	KeyContentType = capitan.NewStringKey("content_type")

	// KeyDocument is the sequence number of a document.
	KeyDocument = capitan.NewIntKey("document")

	// KeyStage is the stage at which a document failed.
	KeyStage = capitan.NewStringKey("stage")

	// KeyActions is the number of actions in a batch.
	KeyActions = capitan.NewIntKey("actions")

	// KeyOldState is the state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")
)
