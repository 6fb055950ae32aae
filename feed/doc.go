// Package feed turns an external document source into dispatched actions.
//
// A Watcher emits raw documents: an in-process Inbox, a FileInbox watched
// with fsnotify, or the Redis and NATS watchers in the subpackages. Each
// document is decoded with a Codec into one action or a list of actions and
// travels as a Batch through a pipz pipeline whose innermost step dispatches
// into a Dispatcher such as *cell.Store. Options add filtering, rate
// limiting, timeouts, retries, circuit breaking and error observation around
// that step.
//
// Stores are not safe for concurrent use, so a Feed never runs two
// dispatches at once, and without WithTimeout it dispatches on the caller's
// goroutine.
//
//	store, _ := cell.New(reducer)
//	f := feed.New(feed.NewFileInbox("inbox.yaml"), store,
//	    feed.WithRetry(3),
//	).Codec(feed.CodecFor("inbox.yaml"))
//	if err := f.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
package feed
