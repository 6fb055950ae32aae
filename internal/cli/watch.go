package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	natsgo "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/cell/feed"
	"github.com/zoobzio/cell/feed/nats"
	"github.com/zoobzio/cell/feed/redis"
	"github.com/zoobzio/cell/internal/pond"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	File        string
	RedisAddr   string
	RedisKey    string
	NATSURL     string
	NATSSubject string
	Codec       string // "" picks from the file extension, else "json" | "yaml"
	Timeout     time.Duration
	Drain       bool

	// Pipeline
	RateLimit   float64 // documents per second, 0 disables
	Burst       int
	Retry       int
	DocTimeout  time.Duration
	MaxActions  int // documents with more actions are skipped, 0 disables
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Dispatch actions arriving on an inbox",
		Long: `Watch an inbox and dispatch the actions of every document against a
single long-lived pond store. The pond is printed after each change.

The inbox is one of a file (every write is a document), a Redis list
(every pushed element is a document) or a NATS subject (every message is a
document).

Every document passes through a pipeline before dispatch: optional rate
limiting, per-document timeout, retries and a size filter. Rejected actions,
undecodable documents and pipeline failures are reported and watching
continues.

Exit codes:
  0 - Stopped by signal or --timeout
  2 - Command error (file not found, etc.)

Examples:
  pond watch --file inbox.json
  pond watch --file inbox.yaml --format json --timeout 1m
  pond watch --redis-addr localhost:6379 --redis-key pond:inbox
  pond watch --nats-url nats://localhost:4222 --codec yaml
  pond watch --file inbox.json --drain --rate-limit 5 --retry 3 --doc-timeout 2s`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to the inbox file")
	cmd.Flags().StringVar(&opts.RedisAddr, "redis-addr", "", "address of a Redis server holding the inbox list")
	cmd.Flags().StringVar(&opts.RedisKey, "redis-key", "pond:inbox", "Redis list key")
	cmd.Flags().StringVar(&opts.NATSURL, "nats-url", "", "URL of a NATS server carrying the inbox subject")
	cmd.Flags().StringVar(&opts.NATSSubject, "nats-subject", "pond.actions", "NATS subject")
	cmd.Flags().StringVar(&opts.Codec, "codec", "", "document codec (json|yaml); defaults from the file extension, else json")
	cmd.MarkFlagsMutuallyExclusive("file", "redis-addr", "nats-url")
	cmd.MarkFlagsOneRequired("file", "redis-addr", "nats-url")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "stop after this long (0 watches until interrupted)")
	cmd.Flags().BoolVar(&opts.Drain, "drain", false, "truncate the inbox file after reading each document")
	cmd.Flags().Float64Var(&opts.RateLimit, "rate-limit", 0, "maximum documents per second (0 disables)")
	cmd.Flags().IntVar(&opts.Burst, "burst", 1, "documents allowed at once under --rate-limit")
	cmd.Flags().IntVar(&opts.Retry, "retry", 0, "attempts per document before it is reported as failed (0 disables)")
	cmd.Flags().DurationVar(&opts.DocTimeout, "doc-timeout", 0, "time limit per document (0 disables)")
	cmd.Flags().IntVar(&opts.MaxActions, "max-actions", 0, "skip documents holding more actions (0 disables)")
	cmd.MarkFlagsMutuallyExclusive("drain", "redis-addr")
	cmd.MarkFlagsMutuallyExclusive("drain", "nats-url")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log := newLogger(cmd.ErrOrStderr(), opts.RootOptions)
	store, err := pond.NewStore(pond.Config{Log: log})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create store", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	unsubscribe, err := store.Subscribe(func() {
		if err := out.Pond(store.GetState()); err != nil {
			log.WithError(err).Error("failed to write pond")
		}
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to subscribe", err)
	}
	defer unsubscribe()

	codec, err := opts.codec()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid codec", err)
	}
	watcher, closeSource, err := opts.watcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open inbox", err)
	}
	defer closeSource()

	pipeline, err := opts.pipeline(log)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid pipeline", err)
	}

	f := feed.New(watcher, store, pipeline...).
		Codec(codec).
		OnError(func(err error) {
			_ = out.Error(failureCode(err), err.Error())
		})

	if err := f.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch inbox", err)
	}

	err = f.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return WrapExitError(ExitCommandError, "watch failed", err)
}

func (o *WatchOptions) codec() (feed.Codec, error) {
	switch o.Codec {
	case "":
		if o.File != "" {
			return feed.CodecFor(o.File), nil
		}
		return feed.JSONCodec{}, nil
	case "json":
		return feed.JSONCodec{}, nil
	case "yaml":
		return feed.YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q: must be json or yaml", o.Codec)
	}
}

// watcher builds the inbox watcher and a func releasing its connection.
func (o *WatchOptions) watcher() (feed.Watcher, func(), error) {
	switch {
	case o.RedisAddr != "":
		client := goredis.NewClient(&goredis.Options{Addr: o.RedisAddr})
		return redis.New(client, o.RedisKey), func() { _ = client.Close() }, nil
	case o.NATSURL != "":
		nc, err := natsgo.Connect(o.NATSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to %s: %w", o.NATSURL, err)
		}
		return nats.New(nc, o.NATSSubject), nc.Close, nil
	default:
		inbox := feed.NewFileInbox(o.File)
		if o.Drain {
			inbox.Drain()
		}
		return inbox, func() {}, nil
	}
}

// pipeline turns the pipeline flags into feed options. Each attempt is
// timed, retries share one rate limit token, and the size filter sits
// outermost so skipped documents use none.
func (o *WatchOptions) pipeline(log logrus.FieldLogger) ([]feed.Option, error) {
	if o.RateLimit < 0 || o.Burst < 1 || o.Retry < 0 || o.DocTimeout < 0 || o.MaxActions < 0 {
		return nil, errors.New("pipeline flags must not be negative and --burst must be at least 1")
	}

	var opts []feed.Option
	if o.DocTimeout > 0 {
		opts = append(opts, feed.WithTimeout(o.DocTimeout))
	}
	if o.Retry > 0 {
		opts = append(opts, feed.WithRetry(o.Retry))
	}
	if o.RateLimit > 0 {
		opts = append(opts, feed.WithRateLimit(o.RateLimit, o.Burst))
	}
	opts = append(opts, feed.WithErrorHandler(pipz.Effect("log", func(_ context.Context, e *pipz.Error[*feed.Batch]) error {
		log.WithFields(logrus.Fields{
			"document": e.InputData.Seq,
			"applied":  e.InputData.Applied(),
		}).WithError(e.Err).Debug("document failed")
		return nil
	})))
	if o.MaxActions > 0 {
		limit := o.MaxActions
		opts = append(opts, feed.WithFilter(func(_ context.Context, b *feed.Batch) bool {
			return len(b.Actions) <= limit
		}))
	}
	return opts, nil
}
