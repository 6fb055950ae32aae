package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoobzio/cell/feed"
	"github.com/zoobzio/cell/internal/pond"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	File    string
	Metrics bool
}

// ReplayResult holds the outcome of a replay.
type ReplayResult struct {
	Actions       int64       `json:"actions"`
	Notifications int         `json:"notifications"`
	Ducks         []pond.Duck `json:"ducks"`
	Metrics       string      `json:"metrics,omitempty"` // Prometheus text exposition, with --metrics
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Dispatch an action document against a fresh pond",
		Long: `Dispatch every action of a JSON or YAML document, in order, against a
fresh pond store and print the resulting pond.

The document holds one action or a list of actions. Replay stops at the
first rejected action.

Exit codes:
  0 - All actions dispatched
  1 - The document failed to decode or an action was rejected
  2 - Command error (file not found, etc.)

Examples:
  pond replay --file actions.yaml
  pond replay --file actions.json --format json --metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "path to the action document (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print store metrics after the replay")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read action document", err)
	}

	cfg := pond.Config{Log: newLogger(cmd.ErrOrStderr(), opts.RootOptions)}
	if opts.Metrics {
		cfg.Metrics = pond.NewMetrics("pond")
	}
	store, err := pond.NewStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create store", err)
	}

	var notifications int
	unsubscribe, err := store.Subscribe(func() { notifications++ })
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to subscribe", err)
	}
	defer unsubscribe()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f := feed.New(feed.NewFileInbox(opts.File), store).Codec(feed.CodecFor(opts.File))
	if err := f.Apply(ctx, data); err != nil {
		_ = out.Error(failureCode(err), err.Error())
		return WrapExitError(ExitFailure, fmt.Sprintf("replay stopped after %d actions", f.Dispatched()), err)
	}

	result := ReplayResult{
		Actions:       f.Dispatched(),
		Notifications: notifications,
		Ducks:         store.GetState(),
	}
	if opts.Format == "json" {
		if opts.Metrics {
			var buf bytes.Buffer
			if err := cfg.Metrics.WriteText(&buf); err != nil {
				return WrapExitError(ExitCommandError, "failed to write metrics", err)
			}
			result.Metrics = buf.String()
		}
		return out.Success(result)
	}

	if err := out.Success(fmt.Sprintf("%d actions, %d notifications", result.Actions, result.Notifications)); err != nil {
		return err
	}
	if err := out.Pond(result.Ducks); err != nil {
		return err
	}

	if opts.Metrics {
		if err := cfg.Metrics.WriteText(cmd.OutOrStdout()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}
	return nil
}
