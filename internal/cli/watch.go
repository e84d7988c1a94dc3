package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print service calls as they are requested",
		Long: `Subscribe to the service bus and print every service call, one per
line, until interrupted. With --format json each line is a JSON object.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd)
		},
	}
}

func runWatch(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()
	ctx := cmd.Context()

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	client, err := openBus(ctx, cfg)
	if err != nil {
		code := ErrCodeBus
		if !cfg.BusEnabled() {
			code = ErrCodeConfig
		}
		return formatter.Fail(code, ExitCommandError, "failed to connect to service bus", err)
	}
	defer client.Close()

	sub, err := client.SubscribeServiceCalls(ctx)
	if err != nil {
		return formatter.Fail(ErrCodeBus, ExitCommandError, "failed to subscribe", err)
	}
	defer sub.Close()

	logger.Info("watching service calls", "instance", cfg.Redis.Instance)

	w := cmd.OutOrStdout()
	encoder := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			logger.Warn("skipping service call", "error", err)
		case call, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if opts.Format == "json" {
				if err := encoder.Encode(call); err != nil {
					return err
				}
				continue
			}
			at := time.UnixMilli(call.RequestedAtMs).UTC().Format("2006-01-02T15:04:05.000Z07:00")
			fmt.Fprintf(w, "%s  %s.%s\n", at, call.Domain, call.Service)
		}
	}
}
