package main

import (
	"time"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	wsURL    string
	grpcAddr string
	timeout  time.Duration
	noColor  bool
}

// NewRootCmd builds the tablectl command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "tablectl",
		Short:         "Watch and operate a live baccarat table",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if opts.noColor {
				disableStyling()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.wsURL, "ws", "ws://localhost:6789/ws", "table server WebSocket URL")
	flags.StringVar(&opts.grpcAddr, "grpc", "localhost:6790", "table server gRPC address")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for a single request")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newWatchCmd(opts),
		newSendCmd(opts),
		newStateCmd(opts),
		newStatsCmd(opts),
		newHistoryCmd(opts),
		newReplayCmd(),
	)
	return root
}
