package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Step through a saved round journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := game.LoadJournalFile(args[0])
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), journal, step, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&step, "step", 0, "delay between snapshots")
	return cmd
}

func runReplay(ctx context.Context, j *game.RoundJournal, step time.Duration, out io.Writer) error {
	fmt.Fprintln(out, pterm.DefaultSection.Sprintf("Round %d: %d snapshots", j.Round, len(j.States)))

	for i, s := range j.States {
		if i > 0 {
			if err := pause(ctx, step); err != nil {
				return err
			}
		}
		view, err := renderState(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%d/%d] version %d\n%s", i+1, len(j.States), s.Version, view)
	}

	if j.Result == nil {
		fmt.Fprintln(out, pterm.Warning.Sprint("round was not scored"))
		return nil
	}
	r := j.Result
	fmt.Fprintln(out, pterm.Success.Sprintf("winner %s, %d-%d (player %s, banker %s)",
		r.Winner, r.PlayerTotal, r.BankerTotal, handText(r.PlayerCards), handText(r.BankerCards)))
	return nil
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
