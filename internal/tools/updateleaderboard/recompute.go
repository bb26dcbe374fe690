package updateleaderboard

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/leaderboard"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Recompute rescores every prediction on a finished pinned fixture and rebuilds the leaderboard.
func Recompute(ctx *Context) error {
	job, ok, err := firestore.GetJobState(ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("Recompute: %w", err)
	}
	if ok && job.Stale() {
		fmt.Fprintf(ctx.Out, "Previous run %s stopped after phase %d: %s\n", job.RunID, job.CompletedPhase, job.Error)
	}

	if !ctx.DryRun && !ctx.Force {
		yes, err := ctx.Confirm("Recomputing replaces every leaderboard entry. Continue?")
		if err != nil {
			return fmt.Errorf("Recompute: %w", err)
		}
		if !yes {
			fmt.Fprintln(ctx.Out, "Aborted.")
			return nil
		}
	}

	r := &leaderboard.Recomputer{
		Store:        ctx.Store,
		Logger:       ctx.Logger,
		BatchSize:    ctx.BatchSize,
		DryRun:       ctx.DryRun,
		DryRunOutput: ctx.Out,
		NewProgress: func(total int) leaderboard.Progress {
			if ctx.NoProgress {
				return progressbar.NewOptions(total, progressbar.OptionSetVisibility(false))
			}
			return progressbar.Default(int64(total), "scoring fixtures")
		},
	}
	report, err := r.Recompute(ctx)
	if err != nil {
		return fmt.Errorf("Recompute: %w", err)
	}
	if ctx.Logger != nil {
		ctx.Logger.Info("leaderboard recomputed",
			zap.String("run", report.RunID),
			zap.Int("finished", report.Finished),
			zap.Int("changed", report.Changed),
			zap.Int("users", report.Users))
	}

	fmt.Fprintf(ctx.Out, "Run %s: %d of %d pinned fixtures finished, %d predictions scored, %d changed, %d users, %d stale entries removed\n",
		report.RunID, report.Finished, report.Fixtures, report.Scored, report.Changed, report.Users, report.Removed)
	printStandings(ctx.Out, leaderboard.Top(report.Standings, ctx.Top), nil)
	return nil
}
