package updateleaderboard

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/leaderboard"
)

// Export writes the ranked leaderboard as a spreadsheet to a local path or gs:// URL.
func Export(ctx *Context) error {
	scores, err := firestore.GetLeaderboard(ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("Export: %w", err)
	}
	ranked := leaderboard.Rank(scores)
	if ctx.DryRun {
		fmt.Fprintf(ctx.Out, "DRY RUN: would write %d leaderboard entries to %s\n", len(ranked), ctx.Output)
		return nil
	}

	w, err := leaderboard.OpenWriter(ctx, ctx.Output)
	if err != nil {
		return fmt.Errorf("Export: unable to open %s: %w", ctx.Output, err)
	}
	if err := leaderboard.Export(w, ranked); err != nil {
		w.Close()
		return fmt.Errorf("Export: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Export: unable to close %s: %w", ctx.Output, err)
	}
	fmt.Fprintf(ctx.Out, "Wrote %d leaderboard entries to %s\n", len(ranked), ctx.Output)
	return nil
}
