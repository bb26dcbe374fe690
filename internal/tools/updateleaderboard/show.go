package updateleaderboard

import (
	"fmt"
	"io"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/leaderboard"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Show prints the top of the leaderboard and, if a user is given, that user's standing.
func Show(ctx *Context) error {
	top := ctx.Top
	if top <= 0 {
		top = leaderboard.DefaultTop
	}
	view, err := leaderboard.Read(ctx, ctx.Store, top, ctx.User)
	if err != nil {
		return fmt.Errorf("Show: %w", err)
	}
	if ctx.User != "" && view.Mine == nil {
		fmt.Fprintf(ctx.Out, "%s has no leaderboard entry\n", ctx.User)
	}
	printStandings(ctx.Out, view.Top, view.Mine)

	if ctx.Stats {
		scores, err := firestore.GetLeaderboard(ctx, ctx.Store)
		if err != nil {
			return fmt.Errorf("Show: %w", err)
		}
		fmt.Fprintln(ctx.Out, leaderboard.Summarize(scores))
	}

	job, ok, err := firestore.GetJobState(ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("Show: %w", err)
	}
	if ok && job.Stale() {
		fmt.Fprintf(ctx.Out, "WARNING: the leaderboard may be stale, run %s stopped after phase %d\n", job.RunID, job.CompletedPhase)
	}
	return nil
}

// printStandings renders ranked entries, followed by mine when it falls outside them.
func printStandings(w io.Writer, ranked []firestore.UserScore, mine *firestore.UserScore) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Rank", "User", "Name", "Points"})
	shown := false
	for _, s := range ranked {
		if mine != nil && s.UserID == mine.UserID {
			shown = true
		}
		t.AppendRow(table.Row{s.Rank, s.UserID, s.UserName, s.TotalPoints})
	}
	if mine != nil && !shown {
		t.AppendSeparator()
		t.AppendRow(table.Row{mine.Rank, mine.UserID, mine.UserName, mine.TotalPoints})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
