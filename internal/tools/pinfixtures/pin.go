package pinfixtures

import (
	"fmt"
	"io"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/predictions"
	"github.com/abozbere2001-collab/Nabd6/internal/scoring"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PinFixture fetches a fixture and opens it for predictions.
func PinFixture(ctx *Context) error {
	f, err := ctx.API.FixtureByID(ctx, ctx.FixtureID)
	if err != nil {
		return fmt.Errorf("PinFixture: unable to fetch fixture %d: %w", ctx.FixtureID, err)
	}
	if ctx.DryRun {
		fmt.Fprintf(ctx.Out, "DRY RUN: would pin fixture\n%s\n", f)
		return nil
	}
	if err := predictions.Pin(ctx, ctx.Store, f); err != nil {
		return fmt.Errorf("PinFixture: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Pinned %s\n", describe(f))
	return nil
}

// UnpinFixture closes a fixture for predictions.
func UnpinFixture(ctx *Context) error {
	if ctx.DryRun {
		fmt.Fprintf(ctx.Out, "DRY RUN: would unpin fixture %d\n", ctx.FixtureID)
		return nil
	}
	if err := predictions.Unpin(ctx, ctx.Store, ctx.FixtureID); err != nil {
		return fmt.Errorf("UnpinFixture: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Unpinned fixture %d\n", ctx.FixtureID)
	return nil
}

// TogglePinFixture pins an unpinned fixture and unpins a pinned one.
func TogglePinFixture(ctx *Context) error {
	pinned, err := predictions.IsPinned(ctx, ctx.Store, ctx.FixtureID)
	if err != nil {
		return fmt.Errorf("TogglePinFixture: %w", err)
	}
	if pinned {
		return UnpinFixture(ctx)
	}
	return PinFixture(ctx)
}

// LsPinned prints every pinned fixture in kickoff order.
func LsPinned(ctx *Context) error {
	fixtures, err := predictions.ListPinned(ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("LsPinned: %w", err)
	}
	PrintFixtures(ctx.Out, fixtures)
	return nil
}

// RefreshPinned re-fetches unfinished pinned fixtures so their results can be scored.
func RefreshPinned(ctx *Context) error {
	if ctx.DryRun {
		fixtures, err := predictions.ListPinned(ctx, ctx.Store)
		if err != nil {
			return fmt.Errorf("RefreshPinned: %w", err)
		}
		for _, f := range fixtures {
			if !scoring.IsFinished(f.Fixture.Status.Short) {
				fmt.Fprintf(ctx.Out, "DRY RUN: would refresh %s\n", describe(f))
			}
		}
		return nil
	}
	n, err := predictions.Refresh(ctx, ctx.Store, ctx.API, ctx.Logger)
	if err != nil {
		return fmt.Errorf("RefreshPinned: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Refreshed %d pinned fixtures\n", n)
	return nil
}

func describe(f firestore.Fixture) string {
	return fmt.Sprintf("%d: %s vs %s (%s)", f.Fixture.ID, f.Teams.Home.Name, f.Teams.Away.Name, f.Fixture.Status.Short)
}

// PrintFixtures renders fixtures as a table.
func PrintFixtures(w io.Writer, fixtures []firestore.Fixture) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Kickoff", "League", "Home", "Away", "Score", "Status"})
	for _, f := range fixtures {
		score := "-"
		if f.Goals.Home != nil && f.Goals.Away != nil {
			score = fmt.Sprintf("%d-%d", *f.Goals.Home, *f.Goals.Away)
		}
		t.AppendRow(table.Row{
			f.Fixture.ID,
			f.Kickoff().Format(time.RFC3339),
			f.League.Name,
			f.Teams.Home.Name,
			f.Teams.Away.Name,
			score,
			fmt.Sprintf("%s (%s)", f.Fixture.Status.Short, scoring.Classify(f.Fixture.Status.Short)),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
