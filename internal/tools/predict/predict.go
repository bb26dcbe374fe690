package predict

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/predictions"
	"github.com/jedib0t/go-pretty/v6/table"
)

// SavePrediction records the context's scoreline for a pinned fixture on behalf of a user.
func SavePrediction(ctx *Context) error {
	p, err := predictions.Save(ctx, ctx.Store, ctx.UID, ctx.FixtureID, ctx.Home, ctx.Away, ctx.Now())
	if err != nil {
		return fmt.Errorf("SavePrediction: %w", err)
	}
	fmt.Fprintln(ctx.Out, p)
	return nil
}

// LsPredictions prints a user's predictions on pinned fixtures next to the fixtures' results.
func LsPredictions(ctx *Context) error {
	fixtures, err := predictions.ListPinned(ctx, ctx.Store)
	if err != nil {
		return fmt.Errorf("LsPredictions: %w", err)
	}
	preds, err := predictions.UserPredictions(ctx, ctx.Store, ctx.UID)
	if err != nil {
		return fmt.Errorf("LsPredictions: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(ctx.Out)
	t.AppendHeader(table.Row{"Fixture", "Match", "Prediction", "Result", "Points"})
	total := 0
	for _, f := range fixtures {
		p, ok := preds[f.Fixture.ID]
		if !ok {
			continue
		}
		total += p.Points
		t.AppendRow(table.Row{
			f.Fixture.ID,
			fmt.Sprintf("%s vs %s", f.Teams.Home.Name, f.Teams.Away.Name),
			fmt.Sprintf("%d-%d", p.HomeGoals, p.AwayGoals),
			result(f),
			p.Points,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", total})
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}

func result(f firestore.Fixture) string {
	if f.Goals.Home == nil || f.Goals.Away == nil {
		return f.Fixture.Status.Short
	}
	return fmt.Sprintf("%d-%d (%s)", *f.Goals.Home, *f.Goals.Away, f.Fixture.Status.Short)
}
