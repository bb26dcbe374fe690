package editfavorites

import (
	"fmt"
	"io"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/jedib0t/go-pretty/v6/table"
)

// LsFavorites prints the favorites of the context's identity.
func LsFavorites(ctx *Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return fmt.Errorf("LsFavorites: %w", err)
	}
	defer s.close()

	fmt.Fprintf(ctx.Out, "Favorites of %s (%s)\n", ctx.Identity(), s.StoreName())
	printFavorites(ctx.Out, s.Favorites(), s.IsCrowned)
	return nil
}

// printFavorites renders f. Favorite teams for which crowned reports true are marked.
func printFavorites(w io.Writer, f firestore.Favorites, crowned func(id int) bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Kind", "ID", "Name", "Detail"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	for _, k := range firestore.SortedKeys(f.Teams) {
		team := f.Teams[k]
		detail := string(team.Type)
		if crowned(team.TeamID) {
			detail += " (crowned)"
		}
		t.AppendRow(table.Row{"team", team.TeamID, team.Name, detail})
	}
	for _, k := range firestore.SortedKeys(f.Leagues) {
		league := f.Leagues[k]
		notify := "notifications off"
		if league.Notifies() {
			notify = "notifications on"
		}
		t.AppendRow(table.Row{"league", league.LeagueID, league.Name, notify})
	}
	for _, k := range firestore.SortedKeys(f.CrownedTeams) {
		crowned := f.CrownedTeams[k]
		t.AppendRow(table.Row{"crowned", crowned.TeamID, crowned.Name, crowned.Note})
	}
	t.AppendFooter(table.Row{"news", "", "", fmt.Sprintf("%t", f.NewsEnabled())})
	t.SetStyle(table.StyleLight)
	t.Render()
}
