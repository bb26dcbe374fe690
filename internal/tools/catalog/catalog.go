package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/sportsapi"
	"github.com/abozbere2001-collab/Nabd6/internal/tools/pinfixtures"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"
)

func (ctx *Context) invalidate() error {
	if !ctx.Refresh {
		return nil
	}
	return ctx.Catalog.Invalidate(ctx)
}

// LsCountries prints the cached country list.
func LsCountries(ctx *Context) error {
	if err := ctx.invalidate(); err != nil {
		return fmt.Errorf("LsCountries: %w", err)
	}
	countries, err := ctx.Catalog.Countries(ctx)
	if err != nil {
		return fmt.Errorf("LsCountries: %w", err)
	}
	t := newTable(ctx, table.Row{"Name", "Code", "Flag"})
	for _, c := range countries {
		t.AppendRow(table.Row{c.Name, c.Code, c.Flag})
	}
	t.Render()
	return nil
}

// LsNationalTeams prints every national side.
func LsNationalTeams(ctx *Context) error {
	if err := ctx.invalidate(); err != nil {
		return fmt.Errorf("LsNationalTeams: %w", err)
	}
	teams, err := ctx.Catalog.NationalTeams(ctx)
	if err != nil {
		return fmt.Errorf("LsNationalTeams: %w", err)
	}
	t := newTable(ctx, table.Row{"ID", "Name", "Country", "Code"})
	for _, team := range teams {
		t.AppendRow(table.Row{team.ID, team.Name, team.Country, team.Code})
	}
	t.Render()
	return nil
}

// LsCompetitions prints the competitions catalog.
func LsCompetitions(ctx *Context) error {
	if err := ctx.invalidate(); err != nil {
		return fmt.Errorf("LsCompetitions: %w", err)
	}
	comps, err := ctx.Catalog.Competitions(ctx)
	if err != nil {
		return fmt.Errorf("LsCompetitions: %w", err)
	}
	t := newTable(ctx, table.Row{"League", "Name", "Country"})
	for _, c := range comps {
		t.AppendRow(table.Row{c.LeagueID, c.Name, c.CountryName})
	}
	t.Render()
	return nil
}

// Search looks teams and leagues up by name at the same time.
func Search(ctx *Context) error {
	var teams []sportsapi.TeamInfo
	var leagues []sportsapi.LeagueInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = ctx.API.SearchTeams(gctx, ctx.Query)
		return err
	})
	g.Go(func() error {
		var err error
		leagues, err = ctx.API.SearchLeagues(gctx, ctx.Query)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("Search: %w", err)
	}

	t := newTable(ctx, table.Row{"Kind", "ID", "Name", "Country"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	for _, info := range teams {
		kind := "club"
		if info.Team.National {
			kind = "national team"
		}
		t.AppendRow(table.Row{kind, info.Team.ID, info.Team.Name, info.Team.Country})
	}
	for _, info := range leagues {
		t.AppendRow(table.Row{"league", info.League.ID, info.League.Name, info.Country.Name})
	}
	t.Render()
	return nil
}

// Odds prints the match-winner odds of a fixture.
func Odds(ctx *Context) error {
	mo, ok, err := ctx.API.MatchWinnerOdds(ctx, ctx.FixtureID)
	if err != nil {
		return fmt.Errorf("Odds: %w", err)
	}
	if !ok {
		fmt.Fprintf(ctx.Out, "No match-winner odds from bookmaker %d for fixture %d\n", ctx.API.Bookmaker(), ctx.FixtureID)
		return nil
	}
	h, d, a := mo.Shares()
	t := newTable(ctx, table.Row{"Outcome", "Odd", "Implied"})
	t.AppendRow(table.Row{"home", fmt.Sprintf("%0.2f", mo.Home), fmt.Sprintf("%0.1f%%", h*100)})
	t.AppendRow(table.Row{"draw", fmt.Sprintf("%0.2f", mo.Draw), fmt.Sprintf("%0.1f%%", d*100)})
	t.AppendRow(table.Row{"away", fmt.Sprintf("%0.2f", mo.Away), fmt.Sprintf("%0.1f%%", a*100)})
	t.Render()
	return nil
}

// LsFixtures prints the fixtures in play, or those of a date.
func LsFixtures(ctx *Context) error {
	var fixtures []firestore.Fixture
	var err error
	if ctx.Live {
		fixtures, err = ctx.API.LiveFixtures(ctx)
	} else {
		fixtures, err = ctx.API.FixturesByDate(ctx, ctx.Date)
	}
	if err != nil {
		return fmt.Errorf("LsFixtures: %w", err)
	}
	pinfixtures.PrintFixtures(ctx.Out, fixtures)
	return nil
}

// WatchLive reprints the fixtures in play every Interval until the context is done. A fetch still running when
// the next one starts is cancelled and its result dropped.
func WatchLive(ctx *Context) error {
	var latest sportsapi.Latest[[]firestore.Fixture]
	var mu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()
	defer latest.Cancel()

	fetch := func(at time.Time) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fixtures, err := latest.Do(ctx, at.Format(time.RFC3339), func(c context.Context) ([]firestore.Fixture, error) {
				return ctx.API.LiveFixtures(c)
			})
			if errors.Is(err, sportsapi.ErrSuperseded) || ctx.Err() != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(ctx.Out, "%s: unable to fetch live fixtures: %v\n", at.Format(time.Kitchen), err)
				return
			}
			fmt.Fprintf(ctx.Out, "%s: %d fixtures in play\n", at.Format(time.Kitchen), len(fixtures))
			pinfixtures.PrintFixtures(ctx.Out, fixtures)
		}()
	}

	interval := ctx.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fetch(time.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case at := <-ticker.C:
			fetch(at)
		}
	}
}

func newTable(ctx *Context, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(ctx.Out)
	t.AppendHeader(header)
	t.SetStyle(table.StyleLight)
	return t
}
