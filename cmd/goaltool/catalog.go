package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/sportsapi"
	"github.com/abozbere2001-collab/Nabd6/internal/tools/catalog"
)

// newCatalogContext builds the sports API client and the cached catalog. The document store is only opened when
// the managed competitions are needed.
func (g *globalCmd) newCatalogContext(ctx context.Context, withStore bool, refresh bool) (*catalog.Context, *env, error) {
	e, err := g.env()
	if err != nil {
		return nil, nil, err
	}
	cctx := catalog.NewContext(ctx)
	cctx.Refresh = refresh
	cctx.API, err = e.api()
	if err != nil {
		e.close()
		return nil, nil, err
	}
	var store docstore.Store
	if withStore {
		store, err = e.store(ctx)
		if err != nil {
			e.close()
			return nil, nil, err
		}
	}
	cache, err := e.cache()
	if err != nil {
		e.close()
		return nil, nil, err
	}
	cctx.Catalog = sportsapi.NewCatalog(cctx.API, store, cache, e.logger)
	return cctx, e, nil
}

type lsCountriesCmd struct {
	Refresh bool `help:"Drop cached lists and refetch."`
}

func (a *lsCountriesCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), false, a.Refresh)
	if err != nil {
		return err
	}
	defer e.close()
	return catalog.LsCountries(ctx)
}

type lsNationalTeamsCmd struct {
	Refresh bool `help:"Drop cached lists and refetch."`
}

func (a *lsNationalTeamsCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), false, a.Refresh)
	if err != nil {
		return err
	}
	defer e.close()
	return catalog.LsNationalTeams(ctx)
}

type lsCompetitionsCmd struct {
	Refresh bool `help:"Drop cached lists and refetch."`
}

func (a *lsCompetitionsCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), true, a.Refresh)
	if err != nil {
		return err
	}
	defer e.close()
	return catalog.LsCompetitions(ctx)
}

type searchCmd struct {
	Query string `arg:"" help:"Name to search for. At least three characters."`
}

func (a *searchCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), false, false)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Query = a.Query
	return catalog.Search(ctx)
}

type oddsCmd struct {
	FixtureID int `arg:"" help:"Sports API fixture id."`
}

func (a *oddsCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), false, false)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.FixtureID = a.FixtureID
	return catalog.Odds(ctx)
}

type lsFixturesCmd struct {
	Date time.Time `help:"Day to list." format:"2006-01-02" xor:"Date,Live"`
	Live bool      `help:"List fixtures in play." xor:"Date,Live"`
}

func (a *lsFixturesCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newCatalogContext(context.Background(), false, false)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Date = a.Date
	if ctx.Date.IsZero() {
		ctx.Date = time.Now()
	}
	ctx.Live = a.Live
	return catalog.LsFixtures(ctx)
}

type watchCmd struct {
	Interval time.Duration `help:"Time between refetches." default:"30s"`
}

func (a *watchCmd) Run(g *globalCmd) error {
	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, e, err := g.newCatalogContext(sctx, false, false)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Interval = a.Interval
	return catalog.WatchLive(ctx)
}
