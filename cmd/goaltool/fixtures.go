package main

import (
	"context"

	"github.com/abozbere2001-collab/Nabd6/internal/tools/pinfixtures"
)

func (g *globalCmd) newPinContext(withAPI bool) (*pinfixtures.Context, *env, error) {
	e, err := g.env()
	if err != nil {
		return nil, nil, err
	}
	ctx := pinfixtures.NewContext(context.Background())
	ctx.Logger = e.logger
	ctx.Store, err = e.store(ctx.Context)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	if withAPI {
		ctx.API, err = e.api()
		if err != nil {
			e.close()
			return nil, nil, err
		}
	}
	return ctx, e, nil
}

type pinFixtureCmd struct {
	DryRun    bool `help:"Print database writes and exit without writing."`
	FixtureID int  `arg:"" help:"Sports API fixture id."`
}

func (a *pinFixtureCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newPinContext(true)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.DryRun = a.DryRun
	ctx.FixtureID = a.FixtureID
	return pinfixtures.PinFixture(ctx)
}

type unpinFixtureCmd struct {
	DryRun    bool `help:"Print database writes and exit without writing."`
	FixtureID int  `arg:"" help:"Sports API fixture id."`
}

func (a *unpinFixtureCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newPinContext(false)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.DryRun = a.DryRun
	ctx.FixtureID = a.FixtureID
	return pinfixtures.UnpinFixture(ctx)
}

type togglePinCmd struct {
	DryRun    bool `help:"Print database writes and exit without writing."`
	FixtureID int  `arg:"" help:"Sports API fixture id."`
}

func (a *togglePinCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newPinContext(true)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.DryRun = a.DryRun
	ctx.FixtureID = a.FixtureID
	return pinfixtures.TogglePinFixture(ctx)
}

type lsPinnedCmd struct{}

func (a *lsPinnedCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newPinContext(false)
	if err != nil {
		return err
	}
	defer e.close()
	return pinfixtures.LsPinned(ctx)
}

type refreshPinnedCmd struct {
	DryRun bool `help:"Print the fixtures that would be refetched and exit."`
}

func (a *refreshPinnedCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newPinContext(!a.DryRun)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.DryRun = a.DryRun
	return pinfixtures.RefreshPinned(ctx)
}
