package main

import (
	"context"

	"github.com/abozbere2001-collab/Nabd6/internal/tools/updateleaderboard"
)

func (g *globalCmd) newLeaderboardContext() (*updateleaderboard.Context, *env, error) {
	e, err := g.env()
	if err != nil {
		return nil, nil, err
	}
	ctx := updateleaderboard.NewContext(context.Background())
	ctx.Logger = e.logger
	ctx.BatchSize = e.cfg.Leaderboard.BatchSize
	ctx.Top = e.cfg.Leaderboard.Top
	ctx.Store, err = e.store(ctx.Context)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return ctx, e, nil
}

type recomputeCmd struct {
	Force      bool `help:"Do not ask before replacing the leaderboard." xor:"Force,DryRun"`
	DryRun     bool `help:"Print database writes to log and exit without writing." xor:"Force,DryRun"`
	NoProgress bool `help:"Do not draw a progress bar."`
}

func (a *recomputeCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newLeaderboardContext()
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Force = a.Force
	ctx.DryRun = a.DryRun
	ctx.NoProgress = a.NoProgress
	return updateleaderboard.Recompute(ctx)
}

type showLeaderboardCmd struct {
	Top   int    `help:"Number of entries to print. Defaults to the configured value."`
	User  string `help:"Also print this user's standing."`
	Stats bool   `help:"Print summary statistics of every entry."`
}

func (a *showLeaderboardCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newLeaderboardContext()
	if err != nil {
		return err
	}
	defer e.close()
	if a.Top > 0 {
		ctx.Top = a.Top
	}
	ctx.User = a.User
	ctx.Stats = a.Stats
	return updateleaderboard.Show(ctx)
}

type exportCmd struct {
	DryRun bool   `help:"Print what would be written and exit."`
	Output string `arg:"" help:"Output .xlsx path, or a gs://bucket/object URL."`
}

func (a *exportCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newLeaderboardContext()
	if err != nil {
		return err
	}
	defer e.close()
	ctx.DryRun = a.DryRun
	ctx.Output = a.Output
	return updateleaderboard.Export(ctx)
}
