package main

import (
	"context"

	"github.com/abozbere2001-collab/Nabd6/internal/tools/predict"
)

type savePredictionCmd struct {
	UID       string `arg:"" help:"Firebase uid of the predicting user."`
	FixtureID int    `arg:"" help:"Pinned fixture id."`
	Home      int    `arg:"" help:"Predicted home goals."`
	Away      int    `arg:"" help:"Predicted away goals."`
}

func (a *savePredictionCmd) Run(g *globalCmd) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.close()
	ctx := predict.NewContext(context.Background())
	ctx.Store, err = e.store(ctx.Context)
	if err != nil {
		return err
	}
	ctx.UID = a.UID
	ctx.FixtureID = a.FixtureID
	ctx.Home = a.Home
	ctx.Away = a.Away
	return predict.SavePrediction(ctx)
}

type lsPredictionsCmd struct {
	UID string `arg:"" help:"Firebase uid of the user."`
}

func (a *lsPredictionsCmd) Run(g *globalCmd) error {
	e, err := g.env()
	if err != nil {
		return err
	}
	defer e.close()
	ctx := predict.NewContext(context.Background())
	ctx.Store, err = e.store(ctx.Context)
	if err != nil {
		return err
	}
	ctx.UID = a.UID
	return predict.LsPredictions(ctx)
}
