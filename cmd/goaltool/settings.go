package main

import (
	"fmt"
	"os"

	"github.com/abozbere2001-collab/Nabd6/internal/config"
)

type initConfigCmd struct {
	Output string `arg:"" help:"Where to write the configuration." type:"path"`
	Force  bool   `help:"Overwrite an existing file."`
}

func (a *initConfigCmd) Run(g *globalCmd) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if g.ProjectID != "" {
		cfg.Project = g.ProjectID
	}
	if !a.Force {
		if _, err := os.Stat(a.Output); err == nil {
			return fmt.Errorf("%s exists, use --force to overwrite it", a.Output)
		}
	}
	// keys stay in the environment
	cfg.SportsAPI.Key = ""
	if err := cfg.Save(a.Output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", a.Output)
	return nil
}
