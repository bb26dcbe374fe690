package main

import (
	"context"
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/accounts"
	"github.com/abozbere2001-collab/Nabd6/internal/favorites"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"github.com/abozbere2001-collab/Nabd6/internal/tools/editfavorites"
)

type accountFlags struct {
	UID       string `help:"Firebase uid of the signed-in user. Omit to act on this device's guest favorites."`
	Anonymous bool   `help:"The user signed in anonymously. Anonymous users keep their favorites on this device."`
	Email     string `help:"Email address of the user."`
	Name      string `help:"Display name of the user."`
	Photo     string `help:"Photo URL of the user."`
}

func (a accountFlags) account() accounts.Account {
	return accounts.Account{UID: a.UID, DisplayName: a.Name, Email: a.Email, PhotoURL: a.Photo, Anonymous: a.Anonymous}
}

type itemFlags struct {
	ID    int    `arg:"" help:"Sports API id."`
	Label string `help:"Display name to store. Looked up in the sports API when omitted."`
	Logo  string `help:"Logo URL to store."`
}

// newFavoritesContext opens the device store and, for signed-in users, the document store. Closing the returned env
// releases both.
func (g *globalCmd) newFavoritesContext(a accountFlags) (*editfavorites.Context, *env, error) {
	e, err := g.env()
	if err != nil {
		return nil, nil, err
	}
	ctx := editfavorites.NewContext(context.Background())
	ctx.Account = a.account()
	ctx.Logger = e.logger
	ctx.Reporter = e.reporter
	ctx.Notifier = localstore.NewNotifier()
	ctx.KV, err = e.local()
	if err != nil {
		e.close()
		return nil, nil, err
	}
	if !ctx.Identity().Guest() {
		ctx.Store, err = e.store(ctx.Context)
		if err != nil {
			e.close()
			return nil, nil, err
		}
	}
	return ctx, e, nil
}

type lsFavoritesCmd struct {
	accountFlags
}

func (a *lsFavoritesCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	return editfavorites.LsFavorites(ctx)
}

// resolveTeam fills in a team's name and logo from the sports API unless a label was given.
func resolveTeam(ctx context.Context, e *env, it itemFlags) (favorites.Item, error) {
	item := favorites.Item{ID: it.ID, Name: it.Label, Logo: it.Logo}
	if item.Name != "" {
		return item, nil
	}
	api, err := e.api()
	if err != nil {
		return item, fmt.Errorf("team name unknown: give --label or configure the sports API: %w", err)
	}
	info, err := api.TeamByID(ctx, it.ID)
	if err != nil {
		return item, err
	}
	item.Name = info.Team.Name
	item.National = info.Team.National
	if item.Logo == "" {
		item.Logo = info.Team.Logo
	}
	return item, nil
}

type toggleTeamCmd struct {
	accountFlags
	itemFlags
	National bool `help:"The team is a national side. Only used with --label."`
}

func (a *toggleTeamCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Item, err = resolveTeam(ctx, e, a.itemFlags)
	if err != nil {
		return err
	}
	if a.Label != "" {
		ctx.Item.National = a.National
	}
	return editfavorites.ToggleTeam(ctx)
}

type toggleLeagueCmd struct {
	accountFlags
	itemFlags
}

func (a *toggleLeagueCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Item = favorites.Item{ID: a.ID, Name: a.Label, Logo: a.Logo}
	if ctx.Item.Name == "" {
		api, err := e.api()
		if err != nil {
			return fmt.Errorf("league name unknown: give --label or configure the sports API: %w", err)
		}
		info, err := api.LeagueByID(ctx, a.ID)
		if err != nil {
			return err
		}
		ctx.Item.Name = info.League.Name
		if ctx.Item.Logo == "" {
			ctx.Item.Logo = info.League.Logo
		}
	}
	return editfavorites.ToggleLeague(ctx)
}

type toggleCrownCmd struct {
	accountFlags
	itemFlags
	Note string `help:"Note to keep with the crown."`
}

func (a *toggleCrownCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Item, err = resolveTeam(ctx, e, a.itemFlags)
	if err != nil {
		return err
	}
	ctx.Note = a.Note
	return editfavorites.ToggleCrown(ctx)
}

type notifyCmd struct {
	accountFlags
	Scope    string `arg:"" enum:"news,league" help:"Which switch to set: news or league."`
	LeagueID int    `arg:"" optional:"" help:"League id. Required for the league scope."`
	On       bool   `help:"Turn notifications on." xor:"On,Off"`
	Off      bool   `help:"Turn notifications off." xor:"On,Off"`
}

func (a *notifyCmd) Run(g *globalCmd) error {
	if !a.On && !a.Off {
		return fmt.Errorf("one of --on or --off is required")
	}
	scope := favorites.News
	if a.Scope == "league" {
		if a.LeagueID <= 0 {
			return fmt.Errorf("a league id is required for the league scope")
		}
		scope = favorites.LeagueScope(a.LeagueID)
	}
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	ctx.Scope = scope
	ctx.Enabled = a.On
	return editfavorites.SetNotification(ctx)
}

type signInCmd struct {
	accountFlags
}

func (a *signInCmd) Run(g *globalCmd) error {
	ctx, e, err := g.newFavoritesContext(a.accountFlags)
	if err != nil {
		return err
	}
	defer e.close()
	return editfavorites.SignIn(ctx)
}
