package main

import (
	"github.com/alecthomas/kong"
)

type globalCmd struct {
	Config    string `help:"Path to the YAML configuration file. A missing file leaves the defaults in place." type:"path" default:"goaltool.yaml"`
	ProjectID string `help:"GCP project ID. Overrides the configuration file." env:"GCP_PROJECT"`
	Verbose   bool   `help:"Log at debug level." short:"v"`
}

var CLI struct {
	globalCmd

	Favorites struct {
		Ls     lsFavoritesCmd  `cmd:"" help:"List favorites of a user, or of this device when no uid is given."`
		Team   toggleTeamCmd   `cmd:"" help:"Star or unstar a team."`
		League toggleLeagueCmd `cmd:"" help:"Star or unstar a league."`
		Crown  toggleCrownCmd  `cmd:"" help:"Crown or uncrown a team."`
		Notify notifyCmd       `cmd:"" help:"Turn news or league notifications on or off."`
		SignIn signInCmd       `cmd:"" name:"sign-in" help:"Create the user profile if needed and move this device's favorites onto the account."`
	} `cmd:""`

	Fixtures struct {
		Pin     pinFixtureCmd    `cmd:"" help:"Pin a fixture for predictions."`
		Unpin   unpinFixtureCmd  `cmd:"" help:"Unpin a fixture."`
		Toggle  togglePinCmd     `cmd:"" help:"Pin a fixture if it is not pinned, otherwise unpin it."`
		Ls      lsPinnedCmd      `cmd:"" help:"List pinned fixtures."`
		Refresh refreshPinnedCmd `cmd:"" help:"Refetch pinned fixtures from the sports API."`
	} `cmd:""`

	Predictions struct {
		Save savePredictionCmd `cmd:"" help:"Save a user's predicted score for a pinned fixture."`
		Ls   lsPredictionsCmd  `cmd:"" help:"List a user's predictions."`
	} `cmd:""`

	Leaderboard struct {
		Recompute recomputeCmd       `cmd:"" help:"Rescore finished fixtures and rebuild the leaderboard."`
		Show      showLeaderboardCmd `cmd:"" help:"Print the leaderboard."`
		Export    exportCmd          `cmd:"" help:"Write the leaderboard as a spreadsheet."`
	} `cmd:""`

	Catalog struct {
		Countries     lsCountriesCmd     `cmd:"" help:"List countries."`
		NationalTeams lsNationalTeamsCmd `cmd:"" name:"national-teams" help:"List national teams."`
		Competitions  lsCompetitionsCmd  `cmd:"" help:"List the competitions catalog."`
		Search        searchCmd          `cmd:"" help:"Search teams and leagues by name."`
		Odds          oddsCmd            `cmd:"" help:"Print match-winner odds of a fixture."`
		Fixtures      lsFixturesCmd      `cmd:"" help:"List fixtures of a day, or those in play."`
		Watch         watchCmd           `cmd:"" help:"Reprint fixtures in play until interrupted."`
	} `cmd:""`

	Settings struct {
		Init initConfigCmd `cmd:"" help:"Write the effective configuration to a file."`
	} `cmd:"" name:"config"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("goaltool"),
		kong.Description("A command-line tool for managing favorites, predictions, and the leaderboard."),
	)
	err := ctx.Run(&CLI.globalCmd)
	ctx.FatalIfErrorf(err)
}
