package sportsapi

import (
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
)

// Country is an entry of the countries endpoint.
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Flag string `json:"flag"`
}

// Team is a club or national side.
type Team struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Country  string `json:"country"`
	Founded  int    `json:"founded"`
	National bool   `json:"national"`
	Logo     string `json:"logo"`
}

// TeamVenue is the home ground reported with a team.
type TeamVenue struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Capacity int    `json:"capacity"`
	Surface  string `json:"surface"`
	Image    string `json:"image"`
}

// TeamInfo is an entry of the teams endpoint.
type TeamInfo struct {
	Team  Team      `json:"team"`
	Venue TeamVenue `json:"venue"`
}

// FavoriteType is the favorites classification of the team.
func (t Team) FavoriteType() firestore.TeamType {
	if t.National {
		return firestore.National
	}
	return firestore.Club
}

// League is a competition.
type League struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Logo string `json:"logo"`
}

// Season is one season a league has data for.
type Season struct {
	Year    int    `json:"year"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Current bool   `json:"current"`
}

// LeagueInfo is an entry of the leagues endpoint.
type LeagueInfo struct {
	League  League   `json:"league"`
	Country Country  `json:"country"`
	Seasons []Season `json:"seasons"`
}

// Record is a won/drawn/lost tally.
type Record struct {
	Played int `json:"played"`
	Win    int `json:"win"`
	Draw   int `json:"draw"`
	Lose   int `json:"lose"`
	Goals  struct {
		For     int `json:"for"`
		Against int `json:"against"`
	} `json:"goals"`
}

// Standing is one row of a league table.
type Standing struct {
	Rank        int    `json:"rank"`
	Team        Team   `json:"team"`
	Points      int    `json:"points"`
	GoalsDiff   int    `json:"goalsDiff"`
	Group       string `json:"group"`
	Form        string `json:"form"`
	Status      string `json:"status"`
	Description string `json:"description"`
	All         Record `json:"all"`
	Home        Record `json:"home"`
	Away        Record `json:"away"`
}

// LeagueStandings is an entry of the standings endpoint. A league may have several groups, each its own table.
type LeagueStandings struct {
	League struct {
		ID        int          `json:"id"`
		Name      string       `json:"name"`
		Country   string       `json:"country"`
		Logo      string       `json:"logo"`
		Season    int          `json:"season"`
		Standings [][]Standing `json:"standings"`
	} `json:"league"`
}

// Player is a squad member.
type Player struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Age         int    `json:"age"`
	Nationality string `json:"nationality"`
	Photo       string `json:"photo"`
}

// PlayerStatistics is a player's record for a team in a league.
type PlayerStatistics struct {
	Team   Team   `json:"team"`
	League League `json:"league"`
	Games  struct {
		Appearences *int   `json:"appearences"`
		Position    string `json:"position"`
	} `json:"games"`
	Goals struct {
		Total   *int `json:"total"`
		Assists *int `json:"assists"`
	} `json:"goals"`
}

// PlayerInfo is an entry of the players endpoint.
type PlayerInfo struct {
	Player     Player             `json:"player"`
	Statistics []PlayerStatistics `json:"statistics"`
}

// OddValue is one priced outcome of a bet.
type OddValue struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}

// Bet is a market offered by a bookmaker.
type Bet struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

// Bookmaker is a provider of odds.
type Bookmaker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

// FixtureOdds is an entry of the odds endpoint.
type FixtureOdds struct {
	Fixture struct {
		ID int `json:"id"`
	} `json:"fixture"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}
