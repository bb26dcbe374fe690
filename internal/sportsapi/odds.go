package sportsapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MatchWinnerBet is the id of the home/draw/away market.
const MatchWinnerBet = 1

// MatchOdds are decimal odds on the three match outcomes.
type MatchOdds struct {
	Home float64
	Draw float64
	Away float64
}

// Implied returns the implied probability 1/odd of each outcome. The three need not sum to one.
func (o MatchOdds) Implied() (home, draw, away float64) {
	return 1 / o.Home, 1 / o.Draw, 1 / o.Away
}

// Shares returns the implied probabilities scaled to sum to one.
func (o MatchOdds) Shares() (home, draw, away float64) {
	home, draw, away = o.Implied()
	total := home + draw + away
	return home / total, draw / total, away / total
}

func (o MatchOdds) String() string {
	h, d, a := o.Shares()
	return fmt.Sprintf("home %0.2f (%0.0f%%), draw %0.2f (%0.0f%%), away %0.2f (%0.0f%%)", o.Home, h*100, o.Draw, d*100, o.Away, a*100)
}

// ReduceMatchWinner picks the match-winner market of bookmaker out of odds. It reports false when that market is
// missing or any of its three prices is unusable.
func ReduceMatchWinner(odds []FixtureOdds, bookmaker int) (MatchOdds, bool) {
	if len(odds) == 0 {
		return MatchOdds{}, false
	}
	for _, b := range odds[0].Bookmakers {
		if b.ID != bookmaker {
			continue
		}
		for _, bet := range b.Bets {
			if bet.ID != MatchWinnerBet {
				continue
			}
			prices := make(map[string]float64, 3)
			for _, v := range bet.Values {
				odd, err := strconv.ParseFloat(strings.TrimSpace(v.Odd), 64)
				if err != nil || odd <= 0 {
					continue
				}
				prices[strings.ToLower(strings.ReplaceAll(v.Value, " ", ""))] = odd
			}
			mo := MatchOdds{Home: prices["home"], Draw: prices["draw"], Away: prices["away"]}
			if mo.Home == 0 || mo.Draw == 0 || mo.Away == 0 {
				return MatchOdds{}, false
			}
			return mo, true
		}
	}
	return MatchOdds{}, false
}

// MatchWinnerOdds fetches a fixture's odds and reduces them to the match-winner market.
func (c *Client) MatchWinnerOdds(ctx context.Context, fixture int) (MatchOdds, bool, error) {
	odds, err := c.Odds(ctx, fixture)
	if err != nil {
		return MatchOdds{}, false, fmt.Errorf("MatchWinnerOdds: %w", err)
	}
	mo, ok := ReduceMatchWinner(odds, c.bookmaker)
	return mo, ok, nil
}
