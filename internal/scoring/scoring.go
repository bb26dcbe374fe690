// Package scoring awards points to score predictions. It is the only place points are computed.
package scoring

import (
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
)

// Points awarded for a prediction.
const (
	ExactScore     = 5
	CorrectOutcome = 3
	Miss           = 0
)

// Outcome is the result category of a scoreline.
type Outcome int

const (
	Draw Outcome = iota
	HomeWin
	AwayWin
)

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "home win"
	case AwayWin:
		return "away win"
	}
	return "draw"
}

// OutcomeOf categorizes a scoreline.
func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return HomeWin
	case away > home:
		return AwayWin
	}
	return Draw
}

// Category groups fixture status codes.
type Category int

const (
	Upcoming Category = iota
	Live
	Finished
	Cancelled
)

func (c Category) String() string {
	switch c {
	case Live:
		return "live"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	}
	return "upcoming"
}

var categories = map[string]Category{
	"TBD":  Upcoming,
	"NS":   Upcoming,
	"1H":   Live,
	"HT":   Live,
	"2H":   Live,
	"ET":   Live,
	"BT":   Live,
	"P":    Live,
	"SUSP": Live,
	"INT":  Live,
	"LIVE": Live,
	"FT":   Finished,
	"AET":  Finished,
	"PEN":  Finished,
	"PST":  Cancelled,
	"CANC": Cancelled,
	"ABD":  Cancelled,
	"AWD":  Cancelled,
	"WO":   Cancelled,
}

// Classify maps a short status code to its category. Unknown codes are Upcoming.
func Classify(short string) Category {
	return categories[short]
}

// IsFinished reports whether a fixture with this status has a final result: full time, after extra time, or on penalties.
func IsFinished(short string) bool {
	return Classify(short) == Finished
}

// IsLive reports whether a fixture with this status is in play.
func IsLive(short string) bool {
	return Classify(short) == Live
}

// Result is a match result. Either side is nil while the score is unknown.
type Result struct {
	Status string
	Home   *int
	Away   *int
}

// ResultOf reads the result of a fixture.
func ResultOf(f firestore.Fixture) Result {
	return Result{Status: f.Fixture.Status.Short, Home: f.Goals.Home, Away: f.Goals.Away}
}

// ScorePrediction awards 5 points for the exact score, 3 for the right outcome and 0 otherwise.
// Nothing is awarded until the match is finished and both sides of its score are known.
func ScorePrediction(p firestore.Prediction, r Result) int {
	if !IsFinished(r.Status) || r.Home == nil || r.Away == nil {
		return Miss
	}
	if p.HomeGoals == *r.Home && p.AwayGoals == *r.Away {
		return ExactScore
	}
	if OutcomeOf(p.HomeGoals, p.AwayGoals) == OutcomeOf(*r.Home, *r.Away) {
		return CorrectOutcome
	}
	return Miss
}
