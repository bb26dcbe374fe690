package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// FixtureStatus is the status block of a fixture as the sports-data API reports it.
type FixtureStatus struct {
	Long    string `firestore:"long" json:"long"`
	Short   string `firestore:"short" json:"short"`
	Elapsed *int   `firestore:"elapsed" json:"elapsed"`
}

// Venue is where a fixture is played.
type Venue struct {
	ID   *int   `firestore:"id" json:"id"`
	Name string `firestore:"name" json:"name"`
	City string `firestore:"city" json:"city"`
}

// FixtureInfo is the "fixture" block of a fixture.
type FixtureInfo struct {
	ID        int           `firestore:"id" json:"id"`
	Referee   string        `firestore:"referee" json:"referee"`
	Timezone  string        `firestore:"timezone" json:"timezone"`
	Date      string        `firestore:"date" json:"date"`
	Timestamp int64         `firestore:"timestamp" json:"timestamp"`
	Venue     Venue         `firestore:"venue" json:"venue"`
	Status    FixtureStatus `firestore:"status" json:"status"`
}

// FixtureLeague is the competition a fixture belongs to.
type FixtureLeague struct {
	ID      int    `firestore:"id" json:"id"`
	Name    string `firestore:"name" json:"name"`
	Country string `firestore:"country" json:"country"`
	Logo    string `firestore:"logo" json:"logo"`
	Flag    string `firestore:"flag" json:"flag"`
	Season  int    `firestore:"season" json:"season"`
	Round   string `firestore:"round" json:"round"`
}

// FixtureTeam is one side of a fixture.
type FixtureTeam struct {
	ID     int    `firestore:"id" json:"id"`
	Name   string `firestore:"name" json:"name"`
	Logo   string `firestore:"logo" json:"logo"`
	Winner *bool  `firestore:"winner" json:"winner"`
}

// FixtureTeams pairs the two sides.
type FixtureTeams struct {
	Home FixtureTeam `firestore:"home" json:"home"`
	Away FixtureTeam `firestore:"away" json:"away"`
}

// Goals is a scoreline. Either side is nil while unknown.
type Goals struct {
	Home *int `firestore:"home" json:"home"`
	Away *int `firestore:"away" json:"away"`
}

// Score breaks the result down by period.
type Score struct {
	Halftime  Goals `firestore:"halftime" json:"halftime"`
	Fulltime  Goals `firestore:"fulltime" json:"fulltime"`
	Extratime Goals `firestore:"extratime" json:"extratime"`
	Penalty   Goals `firestore:"penalty" json:"penalty"`
}

// Fixture is a match in the shape the sports-data API returns it.
type Fixture struct {
	Fixture FixtureInfo   `firestore:"fixture" json:"fixture"`
	League  FixtureLeague `firestore:"league" json:"league"`
	Teams   FixtureTeams  `firestore:"teams" json:"teams"`
	Goals   Goals         `firestore:"goals" json:"goals"`
	Score   Score         `firestore:"score" json:"score"`
}

// Kickoff is the scheduled start of the fixture.
func (f Fixture) Kickoff() time.Time {
	return time.Unix(f.Fixture.Timestamp, 0).UTC()
}

func (f Fixture) String() string {
	var sb strings.Builder
	sb.WriteString("Fixture\n")
	ss := make([]string, 0)
	ss = append(ss, treeInt("ID", 0, false, f.Fixture.ID))
	ss = append(ss, treeString("League", 0, false, fmt.Sprintf("%s (%d)", f.League.Name, f.League.ID)))
	ss = append(ss, treeString("Home", 0, false, f.Teams.Home.Name))
	ss = append(ss, treeString("Away", 0, false, f.Teams.Away.Name))
	ss = append(ss, treeTime("Kickoff", 0, false, f.Kickoff()))
	ss = append(ss, treeString("Status", 0, false, f.Fixture.Status.Short))
	ss = append(ss, treeIntPtr("HomeGoals", 0, false, f.Goals.Home))
	ss = append(ss, treeIntPtr("AwayGoals", 0, true, f.Goals.Away))
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// PredictionFixture is a pinned match open for predictions.
type PredictionFixture struct {
	FixtureData Fixture `firestore:"fixtureData" json:"fixtureData"`
}

// NoPredictionFixtureError is returned when a fixture has not been pinned.
type NoPredictionFixtureError int

func (e NoPredictionFixtureError) Error() string {
	return fmt.Sprintf("fixture %d is not pinned for predictions", int(e))
}

// GetPredictionFixture reads the pinned match for fixtureID.
func GetPredictionFixture(ctx context.Context, store docstore.Store, fixtureID int) (PredictionFixture, error) {
	var pf PredictionFixture
	doc, err := store.Get(ctx, PredictionFixturePath(fixtureID))
	if err != nil {
		return pf, fmt.Errorf("GetPredictionFixture: unable to get fixture %d: %w", fixtureID, err)
	}
	if !doc.Exists() {
		return pf, NoPredictionFixtureError(fixtureID)
	}
	if err := doc.DataTo(&pf); err != nil {
		return pf, fmt.Errorf("GetPredictionFixture: unable to decode fixture %d: %w", fixtureID, err)
	}
	return pf, nil
}

// GetPredictionFixtures returns every pinned match ordered by kickoff, with the document id of each.
func GetPredictionFixtures(ctx context.Context, store docstore.Store) ([]PredictionFixture, []string, error) {
	docs, err := store.List(ctx, PREDICTION_FIXTURES_COLLECTION)
	if err != nil {
		return nil, nil, fmt.Errorf("GetPredictionFixtures: unable to list pinned fixtures: %w", err)
	}
	type pinned struct {
		pf PredictionFixture
		id string
	}
	all := make([]pinned, len(docs))
	for i, doc := range docs {
		var pf PredictionFixture
		if err := doc.DataTo(&pf); err != nil {
			return nil, nil, fmt.Errorf("GetPredictionFixtures: unable to decode %s: %w", doc.Path, err)
		}
		all[i] = pinned{pf: pf, id: doc.ID}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].pf.FixtureData.Fixture.Timestamp < all[j].pf.FixtureData.Fixture.Timestamp
	})
	fixtures := make([]PredictionFixture, len(all))
	ids := make([]string, len(all))
	for i, p := range all {
		fixtures[i] = p.pf
		ids[i] = p.id
	}
	return fixtures, ids, nil
}
