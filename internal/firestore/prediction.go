package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// Prediction is a user's guess at the final score of a pinned match.
type Prediction struct {
	UserID    string `firestore:"userId" json:"userId"`
	FixtureID int    `firestore:"fixtureId" json:"fixtureId"`
	HomeGoals int    `firestore:"homeGoals" json:"homeGoals"`
	AwayGoals int    `firestore:"awayGoals" json:"awayGoals"`

	// Points is 0, 3 or 5 and is only ever changed by the leaderboard recomputation.
	Points int `firestore:"points" json:"points"`

	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}

func (p Prediction) String() string {
	var sb strings.Builder
	sb.WriteString("Prediction\n")
	ss := make([]string, 0)
	ss = append(ss, treeString("UserID", 0, false, p.UserID))
	ss = append(ss, treeInt("FixtureID", 0, false, p.FixtureID))
	ss = append(ss, treeString("Score", 0, false, fmt.Sprintf("%d-%d", p.HomeGoals, p.AwayGoals)))
	ss = append(ss, treeInt("Points", 0, false, p.Points))
	ss = append(ss, treeTime("Timestamp", 0, true, p.Timestamp))
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// GetUserPredictions returns every prediction for the pinned fixture with document id fixtureID, with the path of each.
func GetUserPredictions(ctx context.Context, store docstore.Store, fixtureID string) ([]Prediction, []string, error) {
	docs, err := store.List(ctx, UserPredictionsPath(fixtureID))
	if err != nil {
		return nil, nil, fmt.Errorf("GetUserPredictions: unable to list predictions for fixture %s: %w", fixtureID, err)
	}
	preds := make([]Prediction, len(docs))
	paths := make([]string, len(docs))
	for i, doc := range docs {
		var p Prediction
		if err := doc.DataTo(&p); err != nil {
			return nil, nil, fmt.Errorf("GetUserPredictions: unable to decode %s: %w", doc.Path, err)
		}
		if p.UserID == "" {
			p.UserID = doc.ID
		}
		preds[i] = p
		paths[i] = doc.Path
	}
	return preds, paths, nil
}

// GetPrediction reads one user's prediction. The boolean is false when the user has not predicted.
func GetPrediction(ctx context.Context, store docstore.Store, fixtureID int, uid string) (Prediction, bool, error) {
	var p Prediction
	doc, err := store.Get(ctx, PredictionPath(fixtureID, uid))
	if err != nil {
		return p, false, fmt.Errorf("GetPrediction: unable to get prediction of %s for %d: %w", uid, fixtureID, err)
	}
	if !doc.Exists() {
		return p, false, nil
	}
	if err := doc.DataTo(&p); err != nil {
		return p, false, fmt.Errorf("GetPrediction: unable to decode %s: %w", doc.Path, err)
	}
	return p, true, nil
}
