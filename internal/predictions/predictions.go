// Package predictions manages pinned matches and the score predictions users make on them.
package predictions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/scoring"
	"go.uber.org/zap"
)

var (
	ErrNotPinned        = errors.New("predictions: match is not open for predictions")
	ErrPredictionClosed = errors.New("predictions: match has already kicked off")
	ErrInvalidScore     = errors.New("predictions: goals must not be negative")
)

// Save records uid's prediction for a pinned fixture. Predictions close at kickoff. Points already awarded are kept.
func Save(ctx context.Context, store docstore.Store, uid string, fixtureID, home, away int, now time.Time) (firestore.Prediction, error) {
	if home < 0 || away < 0 {
		return firestore.Prediction{}, ErrInvalidScore
	}
	pf, err := firestore.GetPredictionFixture(ctx, store, fixtureID)
	if err != nil {
		var notPinned firestore.NoPredictionFixtureError
		if errors.As(err, &notPinned) {
			return firestore.Prediction{}, fmt.Errorf("Save: %w: %v", ErrNotPinned, err)
		}
		return firestore.Prediction{}, fmt.Errorf("Save: %w", err)
	}
	if !now.Before(pf.FixtureData.Kickoff()) || scoring.Classify(pf.FixtureData.Fixture.Status.Short) != scoring.Upcoming {
		return firestore.Prediction{}, ErrPredictionClosed
	}

	existing, _, err := firestore.GetPrediction(ctx, store, fixtureID, uid)
	if err != nil {
		return firestore.Prediction{}, fmt.Errorf("Save: %w", err)
	}
	p := firestore.Prediction{
		UserID:    uid,
		FixtureID: fixtureID,
		HomeGoals: home,
		AwayGoals: away,
		Points:    existing.Points,
		Timestamp: now.UTC(),
	}
	err = store.Merge(ctx, firestore.PredictionPath(fixtureID, uid),
		docstore.Update("userId", p.UserID),
		docstore.Update("fixtureId", p.FixtureID),
		docstore.Update("homeGoals", p.HomeGoals),
		docstore.Update("awayGoals", p.AwayGoals),
		docstore.Update("points", p.Points),
		docstore.Update("timestamp", p.Timestamp),
	)
	if err != nil {
		return firestore.Prediction{}, fmt.Errorf("Save: unable to save prediction of %s for %d: %w", uid, fixtureID, err)
	}
	return p, nil
}

// IsPinned reports whether a fixture is open for predictions.
func IsPinned(ctx context.Context, store docstore.Store, fixtureID int) (bool, error) {
	doc, err := store.Get(ctx, firestore.PredictionFixturePath(fixtureID))
	if err != nil {
		return false, fmt.Errorf("IsPinned: %w", err)
	}
	return doc.Exists(), nil
}

// Pin opens a fixture for predictions, storing the full fixture.
func Pin(ctx context.Context, store docstore.Store, fixture firestore.Fixture) error {
	if err := store.Set(ctx, firestore.PredictionFixturePath(fixture.Fixture.ID), firestore.PredictionFixture{FixtureData: fixture}); err != nil {
		return fmt.Errorf("Pin: unable to pin fixture %d: %w", fixture.Fixture.ID, err)
	}
	return nil
}

// Unpin closes a fixture for predictions. Predictions already made are left in place.
func Unpin(ctx context.Context, store docstore.Store, fixtureID int) error {
	if err := store.Delete(ctx, firestore.PredictionFixturePath(fixtureID)); err != nil {
		return fmt.Errorf("Unpin: unable to unpin fixture %d: %w", fixtureID, err)
	}
	return nil
}

// TogglePin pins an unpinned fixture and unpins a pinned one. It reports whether the fixture is now pinned.
func TogglePin(ctx context.Context, store docstore.Store, fixture firestore.Fixture) (bool, error) {
	pinned, err := IsPinned(ctx, store, fixture.Fixture.ID)
	if err != nil {
		return false, fmt.Errorf("TogglePin: %w", err)
	}
	if pinned {
		return false, Unpin(ctx, store, fixture.Fixture.ID)
	}
	return true, Pin(ctx, store, fixture)
}

// ListPinned returns every pinned fixture ordered by kickoff.
func ListPinned(ctx context.Context, store docstore.Store) ([]firestore.Fixture, error) {
	pfs, _, err := firestore.GetPredictionFixtures(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("ListPinned: %w", err)
	}
	fixtures := make([]firestore.Fixture, len(pfs))
	for i, pf := range pfs {
		fixtures[i] = pf.FixtureData
	}
	return fixtures, nil
}

// UserPredictions returns uid's predictions on pinned fixtures, keyed by fixture id.
func UserPredictions(ctx context.Context, store docstore.Store, uid string) (map[int]firestore.Prediction, error) {
	pfs, _, err := firestore.GetPredictionFixtures(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("UserPredictions: %w", err)
	}
	out := make(map[int]firestore.Prediction)
	for _, pf := range pfs {
		id := pf.FixtureData.Fixture.ID
		p, ok, err := firestore.GetPrediction(ctx, store, id, uid)
		if err != nil {
			return nil, fmt.Errorf("UserPredictions: %w", err)
		}
		if ok {
			out[id] = p
		}
	}
	return out, nil
}

// FixtureSource looks fixtures up by id.
type FixtureSource interface {
	FixtureByID(ctx context.Context, id int) (firestore.Fixture, error)
}

// Refresh re-fetches every pinned fixture that has not finished and stores the new data, so finished results reach
// the leaderboard. A fixture that cannot be fetched is skipped with a warning. It returns the number refreshed.
func Refresh(ctx context.Context, store docstore.Store, source FixtureSource, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pinned, err := ListPinned(ctx, store)
	if err != nil {
		return 0, fmt.Errorf("Refresh: %w", err)
	}
	refreshed := 0
	for _, f := range pinned {
		if scoring.IsFinished(f.Fixture.Status.Short) {
			continue
		}
		fresh, err := source.FixtureByID(ctx, f.Fixture.ID)
		if err != nil {
			if ctx.Err() != nil {
				return refreshed, fmt.Errorf("Refresh: %w", ctx.Err())
			}
			logger.Warn("unable to refresh pinned fixture", zap.Int("fixture", f.Fixture.ID), zap.Error(err))
			continue
		}
		if err := store.Merge(ctx, firestore.PredictionFixturePath(f.Fixture.ID), docstore.Update("fixtureData", fresh)); err != nil {
			return refreshed, fmt.Errorf("Refresh: unable to store fixture %d: %w", f.Fixture.ID, err)
		}
		logger.Debug("refreshed pinned fixture", zap.Int("fixture", f.Fixture.ID), zap.String("status", fresh.Fixture.Status.Short))
		refreshed++
	}
	return refreshed, nil
}
