package predictions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

func fixture(id int, status string) firestore.Fixture {
	var f firestore.Fixture
	f.Fixture.ID = id
	f.Fixture.Timestamp = kickoff.Unix() + int64(id)
	f.Fixture.Status.Short = status
	f.Teams.Home.Name = "Home"
	f.Teams.Away.Name = "Away"
	return f
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, Pin(ctx, store, fixture(10, "NS")))

	before := kickoff.Add(-time.Hour)
	p, err := Save(ctx, store, "u1", 10, 2, 1, before)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)

	// pretend a recomputation awarded points, then the user edits before kickoff
	require.NoError(t, store.Merge(ctx, firestore.PredictionPath(10, "u1"), docstore.Update("points", 3)))
	p, err = Save(ctx, store, "u1", 10, 3, 1, before.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Points)

	stored, ok, err := firestore.GetPrediction(ctx, store, 10, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, stored.HomeGoals)
	assert.Equal(t, 3, stored.Points)
	assert.True(t, stored.Timestamp.Equal(before.Add(time.Minute)))
}

func TestSaveRejected(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, Pin(ctx, store, fixture(10, "NS")))
	require.NoError(t, Pin(ctx, store, fixture(11, "1H")))

	tests := []struct {
		name    string
		fixture int
		home    int
		at      time.Time
		want    error
	}{
		{"not pinned", 99, 1, kickoff.Add(-time.Hour), ErrNotPinned},
		{"after kickoff", 10, 1, kickoff.Add(time.Hour), ErrPredictionClosed},
		{"in play", 11, 1, kickoff.Add(-time.Hour), ErrPredictionClosed},
		{"negative", 10, -1, kickoff.Add(-time.Hour), ErrInvalidScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Save(ctx, store, "u1", tt.fixture, tt.home, 0, tt.at)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestTogglePin(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()

	pinned, err := TogglePin(ctx, store, fixture(3, "NS"))
	require.NoError(t, err)
	assert.True(t, pinned)
	pinned, err = TogglePin(ctx, store, fixture(1, "NS"))
	require.NoError(t, err)
	assert.True(t, pinned)

	list, err := ListPinned(ctx, store)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Fixture.ID, "ordered by kickoff")

	pinned, err = TogglePin(ctx, store, fixture(3, "NS"))
	require.NoError(t, err)
	assert.False(t, pinned)
	ok, err := IsPinned(ctx, store, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserPredictions(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, Pin(ctx, store, fixture(1, "NS")))
	require.NoError(t, Pin(ctx, store, fixture(2, "NS")))
	_, err := Save(ctx, store, "u1", 2, 0, 0, kickoff.Add(-time.Hour))
	require.NoError(t, err)
	_, err = Save(ctx, store, "u2", 1, 0, 0, kickoff.Add(-time.Hour))
	require.NoError(t, err)

	got, err := UserPredictions(ctx, store, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[2].UserID)
}

type fakeSource map[int]firestore.Fixture

func (f fakeSource) FixtureByID(ctx context.Context, id int) (firestore.Fixture, error) {
	fx, ok := f[id]
	if !ok {
		return firestore.Fixture{}, errors.New("no such fixture")
	}
	return fx, nil
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	require.NoError(t, Pin(ctx, store, fixture(1, "NS")))
	require.NoError(t, Pin(ctx, store, fixture(2, "FT")))
	require.NoError(t, Pin(ctx, store, fixture(3, "NS")))

	done := fixture(1, "FT")
	home, away := 2, 0
	done.Goals.Home, done.Goals.Away = &home, &away
	n, err := Refresh(ctx, store, fakeSource{1: done}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "finished fixtures are not re-fetched and failures are skipped")

	pf, err := firestore.GetPredictionFixture(ctx, store, 1)
	require.NoError(t, err)
	assert.Equal(t, "FT", pf.FixtureData.Fixture.Status.Short)
	require.NotNil(t, pf.FixtureData.Goals.Home)
	assert.Equal(t, 2, *pf.FixtureData.Goals.Home)
}
