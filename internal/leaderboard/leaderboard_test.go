package leaderboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func goals(n int) *int {
	return &n
}

func pin(t *testing.T, store docstore.Store, id int, status string, home, away *int) {
	t.Helper()
	var f firestore.Fixture
	f.Fixture.ID = id
	f.Fixture.Timestamp = int64(1700000000 + id)
	f.Fixture.Status.Short = status
	f.Goals.Home = home
	f.Goals.Away = away
	require.NoError(t, store.Set(context.Background(), firestore.PredictionFixturePath(id), firestore.PredictionFixture{FixtureData: f}))
}

func predict(t *testing.T, store docstore.Store, fixture int, uid string, home, away, points int) {
	t.Helper()
	p := firestore.Prediction{UserID: uid, FixtureID: fixture, HomeGoals: home, AwayGoals: away, Points: points, Timestamp: time.Unix(1690000000, 0).UTC()}
	require.NoError(t, store.Set(context.Background(), firestore.PredictionPath(fixture, uid), p))
}

func seed(t *testing.T) *docstore.Memory {
	store := docstore.NewMemory()
	ctx := context.Background()
	pin(t, store, 1, "FT", goals(2), goals(1))
	pin(t, store, 2, "PEN", goals(1), goals(1))
	pin(t, store, 3, "NS", nil, nil)
	pin(t, store, 4, "PST", nil, nil)

	predict(t, store, 1, "alice", 2, 1, 0) // exact
	predict(t, store, 1, "bob", 3, 0, 0)   // outcome
	predict(t, store, 1, "carol", 0, 0, 5) // miss, stale points
	predict(t, store, 2, "alice", 0, 0, 0) // outcome (draw)
	predict(t, store, 2, "bob", 1, 1, 0)   // exact
	predict(t, store, 3, "carol", 1, 0, 0) // not finished
	predict(t, store, 4, "dave", 1, 0, 0)  // postponed

	require.NoError(t, store.Set(ctx, firestore.UserPath("alice"), firestore.UserProfile{DisplayName: "Alice", PhotoURL: "https://img.example/a.png"}))
	require.NoError(t, store.Set(ctx, firestore.UserPath("bob"), firestore.UserProfile{DisplayName: "Bob"}))
	require.NoError(t, store.Set(ctx, firestore.LeaderboardPath("ghost"), firestore.UserScore{UserID: "ghost", TotalPoints: 99}))
	return store
}

type countingProgress struct {
	total, added int
	finished     bool
}

func (c *countingProgress) Add(n int) error {
	c.added += n
	return nil
}

func (c *countingProgress) Finish() error {
	c.finished = true
	return nil
}

type brokenProgress struct{}

func (brokenProgress) Add(int) error { return errors.New("terminal gone") }
func (brokenProgress) Finish() error { return errors.New("terminal gone") }

func TestRecomputeIgnoresProgressFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := &Recomputer{
		Store:       seed(t),
		Logger:      zap.New(core),
		NewProgress: func(int) Progress { return brokenProgress{} },
	}
	report, err := r.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Finished)
	assert.Equal(t, 2, logs.FilterMessage("unable to advance progress").Len())
	assert.Equal(t, 1, logs.FilterMessage("unable to finish progress").Len())
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	progress := &countingProgress{}
	r := &Recomputer{
		Store:     store,
		BatchSize: 2,
		NewProgress: func(total int) Progress {
			progress.total = total
			return progress
		},
	}

	report, err := r.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Fixtures)
	assert.Equal(t, 2, report.Finished)
	assert.Equal(t, 5, report.Scored)
	assert.Equal(t, 5, report.Changed)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, &countingProgress{total: 2, added: 2, finished: true}, progress)

	p, ok, err := firestore.GetPrediction(ctx, store, 1, "carol")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, p.Points)

	scores, err := firestore.GetLeaderboard(ctx, store)
	require.NoError(t, err)
	ranked := Rank(scores)
	want := []struct {
		uid    string
		name   string
		points int
	}{
		{"alice", "Alice", 8},
		{"bob", "Bob", 8},
		{"carol", "user_caro", 0},
		{"dave", "user_dave", 0},
	}
	require.Len(t, ranked, len(want))
	for i, w := range want {
		assert.Equal(t, w.uid, ranked[i].UserID)
		assert.Equal(t, w.name, ranked[i].UserName)
		assert.Equal(t, w.points, ranked[i].TotalPoints)
		assert.Equal(t, i+1, ranked[i].Rank)
	}
	assert.Equal(t, "https://img.example/a.png", ranked[0].UserPhoto)

	job, ok, err := firestore.GetJobState(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report.RunID, job.RunID)
	assert.Equal(t, firestore.PhasePublished, job.CompletedPhase)
	assert.False(t, job.Stale())
	assert.Empty(t, job.Error)
}

func TestRecomputeTotalsMatchPredictions(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	_, err := (&Recomputer{Store: store}).Recompute(ctx)
	require.NoError(t, err)

	fixtures, ids, err := firestore.GetPredictionFixtures(ctx, store)
	require.NoError(t, err)
	require.Len(t, fixtures, 4)
	sums := make(map[string]int)
	for _, id := range ids {
		preds, _, err := firestore.GetUserPredictions(ctx, store, id)
		require.NoError(t, err)
		for _, p := range preds {
			sums[p.UserID] += p.Points
		}
	}
	scores, err := firestore.GetLeaderboard(ctx, store)
	require.NoError(t, err)
	require.Len(t, scores, len(sums))
	for _, s := range scores {
		assert.Equal(t, sums[s.UserID], s.TotalPoints, s.UserID)
	}

	// a second run changes nothing
	report, err := (&Recomputer{Store: store}).Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed)
}

func TestRecomputeFailureKeepsEarlierPhases(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	store.DenyWrites(firestore.LEADERBOARD_COLLECTION + "/")

	_, err := (&Recomputer{Store: store}).Recompute(ctx)
	require.Error(t, err)

	p, _, err := firestore.GetPrediction(ctx, store, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Points, "phase 1 stays committed")

	scores, err := firestore.GetLeaderboard(ctx, store)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "ghost", scores[0].UserID)

	job, _, err := firestore.GetJobState(ctx, store)
	require.NoError(t, err)
	assert.True(t, job.Stale())
	assert.Equal(t, firestore.PhaseAggregate, job.CompletedPhase)
	assert.Contains(t, job.Error, "publishing leaderboard")
}

func TestRecomputeDryRun(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	var out bytes.Buffer

	report, err := (&Recomputer{Store: store, DryRun: true, DryRunOutput: &out}).Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Changed)
	standing, ok := Standing(report.Standings, "alice")
	require.True(t, ok)
	assert.Equal(t, 8, standing.TotalPoints)

	p, _, err := firestore.GetPrediction(ctx, store, 1, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points, "dry run writes nothing")
	_, ok, err = firestore.GetJobState(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Contains(t, out.String(), "DRY RUN: would delete leaderboard/ghost")
	assert.Equal(t, 5+1+4, strings.Count(out.String(), "DRY RUN:"))
}

func TestRank(t *testing.T) {
	scores := []firestore.UserScore{
		{UserID: "zed", TotalPoints: 3},
		{UserID: "amy", TotalPoints: 10},
		{UserID: "bob", TotalPoints: 3},
		{UserID: "cat", TotalPoints: 0},
	}
	ranked := Rank(scores)
	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.UserID
		assert.Equal(t, i+1, s.Rank)
	}
	assert.Equal(t, []string{"amy", "bob", "zed", "cat"}, ids)
	assert.Equal(t, "zed", scores[0].UserID, "input untouched")

	assert.Len(t, Top(ranked, 2), 2)
	assert.Len(t, Top(ranked, 10), 4)
	s, ok := Standing(ranked, "zed")
	assert.True(t, ok)
	assert.Equal(t, 3, s.Rank)
	_, ok = Standing(ranked, "nobody")
	assert.False(t, ok)
}

func TestRead(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	for i, uid := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, firestore.LeaderboardPath(uid), firestore.UserScore{UserID: uid, TotalPoints: 10 - i}))
	}
	v, err := Read(ctx, store, 1, "c")
	require.NoError(t, err)
	require.Len(t, v.Top, 1)
	assert.Equal(t, "a", v.Top[0].UserID)
	require.NotNil(t, v.Mine)
	assert.Equal(t, 3, v.Mine.Rank)

	v, err = Read(ctx, store, DefaultTop, "")
	require.NoError(t, err)
	assert.Len(t, v.Top, 3)
	assert.Nil(t, v.Mine)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]firestore.UserScore{{TotalPoints: 2}, {TotalPoints: 4}, {TotalPoints: 9}})
	assert.Equal(t, 3, s.Users)
	assert.Equal(t, 15, s.Total)
	assert.Equal(t, 9, s.Max)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 4.0, s.Median, 1e-9)
	assert.Greater(t, s.StdDev, 0.0)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestExport(t *testing.T) {
	ranked := Rank([]firestore.UserScore{{UserID: "u1", UserName: "One", TotalPoints: 5}, {UserID: "u2", UserName: "Two", TotalPoints: 8}})
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, ranked))

	xl, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer xl.Close()
	rows, err := xl.GetRows(xl.GetSheetName(xl.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"1", "u2", "Two", "8"}, rows[1])
}
