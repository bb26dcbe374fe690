package updateleaderboard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *docstore.Memory {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemory()
	home, away := 1, 0
	var f firestore.Fixture
	f.Fixture.ID = 100
	f.Fixture.Status.Short = "FT"
	f.Goals.Home, f.Goals.Away = &home, &away
	require.NoError(t, store.Set(ctx, firestore.PredictionFixturePath(100), firestore.PredictionFixture{FixtureData: f}))
	for uid, pred := range map[string][2]int{"amy": {1, 0}, "ben": {2, 1}, "cat": {0, 0}} {
		p := firestore.Prediction{UserID: uid, FixtureID: 100, HomeGoals: pred[0], AwayGoals: pred[1]}
		require.NoError(t, store.Set(ctx, firestore.PredictionPath(100, uid), p))
	}
	return store
}

func newContext(store docstore.Store, out *bytes.Buffer) *Context {
	ctx := NewContext(context.Background())
	ctx.Store = store
	ctx.Out = out
	ctx.NoProgress = true
	ctx.Top = 10
	return ctx
}

func TestRecomputeConfirm(t *testing.T) {
	store := seed(t)
	var out bytes.Buffer
	ctx := newContext(store, &out)
	asked := 0
	ctx.Confirm = func(string) (bool, error) {
		asked++
		return false, nil
	}

	require.NoError(t, Recompute(ctx))
	assert.Equal(t, 1, asked)
	assert.Contains(t, out.String(), "Aborted.")
	scores, err := firestore.GetLeaderboard(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, scores)

	ctx.Force = true
	require.NoError(t, Recompute(ctx))
	assert.Equal(t, 1, asked, "force skips the prompt")
	scores, err = firestore.GetLeaderboard(context.Background(), store)
	require.NoError(t, err)
	assert.Len(t, scores, 3)
}

func TestShow(t *testing.T) {
	store := seed(t)
	var out bytes.Buffer
	ctx := newContext(store, &out)
	ctx.Force = true
	require.NoError(t, Recompute(ctx))

	out.Reset()
	ctx.Top = 1
	ctx.User = "cat"
	ctx.Stats = true
	require.NoError(t, Show(ctx))
	s := out.String()
	assert.Contains(t, s, "amy")
	assert.Contains(t, s, "cat")
	assert.NotContains(t, s, "ben")
	assert.Contains(t, s, "3 users, 8 points")
}

func TestExport(t *testing.T) {
	store := seed(t)
	var out bytes.Buffer
	ctx := newContext(store, &out)
	ctx.Force = true
	require.NoError(t, Recompute(ctx))

	ctx.Output = filepath.Join(t.TempDir(), "leaderboard.xlsx")
	require.NoError(t, Export(ctx))
	info, err := os.Stat(ctx.Output)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	ctx.DryRun = true
	ctx.Output = filepath.Join(t.TempDir(), "never.xlsx")
	require.NoError(t, Export(ctx))
	_, err = os.Stat(ctx.Output)
	assert.True(t, os.IsNotExist(err))
}
