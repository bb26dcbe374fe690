package pinfixtures

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/predictions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI map[int]firestore.Fixture

func (f fakeAPI) FixtureByID(ctx context.Context, id int) (firestore.Fixture, error) {
	fx, ok := f[id]
	if !ok {
		return firestore.Fixture{}, fmt.Errorf("fixture %d not found", id)
	}
	return fx, nil
}

func match(id int, status string) firestore.Fixture {
	var f firestore.Fixture
	f.Fixture.ID = id
	f.Fixture.Timestamp = 1714590000
	f.Fixture.Status.Short = status
	f.League.Name = "Premier League"
	f.Teams.Home.Name = "Arsenal"
	f.Teams.Away.Name = "Chelsea"
	return f
}

func TestPinLifecycle(t *testing.T) {
	api := fakeAPI{7: match(7, "NS")}
	store := docstore.NewMemory()
	var out bytes.Buffer
	ctx := NewContext(context.Background())
	ctx.Store = store
	ctx.API = api
	ctx.Out = &out
	ctx.FixtureID = 7

	ctx.DryRun = true
	require.NoError(t, PinFixture(ctx))
	pinned, err := predictions.IsPinned(ctx, store, 7)
	require.NoError(t, err)
	assert.False(t, pinned)
	assert.Contains(t, out.String(), "DRY RUN: would pin fixture")

	ctx.DryRun = false
	require.NoError(t, TogglePinFixture(ctx))
	pinned, err = predictions.IsPinned(ctx, store, 7)
	require.NoError(t, err)
	assert.True(t, pinned)

	out.Reset()
	require.NoError(t, LsPinned(ctx))
	assert.Contains(t, out.String(), "Arsenal")
	assert.Contains(t, out.String(), "NS (upcoming)")

	two, one := 2, 1
	done := match(7, "FT")
	done.Goals.Home, done.Goals.Away = &two, &one
	api[7] = done
	out.Reset()
	require.NoError(t, RefreshPinned(ctx))
	assert.Contains(t, out.String(), "Refreshed 1 pinned fixtures")
	pf, err := firestore.GetPredictionFixture(ctx, store, 7)
	require.NoError(t, err)
	assert.Equal(t, "FT", pf.FixtureData.Fixture.Status.Short)

	require.NoError(t, TogglePinFixture(ctx))
	pinned, err = predictions.IsPinned(ctx, store, 7)
	require.NoError(t, err)
	assert.False(t, pinned)
}

func TestPinUnknownFixture(t *testing.T) {
	ctx := NewContext(context.Background())
	ctx.Store = docstore.NewMemory()
	ctx.API = fakeAPI{}
	ctx.Out = &bytes.Buffer{}
	ctx.FixtureID = 404
	assert.Error(t, PinFixture(ctx))
}
