package docstore

import (
	"context"
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type league struct {
	LeagueID int    `json:"leagueId"`
	Name     string `json:"name"`
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	doc, err := m.Get(context.Background(), "users/u1/favorites/data")
	require.NoError(t, err)
	assert.False(t, doc.Exists())
	assert.Equal(t, "data", doc.ID)
	assert.Nil(t, doc.Data())

	_, err = m.Get(context.Background(), "users")
	assert.Error(t, err)
}

func TestMemoryMergePreservesFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	path := "users/u1/favorites/data"

	require.NoError(t, m.Merge(ctx, path, Update("leagues.10", league{LeagueID: 10, Name: "Cup"})))
	require.NoError(t, m.Merge(ctx, path, Update("teams.5", map[string]interface{}{"teamId": 5})))

	doc, err := m.Get(ctx, path)
	require.NoError(t, err)
	want := map[string]interface{}{
		"leagues": map[string]interface{}{"10": map[string]interface{}{"leagueId": float64(10), "name": "Cup"}},
		"teams":   map[string]interface{}{"5": map[string]interface{}{"teamId": float64(5)}},
	}
	if diff := cmp.Diff(want, doc.Data()); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, m.Merge(ctx, path, Update("teams.5", Delete), Update("crownedTeams.7", Delete)))
	doc, err = m.Get(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, doc.Data()["teams"])
	assert.NotContains(t, doc.Data(), "crownedTeams")
}

func TestMemoryListSortedAndShallow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "leaderboard/b", map[string]int{"totalPoints": 3}))
	require.NoError(t, m.Set(ctx, "leaderboard/a", map[string]int{"totalPoints": 5}))
	require.NoError(t, m.Set(ctx, "leaderboard/a/sub/x", map[string]int{"totalPoints": 1}))

	docs, err := m.List(ctx, "leaderboard")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "leaderboard/b", docs[1].Path)
}

func TestMemoryWatchOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	path := "users/u1/favorites/data"

	var seen []int
	stop, err := m.Watch(ctx, path, func(d *Document) {
		if !d.Exists() {
			seen = append(seen, -1)
			return
		}
		var v struct{ N int }
		require.NoError(t, d.DataTo(&v))
		seen = append(seen, v.N)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Watchers(path))

	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Set(ctx, path, map[string]int{"N": i}))
	}
	stop()
	stop()
	require.NoError(t, m.Set(ctx, path, map[string]int{"N": 4}))

	assert.Equal(t, []int{-1, 1, 2, 3}, seen)
	assert.Equal(t, 0, m.Watchers(path))
}

func TestMemoryDenyWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.DenyWrites("users/")

	err := m.Merge(ctx, "users/u1/favorites/data", Update("teams.1", 1))
	require.Error(t, err)
	assert.True(t, errreport.IsPermissionDenied(err))

	var se *errreport.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errreport.OpUpdate, se.Operation)

	m.AllowWrites()
	assert.NoError(t, m.Merge(ctx, "users/u1/favorites/data", Update("teams.1", 1)))
}

func TestMemoryBatchAtomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "leaderboard/a", map[string]int{"totalPoints": 5}))
	m.DenyWrites("leaderboard/c")

	b := m.Batch()
	b.Delete("leaderboard/a")
	b.Set("leaderboard/b", map[string]int{"totalPoints": 1})
	b.Set("leaderboard/c", map[string]int{"totalPoints": 2})
	assert.Equal(t, 3, b.Len())
	require.Error(t, b.Commit(ctx))

	docs, err := m.List(ctx, "leaderboard")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)

	big := m.Batch()
	for i := 0; i <= MaxBatchSize; i++ {
		big.Delete("leaderboard/a")
	}
	assert.Error(t, big.Commit(ctx))
	assert.NoError(t, m.Batch().Commit(ctx))
}

func TestApplyUpdates(t *testing.T) {
	tests := []struct {
		name    string
		tree    map[string]interface{}
		updates []FieldUpdate
		want    map[string]interface{}
	}{
		{
			name:    "creates parents",
			tree:    map[string]interface{}{},
			updates: []FieldUpdate{Update("a.b.c", "x")},
			want:    map[string]interface{}{"a": map[string]interface{}{"b": map[string]interface{}{"c": "x"}}},
		},
		{
			name:    "delete under missing parent",
			tree:    map[string]interface{}{"z": true},
			updates: []FieldUpdate{Update("a.b", Delete)},
			want:    map[string]interface{}{"z": true},
		},
		{
			name:    "overwrites scalar parent",
			tree:    map[string]interface{}{"a": "scalar"},
			updates: []FieldUpdate{Update("a.b", 2)},
			want:    map[string]interface{}{"a": map[string]interface{}{"b": float64(2)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, ApplyUpdates(tt.tree, tt.updates))
			if diff := cmp.Diff(tt.want, tt.tree); diff != "" {
				t.Errorf("ApplyUpdates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
