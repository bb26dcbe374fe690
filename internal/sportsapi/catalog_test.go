package sportsapi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	mu          sync.Mutex
	countries   []Country
	countryErr  error
	teams       map[string][]TeamInfo
	failCountry string
	calls       map[string]int
}

func (f *fakeSource) Countries(ctx context.Context) ([]Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["countries"]++
	return f.countries, f.countryErr
}

func (f *fakeSource) TeamsByCountry(ctx context.Context, country string) ([]TeamInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[country]++
	if country == f.failCountry {
		return nil, errors.New("boom")
	}
	return f.teams[country], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		countries: []Country{{Name: "Brazil"}, {Name: "Iraq"}, {Name: "Spain"}},
		teams: map[string][]TeamInfo{
			"Brazil": {{Team: Team{ID: 6, Name: "Brazil", National: true}}, {Team: Team{ID: 126, Name: "Sao Paulo"}}},
			"Iraq":   {{Team: Team{ID: 1567, Name: "Iraq", National: true}}},
			"Spain":  {{Team: Team{ID: 9, Name: "Spain", National: true}}},
		},
		calls: make(map[string]int),
	}
}

func TestNationalTeams(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.failCountry = "Iraq"
	cat := NewCatalog(src, docstore.NewMemory(), localstore.NewCache(localstore.NewMap(), 0), nil)
	cat.Concurrency = 2

	teams, err := cat.NationalTeams(ctx)
	require.NoError(t, err)
	ids := make([]int, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
	}
	assert.Equal(t, []int{6, 9}, ids, "clubs are dropped and a failing country contributes nothing")

	_, err = cat.NationalTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls["countries"])
	assert.Equal(t, 1, src.calls["Brazil"], "second read is served from the cache")
}

func TestCatalogExpiry(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := localstore.NewCache(localstore.NewMap(), 0).WithClock(func() time.Time { return now })
	cat := NewCatalog(src, docstore.NewMemory(), cache, nil)

	_, err := cat.Countries(ctx)
	require.NoError(t, err)
	now = now.Add(localstore.DefaultTTL - time.Minute)
	_, err = cat.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls["countries"])

	now = now.Add(2 * time.Minute)
	_, err = cat.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls["countries"])
}

func TestCountriesFallback(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.countryErr = errors.New("offline")
	core, logs := observer.New(zap.WarnLevel)
	cat := NewCatalog(src, docstore.NewMemory(), localstore.NewCache(localstore.NewMap(), 0), zap.New(core))

	countries, err := cat.Countries(ctx)
	require.NoError(t, err)
	assert.Empty(t, countries)
	teams, err := cat.NationalTeams(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.GreaterOrEqual(t, logs.FilterMessageSnippet("unable to fetch countries").Len(), 1)

	src.countryErr = nil
	countries, err = cat.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 3, "failures are not cached")
}

func TestCompetitions(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	flag := "https://media.api-sports.io/flags/iq.svg"
	require.NoError(t, store.Set(ctx, firestore.ManagedCompetitionPath(542), firestore.ManagedCompetition{LeagueID: 542, Name: "Iraqi League", CountryName: "Iraq", CountryFlag: &flag}))
	require.NoError(t, store.Set(ctx, firestore.ManagedCompetitionPath(39), firestore.ManagedCompetition{LeagueID: 39, Name: "EPL", CountryName: "England"}))
	cat := NewCatalog(newFakeSource(), store, localstore.NewCache(localstore.NewMap(), 0), nil)

	comps, err := cat.Competitions(ctx)
	require.NoError(t, err)
	require.Len(t, comps, len(PopularLeagues)+1)
	assert.Equal(t, 542, comps[len(comps)-1].LeagueID)
	var epl firestore.ManagedCompetition
	for _, c := range comps {
		if c.LeagueID == 39 {
			epl = c
		}
	}
	if diff := cmp.Diff(firestore.ManagedCompetition{LeagueID: 39, Name: "EPL", CountryName: "England"}, epl); diff != "" {
		t.Errorf("managed entry should win (-want +got):\n%s", diff)
	}

	// served from the cache even after the store changes
	require.NoError(t, store.Delete(ctx, firestore.ManagedCompetitionPath(542)))
	again, err := cat.Competitions(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(comps))

	require.NoError(t, cat.Invalidate(ctx))
	again, err = cat.Competitions(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(PopularLeagues))
}

func TestCompetitionsFallback(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	cat := NewCatalog(newFakeSource(), failingList{store}, localstore.NewCache(localstore.NewMap(), 0), nil)

	comps, err := cat.Competitions(ctx)
	require.NoError(t, err)
	assert.Len(t, comps, len(PopularLeagues))
}

type failingList struct {
	docstore.Store
}

func (failingList) List(ctx context.Context, collection string) ([]*docstore.Document, error) {
	return nil, errors.New("permission denied")
}
