package sportsapi

import (
	"context"
	"fmt"
	"sort"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	CountriesCacheKey     = "goalstack_countries_cache"
	NationalTeamsCacheKey = "goalstack_national_teams_cache"
	CompetitionsCacheKey  = "goalstack_competitions_cache"

	// DefaultConcurrency bounds the per-country team requests.
	DefaultConcurrency = 8
)

// PopularLeagues seed the competitions catalog before any managed competition is added.
var PopularLeagues = []firestore.ManagedCompetition{
	{LeagueID: 2, Name: "UEFA Champions League", Logo: "https://media.api-sports.io/football/leagues/2.png", CountryName: "World"},
	{LeagueID: 39, Name: "Premier League", Logo: "https://media.api-sports.io/football/leagues/39.png", CountryName: "England"},
	{LeagueID: 61, Name: "Ligue 1", Logo: "https://media.api-sports.io/football/leagues/61.png", CountryName: "France"},
	{LeagueID: 78, Name: "Bundesliga", Logo: "https://media.api-sports.io/football/leagues/78.png", CountryName: "Germany"},
	{LeagueID: 135, Name: "Serie A", Logo: "https://media.api-sports.io/football/leagues/135.png", CountryName: "Italy"},
	{LeagueID: 140, Name: "La Liga", Logo: "https://media.api-sports.io/football/leagues/140.png", CountryName: "Spain"},
}

// CatalogSource is the part of the API the catalog needs.
type CatalogSource interface {
	Countries(ctx context.Context) ([]Country, error)
	TeamsByCountry(ctx context.Context, country string) ([]TeamInfo, error)
}

// Catalog serves the slow-changing reference lists from a local cache, filling it from the API and the document
// store. Failures never surface to the caller: a list that cannot be built is empty and a warning is logged.
type Catalog struct {
	source      CatalogSource
	store       docstore.Store
	cache       *localstore.Cache
	logger      *zap.Logger
	Concurrency int
}

func NewCatalog(source CatalogSource, store docstore.Store, cache *localstore.Cache, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{source: source, store: store, cache: cache, logger: logger, Concurrency: DefaultConcurrency}
}

func (c *Catalog) cached(ctx context.Context, key string, v interface{}) bool {
	ok, err := c.cache.Get(ctx, key, v)
	if err != nil {
		c.logger.Warn("unable to read catalog cache", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (c *Catalog) keep(ctx context.Context, key string, v interface{}) {
	if err := c.cache.Put(ctx, key, v); err != nil {
		c.logger.Warn("unable to write catalog cache", zap.String("key", key), zap.Error(err))
	}
}

// Countries returns every country. The error is non-nil only when ctx is done.
func (c *Catalog) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if c.cached(ctx, CountriesCacheKey, &countries) {
		return countries, nil
	}
	countries, err := c.source.Countries(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return []Country{}, ctx.Err()
		}
		c.logger.Warn("unable to fetch countries, continuing without them", zap.Error(err))
		return []Country{}, nil
	}
	if len(countries) > 0 {
		c.keep(ctx, CountriesCacheKey, countries)
	}
	return countries, nil
}

// NationalTeams returns the national sides of every country. A country whose teams cannot be fetched contributes
// none. The error is non-nil only when ctx is done.
func (c *Catalog) NationalTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if c.cached(ctx, NationalTeamsCacheKey, &teams) && len(teams) > 0 {
		return teams, nil
	}
	countries, err := c.Countries(ctx)
	if err != nil {
		return []Team{}, err
	}

	limit := c.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	perCountry := make([][]Team, len(countries))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, country := range countries {
		i, name := i, country.Name
		g.Go(func() error {
			infos, err := c.source.TeamsByCountry(ctx, name)
			if err != nil {
				c.logger.Debug("unable to fetch teams of country", zap.String("country", name), zap.Error(err))
				return nil
			}
			for _, info := range infos {
				if info.Team.National {
					perCountry[i] = append(perCountry[i], info.Team)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return []Team{}, ctx.Err()
	}

	teams = make([]Team, 0)
	for _, ts := range perCountry {
		teams = append(teams, ts...)
	}
	if len(teams) == 0 {
		c.logger.Warn("no national teams could be fetched")
		return teams, nil
	}
	c.keep(ctx, NationalTeamsCacheKey, teams)
	return teams, nil
}

// Competitions returns the popular leagues combined with the managed competitions, the managed entry winning when
// both name the same league, ordered by league id. If the managed competitions cannot be read the popular leagues
// are returned alone and nothing is cached.
func (c *Catalog) Competitions(ctx context.Context) ([]firestore.ManagedCompetition, error) {
	var comps []firestore.ManagedCompetition
	if c.cached(ctx, CompetitionsCacheKey, &comps) && len(comps) > 0 {
		return comps, nil
	}
	combined := make(map[int]firestore.ManagedCompetition, len(PopularLeagues))
	for _, l := range PopularLeagues {
		combined[l.LeagueID] = l
	}
	managed, err := firestore.GetManagedCompetitions(ctx, c.store)
	if err != nil {
		if ctx.Err() != nil {
			return []firestore.ManagedCompetition{}, ctx.Err()
		}
		c.logger.Warn("unable to read managed competitions, falling back to popular leagues", zap.Error(err))
	}
	for _, m := range managed {
		combined[m.LeagueID] = m
	}
	comps = make([]firestore.ManagedCompetition, 0, len(combined))
	for _, m := range combined {
		comps = append(comps, m)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].LeagueID < comps[j].LeagueID })
	if err == nil {
		c.keep(ctx, CompetitionsCacheKey, comps)
	}
	return comps, nil
}

// Invalidate drops every cached list so the next read refetches.
func (c *Catalog) Invalidate(ctx context.Context) error {
	for _, key := range []string{CountriesCacheKey, NationalTeamsCacheKey, CompetitionsCacheKey} {
		if err := c.cache.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("Invalidate: unable to drop %s: %w", key, err)
		}
	}
	return nil
}
