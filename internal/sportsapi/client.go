// Package sportsapi is a client for the football sports-data API and a locally cached catalog built on it.
package sportsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"github.com/segmentio/fasthash/jody"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "https://v3.football.api-sports.io"
	DefaultBookmaker = 8
	DefaultTimeout   = 20 * time.Second

	// minSearch is the shortest query the search endpoints accept.
	minSearch = 3
	// maxPages bounds paginated endpoints.
	maxPages = 50
)

// NotFoundError is returned when a lookup by id yields nothing.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ClientConfig configures a Client. Zero values take defaults.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Key        string
	Timeout    time.Duration
	Bookmaker  int
	Logger     *zap.Logger
	// SearchCache, if set, keeps search responses.
	SearchCache *localstore.Cache
}

// Client calls the sports-data API. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	key         string
	bookmaker   int
	logger      *zap.Logger
	searchCache *localstore.Cache
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	bookmaker := cfg.Bookmaker
	if bookmaker <= 0 {
		bookmaker = DefaultBookmaker
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		key:         strings.TrimSpace(cfg.Key),
		bookmaker:   bookmaker,
		logger:      logger,
		searchCache: cfg.SearchCache,
	}
}

// Bookmaker is the bookmaker whose odds are used.
func (c *Client) Bookmaker() int {
	return c.bookmaker
}

func (c *Client) endpointURL(endpoint string, q url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

type paged[T any] struct {
	Paging struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	} `json:"paging"`
	Response []T `json:"response"`
}

func get[T any](ctx context.Context, c *Client, endpoint string, q url.Values) ([]T, error) {
	u := c.endpointURL(endpoint, q)
	body, err := DoRequest(ctx, c.httpClient, c.key, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	out, err := decodeEnvelope[T](body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	c.logger.Debug("sports api request", zap.String("endpoint", endpoint), zap.String("query", q.Encode()), zap.Int("results", len(out)))
	return out, nil
}

func getAllPages[T any](ctx context.Context, c *Client, endpoint string, q url.Values) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		pq := url.Values{}
		for k, v := range q {
			pq[k] = v
		}
		if page > 1 {
			pq.Set("page", strconv.Itoa(page))
		}
		body, err := DoRequest(ctx, c.httpClient, c.key, c.endpointURL(endpoint, pq))
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", endpoint, page, err)
		}
		items, err := decodeEnvelope[T](body)
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", endpoint, page, err)
		}
		all = append(all, items...)
		var p paged[T]
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%s: page %d: failed to decode paging: %w", endpoint, page, err)
		}
		if p.Paging.Current >= p.Paging.Total {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

// searchKey is the cache key of a search response.
func searchKey(endpoint string, q url.Values) string {
	h := jody.HashString64(endpoint)
	h = jody.AddString64(h, "?"+q.Encode())
	return fmt.Sprintf("goalstack_search_%016x", h)
}

func search[T any](ctx context.Context, c *Client, endpoint string, query string) ([]T, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearch {
		return []T{}, nil
	}
	q := url.Values{"search": {query}}
	key := searchKey(endpoint, q)
	if c.searchCache != nil {
		var cached []T
		ok, err := c.searchCache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.Warn("unable to read search cache", zap.String("key", key), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}
	out, err := get[T](ctx, c, endpoint, q)
	if err != nil {
		return nil, err
	}
	if c.searchCache != nil {
		if err := c.searchCache.Put(ctx, key, out); err != nil {
			c.logger.Warn("unable to write search cache", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// FixturesByDate lists the fixtures played on date's calendar day.
func (c *Client) FixturesByDate(ctx context.Context, date time.Time) ([]firestore.Fixture, error) {
	return get[firestore.Fixture](ctx, c, "fixtures", url.Values{"date": {date.Format("2006-01-02")}})
}

// FixtureByID looks up a single fixture.
func (c *Client) FixtureByID(ctx context.Context, id int) (firestore.Fixture, error) {
	fs, err := get[firestore.Fixture](ctx, c, "fixtures", url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return firestore.Fixture{}, err
	}
	if len(fs) == 0 {
		return firestore.Fixture{}, NotFoundError{Kind: "fixture", ID: id}
	}
	return fs[0], nil
}

// LiveFixtures lists every fixture in play.
func (c *Client) LiveFixtures(ctx context.Context) ([]firestore.Fixture, error) {
	return get[firestore.Fixture](ctx, c, "fixtures", url.Values{"live": {"all"}})
}

// FixturesByTeamSeason lists a team's fixtures in a season.
func (c *Client) FixturesByTeamSeason(ctx context.Context, team, season int) ([]firestore.Fixture, error) {
	return get[firestore.Fixture](ctx, c, "fixtures", url.Values{"team": {strconv.Itoa(team)}, "season": {strconv.Itoa(season)}})
}

// TeamByID looks up a single team.
func (c *Client) TeamByID(ctx context.Context, id int) (TeamInfo, error) {
	ts, err := get[TeamInfo](ctx, c, "teams", url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return TeamInfo{}, err
	}
	if len(ts) == 0 {
		return TeamInfo{}, NotFoundError{Kind: "team", ID: id}
	}
	return ts[0], nil
}

// TeamsByCountry lists the clubs and national sides of a country.
func (c *Client) TeamsByCountry(ctx context.Context, country string) ([]TeamInfo, error) {
	return get[TeamInfo](ctx, c, "teams", url.Values{"country": {country}})
}

// SearchTeams finds teams by name. Queries shorter than three characters match nothing.
func (c *Client) SearchTeams(ctx context.Context, query string) ([]TeamInfo, error) {
	return search[TeamInfo](ctx, c, "teams", query)
}

// SearchLeagues finds leagues by name. Queries shorter than three characters match nothing.
func (c *Client) SearchLeagues(ctx context.Context, query string) ([]LeagueInfo, error) {
	return search[LeagueInfo](ctx, c, "leagues", query)
}

// LeagueByID looks up a single league.
func (c *Client) LeagueByID(ctx context.Context, id int) (LeagueInfo, error) {
	ls, err := get[LeagueInfo](ctx, c, "leagues", url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return LeagueInfo{}, err
	}
	if len(ls) == 0 {
		return LeagueInfo{}, NotFoundError{Kind: "league", ID: id}
	}
	return ls[0], nil
}

// Countries lists every country the API knows.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	return get[Country](ctx, c, "countries", url.Values{})
}

// Standings returns the tables of a league season.
func (c *Client) Standings(ctx context.Context, league, season int) ([]LeagueStandings, error) {
	return get[LeagueStandings](ctx, c, "standings", url.Values{"league": {strconv.Itoa(league)}, "season": {strconv.Itoa(season)}})
}

// Players returns a team's squad for a season, following pagination.
func (c *Client) Players(ctx context.Context, team, season int) ([]PlayerInfo, error) {
	return getAllPages[PlayerInfo](ctx, c, "players", url.Values{"team": {strconv.Itoa(team)}, "season": {strconv.Itoa(season)}})
}

// Odds returns the configured bookmaker's odds for a fixture.
func (c *Client) Odds(ctx context.Context, fixture int) ([]FixtureOdds, error) {
	return get[FixtureOdds](ctx, c, "odds", url.Values{"fixture": {strconv.Itoa(fixture)}, "bookmaker": {strconv.Itoa(c.bookmaker)}})
}

// IsNotFound reports whether err is a lookup that found nothing.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
