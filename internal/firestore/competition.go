package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// ManagedCompetition is a league an administrator has added to the competitions catalog.
type ManagedCompetition struct {
	LeagueID    int     `firestore:"leagueId" json:"leagueId"`
	Name        string  `firestore:"name" json:"name"`
	Logo        string  `firestore:"logo" json:"logo"`
	CountryName string  `firestore:"countryName" json:"countryName"`
	CountryFlag *string `firestore:"countryFlag" json:"countryFlag"`
}

func (c ManagedCompetition) String() string {
	var sb strings.Builder
	sb.WriteString("ManagedCompetition\n")
	ss := make([]string, 0)
	ss = append(ss, treeInt("LeagueID", 0, false, c.LeagueID))
	ss = append(ss, treeString("Name", 0, false, c.Name))
	ss = append(ss, treeString("Logo", 0, false, c.Logo))
	ss = append(ss, treeString("CountryName", 0, c.CountryFlag == nil, c.CountryName))
	if c.CountryFlag != nil {
		ss = append(ss, treeString("CountryFlag", 0, true, *c.CountryFlag))
	}
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// ManagedCompetitionPath is the catalog document of a league.
func ManagedCompetitionPath(leagueID int) string {
	return docstore.Join(MANAGED_COMPETITIONS_COLLECTION, IDKey(leagueID))
}

// GetManagedCompetitions lists the competitions catalog ordered by league id.
func GetManagedCompetitions(ctx context.Context, store docstore.Store) ([]ManagedCompetition, error) {
	docs, err := store.List(ctx, MANAGED_COMPETITIONS_COLLECTION)
	if err != nil {
		return nil, fmt.Errorf("GetManagedCompetitions: unable to list competitions: %w", err)
	}
	comps := make([]ManagedCompetition, len(docs))
	for i, doc := range docs {
		if err := doc.DataTo(&comps[i]); err != nil {
			return nil, fmt.Errorf("GetManagedCompetitions: unable to decode %s: %w", doc.Path, err)
		}
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].LeagueID < comps[j].LeagueID })
	return comps, nil
}
