package favorites

import (
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
)

// ItemType selects which favorites map a toggle targets.
type ItemType int

const (
	Team ItemType = iota
	League
)

func (t ItemType) String() string {
	switch t {
	case Team:
		return "team"
	case League:
		return "league"
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

func (t ItemType) field() string {
	if t == League {
		return "leagues"
	}
	return "teams"
}

// Item is what the user taps to star: an id, a display name, a logo and, for teams, whether it is a national side.
type Item struct {
	ID       int
	Name     string
	Logo     string
	National bool
}

func (it Item) favoriteTeam() firestore.FavoriteTeam {
	typ := firestore.Club
	if it.National {
		typ = firestore.National
	}
	return firestore.FavoriteTeam{TeamID: it.ID, Name: it.Name, Logo: it.Logo, Type: typ}
}

func (it Item) favoriteLeague() firestore.FavoriteLeague {
	on := true
	return firestore.FavoriteLeague{LeagueID: it.ID, Name: it.Name, Logo: it.Logo, NotificationsEnabled: &on}
}

// ApplyTo returns a copy of f with updates applied the way the document store applies a merge write.
func ApplyTo(f firestore.Favorites, updates []docstore.FieldUpdate) (firestore.Favorites, error) {
	tree, err := docstore.ToMap(f)
	if err != nil {
		return firestore.Favorites{}, fmt.Errorf("ApplyTo: unable to encode favorites: %w", err)
	}
	if err := docstore.ApplyUpdates(tree, updates); err != nil {
		return firestore.Favorites{}, fmt.Errorf("ApplyTo: %w", err)
	}
	var out firestore.Favorites
	if err := docstore.Decode(tree, &out); err != nil {
		return firestore.Favorites{}, fmt.Errorf("ApplyTo: unable to decode favorites: %w", err)
	}
	return out.Normalized(), nil
}

// toggleUpdate flips membership of item in the map selected by typ.
func toggleUpdate(f firestore.Favorites, typ ItemType, item Item) docstore.FieldUpdate {
	key := firestore.IDKey(item.ID)
	path := []string{typ.field(), key}
	switch typ {
	case League:
		if _, ok := f.Leagues[key]; ok {
			return docstore.FieldUpdate{Path: path, Value: docstore.Delete}
		}
		return docstore.FieldUpdate{Path: path, Value: item.favoriteLeague()}
	default:
		if _, ok := f.Teams[key]; ok {
			return docstore.FieldUpdate{Path: path, Value: docstore.Delete}
		}
		return docstore.FieldUpdate{Path: path, Value: item.favoriteTeam()}
	}
}

func crownUpdate(f firestore.Favorites, item Item, note string) docstore.FieldUpdate {
	key := firestore.IDKey(item.ID)
	path := []string{"crownedTeams", key}
	if _, ok := f.CrownedTeams[key]; ok {
		return docstore.FieldUpdate{Path: path, Value: docstore.Delete}
	}
	return docstore.FieldUpdate{Path: path, Value: firestore.CrownedTeam{TeamID: item.ID, Name: item.Name, Logo: item.Logo, Note: note}}
}

// MergeUpdates are the field writes that fold a guest record into an account record.
// Every starred entry is written under its own key so account entries that are not in local are kept.
func MergeUpdates(local firestore.Favorites) []docstore.FieldUpdate {
	updates := make([]docstore.FieldUpdate, 0, len(local.Teams)+len(local.Leagues)+len(local.CrownedTeams)+1)
	for _, k := range firestore.SortedKeys(local.Teams) {
		updates = append(updates, docstore.FieldUpdate{Path: []string{"teams", k}, Value: local.Teams[k]})
	}
	for _, k := range firestore.SortedKeys(local.Leagues) {
		updates = append(updates, docstore.FieldUpdate{Path: []string{"leagues", k}, Value: local.Leagues[k]})
	}
	for _, k := range firestore.SortedKeys(local.CrownedTeams) {
		updates = append(updates, docstore.FieldUpdate{Path: []string{"crownedTeams", k}, Value: local.CrownedTeams[k]})
	}
	// news defaults to on, so only an explicit opt-out carries over
	if !local.NewsEnabled() {
		updates = append(updates, docstore.Update("notificationsEnabled.news", false))
	}
	return updates
}
