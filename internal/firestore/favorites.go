package firestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
)

// TeamType distinguishes national sides from clubs.
type TeamType string

const (
	National TeamType = "National"
	Club     TeamType = "Club"
)

// FavoriteTeam is a team the user starred.
type FavoriteTeam struct {
	TeamID int      `firestore:"teamId" json:"teamId"`
	Name   string   `firestore:"name" json:"name"`
	Logo   string   `firestore:"logo" json:"logo"`
	Type   TeamType `firestore:"type" json:"type"`
}

// FavoriteLeague is a competition the user starred.
type FavoriteLeague struct {
	LeagueID int    `firestore:"leagueId" json:"leagueId"`
	Name     string `firestore:"name" json:"name"`
	Logo     string `firestore:"logo" json:"logo"`

	// NotificationsEnabled is absent on records written before the preference existed. Absent means enabled.
	NotificationsEnabled *bool `firestore:"notificationsEnabled,omitempty" json:"notificationsEnabled,omitempty"`
}

// Notifies reports whether match notifications for this league are on.
func (l FavoriteLeague) Notifies() bool {
	return l.NotificationsEnabled == nil || *l.NotificationsEnabled
}

// CrownedTeam is a highlighted team with a free-text note. It is independent of FavoriteTeam.
type CrownedTeam struct {
	TeamID int    `firestore:"teamId" json:"teamId"`
	Name   string `firestore:"name" json:"name"`
	Logo   string `firestore:"logo" json:"logo"`
	Note   string `firestore:"note" json:"note"`
}

// NotificationSettings holds the global notification switches.
type NotificationSettings struct {
	News *bool `firestore:"news,omitempty" json:"news,omitempty"`
}

// Favorites is the favorites record of one identity, stored locally for guests or at users/{uid}/favorites/data.
type Favorites struct {
	// UserID is set on the remote record only.
	UserID string `firestore:"userId,omitempty" json:"userId,omitempty"`

	Teams                map[string]FavoriteTeam   `firestore:"teams,omitempty" json:"teams,omitempty"`
	Leagues              map[string]FavoriteLeague `firestore:"leagues,omitempty" json:"leagues,omitempty"`
	CrownedTeams         map[string]CrownedTeam    `firestore:"crownedTeams,omitempty" json:"crownedTeams,omitempty"`
	NotificationsEnabled *NotificationSettings     `firestore:"notificationsEnabled,omitempty" json:"notificationsEnabled,omitempty"`
}

// NewFavorites returns an empty record with every map allocated.
func NewFavorites() Favorites {
	return Favorites{
		Teams:        make(map[string]FavoriteTeam),
		Leagues:      make(map[string]FavoriteLeague),
		CrownedTeams: make(map[string]CrownedTeam),
	}
}

// Normalized fills nil maps so callers can index without checks.
func (f Favorites) Normalized() Favorites {
	if f.Teams == nil {
		f.Teams = make(map[string]FavoriteTeam)
	}
	if f.Leagues == nil {
		f.Leagues = make(map[string]FavoriteLeague)
	}
	if f.CrownedTeams == nil {
		f.CrownedTeams = make(map[string]CrownedTeam)
	}
	return f
}

// Clone deep-copies the record.
func (f Favorites) Clone() Favorites {
	c := NewFavorites()
	c.UserID = f.UserID
	for k, v := range f.Teams {
		c.Teams[k] = v
	}
	for k, v := range f.Leagues {
		if v.NotificationsEnabled != nil {
			b := *v.NotificationsEnabled
			v.NotificationsEnabled = &b
		}
		c.Leagues[k] = v
	}
	for k, v := range f.CrownedTeams {
		c.CrownedTeams[k] = v
	}
	if f.NotificationsEnabled != nil {
		n := *f.NotificationsEnabled
		if n.News != nil {
			b := *n.News
			n.News = &b
		}
		c.NotificationsEnabled = &n
	}
	return c
}

// IsEmpty reports whether nothing is starred or crowned. Notification settings alone do not count.
func (f Favorites) IsEmpty() bool {
	return len(f.Teams) == 0 && len(f.Leagues) == 0 && len(f.CrownedTeams) == 0
}

// NewsEnabled reports whether news notifications are on. Absent means enabled.
func (f Favorites) NewsEnabled() bool {
	return f.NotificationsEnabled == nil || f.NotificationsEnabled.News == nil || *f.NotificationsEnabled.News
}

func (f Favorites) String() string {
	var sb strings.Builder
	sb.WriteString("Favorites\n")
	ss := make([]string, 0)
	if f.UserID != "" {
		ss = append(ss, treeString("UserID", 0, false, f.UserID))
	}
	ss = append(ss, treeElement(fmt.Sprintf("Teams (%d)", len(f.Teams)), 0, false))
	keys := SortedKeys(f.Teams)
	for i, k := range keys {
		t := f.Teams[k]
		ss = append(ss, treeString(k, 2, i == len(keys)-1, fmt.Sprintf("%s [%s]", t.Name, t.Type)))
	}
	ss = append(ss, treeElement(fmt.Sprintf("Leagues (%d)", len(f.Leagues)), 0, false))
	keys = SortedKeys(f.Leagues)
	for i, k := range keys {
		l := f.Leagues[k]
		ss = append(ss, treeString(k, 2, i == len(keys)-1, fmt.Sprintf("%s (notifications %t)", l.Name, l.Notifies())))
	}
	ss = append(ss, treeElement(fmt.Sprintf("CrownedTeams (%d)", len(f.CrownedTeams)), 0, false))
	keys = SortedKeys(f.CrownedTeams)
	for i, k := range keys {
		c := f.CrownedTeams[k]
		v := c.Name
		if c.Note != "" {
			v += fmt.Sprintf(" %q", c.Note)
		}
		ss = append(ss, treeString(k, 2, i == len(keys)-1, v))
	}
	var news *bool
	if f.NotificationsEnabled != nil {
		news = f.NotificationsEnabled.News
	}
	ss = append(ss, treeBoolPtr("News", 0, true, news, true))
	sb.WriteString(strings.Join(ss, "\n"))
	return sb.String()
}

// GetFavorites reads the remote favorites record of uid. A missing document yields an empty record.
func GetFavorites(ctx context.Context, store docstore.Store, uid string) (Favorites, error) {
	doc, err := store.Get(ctx, FavoritesPath(uid))
	if err != nil {
		return Favorites{}, fmt.Errorf("GetFavorites: unable to get favorites of %s: %w", uid, err)
	}
	if !doc.Exists() {
		return NewFavorites(), nil
	}
	var f Favorites
	if err := doc.DataTo(&f); err != nil {
		return Favorites{}, fmt.Errorf("GetFavorites: unable to decode favorites of %s: %w", uid, err)
	}
	return f.Normalized(), nil
}
