package editfavorites

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abozbere2001-collab/Nabd6/internal/accounts"
	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/favorites"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	store *docstore.Memory
	kv    *localstore.Map
	out   bytes.Buffer
}

func (e *env) context(acct accounts.Account) *Context {
	ctx := NewContext(context.Background())
	ctx.Store = e.store
	ctx.KV = e.kv
	ctx.Out = &e.out
	ctx.Account = acct
	return ctx
}

func newEnv() *env {
	return &env{store: docstore.NewMemory(), kv: localstore.NewMap()}
}

func TestGuestThenSignIn(t *testing.T) {
	e := newEnv()

	guest := e.context(accounts.Account{})
	guest.Item = favorites.Item{ID: 529, Name: "Barcelona"}
	require.NoError(t, ToggleTeam(guest))
	guest.Item = favorites.Item{ID: 140, Name: "La Liga"}
	require.NoError(t, ToggleLeague(guest))
	assert.Contains(t, e.out.String(), "ToggleTeam 529 (Barcelona) added for guest")

	guest.Item = favorites.Item{ID: 1567, Name: "Iraq", National: true}
	err := ToggleCrown(guest)
	assert.True(t, errors.Is(err, favorites.ErrSignInRequired), "got %v", err)

	raw, ok, err := e.kv.Get(context.Background(), favorites.LocalKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Barcelona")

	user := e.context(accounts.Account{UID: "abcdef123", Email: "a@example.com"})
	require.NoError(t, SignIn(user))
	assert.Contains(t, e.out.String(), "Created profile for abcdef123")

	remote, err := firestore.GetFavorites(context.Background(), e.store, "abcdef123")
	require.NoError(t, err)
	assert.Contains(t, remote.Teams, "529")
	assert.Contains(t, remote.Leagues, "140")
	assert.Equal(t, "abcdef123", remote.UserID)

	_, ok, err = e.kv.Get(context.Background(), favorites.LocalKey)
	require.NoError(t, err)
	assert.False(t, ok, "device record is cleared after the merge")

	profile, err := firestore.GetUserProfile(context.Background(), e.store, "abcdef123")
	require.NoError(t, err)
	assert.Equal(t, "user_abcde", profile.DisplayName)
}

func TestSignedInCommands(t *testing.T) {
	e := newEnv()
	ctx := e.context(accounts.Account{UID: "u1"})

	ctx.Item = favorites.Item{ID: 1567, Name: "Iraq", National: true}
	ctx.Note = "my team"
	require.NoError(t, ToggleCrown(ctx))

	ctx.Scope = favorites.LeagueScope(39)
	err := SetNotification(ctx)
	assert.True(t, errors.Is(err, favorites.ErrNotFavorited), "got %v", err)

	ctx.Item = favorites.Item{ID: 39, Name: "Premier League"}
	require.NoError(t, ToggleLeague(ctx))
	ctx.Enabled = false
	require.NoError(t, SetNotification(ctx))
	ctx.Scope = favorites.News
	require.NoError(t, SetNotification(ctx))

	f, err := firestore.GetFavorites(context.Background(), e.store, "u1")
	require.NoError(t, err)
	assert.Equal(t, "my team", f.CrownedTeams["1567"].Note)
	assert.False(t, f.Leagues["39"].Notifies())
	assert.False(t, f.NewsEnabled())

	e.out.Reset()
	require.NoError(t, LsFavorites(ctx))
	assert.Contains(t, e.out.String(), "Premier League")
	assert.Contains(t, e.out.String(), "my team")
}

func TestLsMarksCrownedTeams(t *testing.T) {
	e := newEnv()
	ctx := e.context(accounts.Account{UID: "u2"})

	ctx.Item = favorites.Item{ID: 529, Name: "Barcelona"}
	require.NoError(t, ToggleTeam(ctx))
	require.NoError(t, ToggleCrown(ctx))
	ctx.Item = favorites.Item{ID: 541, Name: "Real Madrid"}
	require.NoError(t, ToggleTeam(ctx))

	e.out.Reset()
	require.NoError(t, LsFavorites(ctx))
	out := e.out.String()
	assert.Contains(t, out, "Club (crowned)")
	assert.Equal(t, 1, strings.Count(out, "(crowned)"), "only Barcelona is crowned:\n%s", out)

	ctx.Item = favorites.Item{ID: 529, Name: "Barcelona"}
	require.NoError(t, ToggleCrown(ctx))
	e.out.Reset()
	require.NoError(t, LsFavorites(ctx))
	assert.NotContains(t, e.out.String(), "(crowned)")
}

func TestWriteFailureIsReturned(t *testing.T) {
	e := newEnv()
	e.store.DenyWrites(firestore.USERS_COLLECTION + "/")
	ctx := e.context(accounts.Account{UID: "u1"})
	ctx.Item = favorites.Item{ID: 529, Name: "Barcelona"}

	err := ToggleTeam(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")
}
