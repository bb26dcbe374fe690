// Package favorites keeps a user's starred teams and leagues and crowned teams in sync across the device and their account.
package favorites

import (
	"context"
	"fmt"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LocalKey is the device storage key of the guest favorites record.
const LocalKey = "goalstack_local_favorites_v2"

// Store is one backing location of a favorites record.
type Store interface {
	// Name identifies the store in logs and listings.
	Name() string

	// Load reads the current record.
	Load(ctx context.Context) (firestore.Favorites, error)

	// Apply writes only the given field paths.
	Apply(ctx context.Context, updates []docstore.FieldUpdate) error

	// Watch calls fn with the current record and after every change. The returned function stops watching.
	Watch(ctx context.Context, fn func(firestore.Favorites)) (func(), error)

	// Clear removes every team, league and crowned team.
	Clear(ctx context.Context) error
}

// Local is the guest record kept in device storage as JSON.
type Local struct {
	kv       localstore.KV
	notifier *localstore.Notifier
}

// NewLocal binds the guest record to kv. Every change is announced on notifier.
func NewLocal(kv localstore.KV, notifier *localstore.Notifier) *Local {
	if notifier == nil {
		notifier = localstore.NewNotifier()
	}
	return &Local{kv: kv, notifier: notifier}
}

func (l *Local) Name() string {
	return "local"
}

func emptyLocal() firestore.Favorites {
	f := firestore.NewFavorites()
	news := true
	f.NotificationsEnabled = &firestore.NotificationSettings{News: &news}
	return f
}

// Load never fails on bad data: missing or unreadable records read as empty with news notifications on.
func (l *Local) Load(ctx context.Context) (firestore.Favorites, error) {
	raw, ok, err := l.kv.Get(ctx, LocalKey)
	if err != nil {
		return firestore.Favorites{}, fmt.Errorf("Load: unable to read local favorites: %w", err)
	}
	if !ok || raw == "" {
		return emptyLocal(), nil
	}
	var f firestore.Favorites
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return emptyLocal(), nil
	}
	f.UserID = ""
	if f.NotificationsEnabled == nil {
		news := true
		f.NotificationsEnabled = &firestore.NotificationSettings{News: &news}
	}
	return f.Normalized(), nil
}

func (l *Local) save(ctx context.Context, f firestore.Favorites) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("save: unable to encode local favorites: %w", err)
	}
	if err := l.kv.Set(ctx, LocalKey, string(b)); err != nil {
		return fmt.Errorf("save: unable to write local favorites: %w", err)
	}
	l.notifier.Notify(LocalKey)
	return nil
}

func (l *Local) Apply(ctx context.Context, updates []docstore.FieldUpdate) error {
	cur, err := l.Load(ctx)
	if err != nil {
		return err
	}
	next, err := ApplyTo(cur, updates)
	if err != nil {
		return fmt.Errorf("Apply: %w", err)
	}
	return l.save(ctx, next)
}

func (l *Local) Watch(ctx context.Context, fn func(firestore.Favorites)) (func(), error) {
	cur, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	fn(cur)
	return l.notifier.Subscribe(func(key string) {
		if key != LocalKey {
			return
		}
		f, err := l.Load(ctx)
		if err != nil {
			return
		}
		fn(f)
	}), nil
}

func (l *Local) Clear(ctx context.Context) error {
	if err := l.kv.Remove(ctx, LocalKey); err != nil {
		return fmt.Errorf("Clear: unable to remove local favorites: %w", err)
	}
	l.notifier.Notify(LocalKey)
	return nil
}

// Remote is the account record at users/{uid}/favorites/data.
type Remote struct {
	store  docstore.Store
	uid    string
	logger *zap.Logger
}

func NewRemote(store docstore.Store, uid string) *Remote {
	return &Remote{store: store, uid: uid, logger: zap.NewNop()}
}

// WithLogger sets where undecodable pushes are logged.
func (r *Remote) WithLogger(logger *zap.Logger) *Remote {
	if logger != nil {
		r.logger = logger
	}
	return r
}

func (r *Remote) Name() string {
	return "remote:" + r.uid
}

// UID is the account the record belongs to.
func (r *Remote) UID() string {
	return r.uid
}

func (r *Remote) Load(ctx context.Context) (firestore.Favorites, error) {
	return firestore.GetFavorites(ctx, r.store, r.uid)
}

func (r *Remote) Apply(ctx context.Context, updates []docstore.FieldUpdate) error {
	return r.store.Merge(ctx, firestore.FavoritesPath(r.uid), updates...)
}

func (r *Remote) Watch(ctx context.Context, fn func(firestore.Favorites)) (func(), error) {
	return r.store.Watch(ctx, firestore.FavoritesPath(r.uid), func(doc *docstore.Document) {
		if !doc.Exists() {
			fn(firestore.NewFavorites())
			return
		}
		var f firestore.Favorites
		if err := doc.DataTo(&f); err != nil {
			// malformed data reads as an empty record
			r.logger.Warn("unable to decode pushed favorites, treating them as empty", zap.String("path", doc.Path), zap.Error(err))
			fn(firestore.NewFavorites())
			return
		}
		fn(f.Normalized())
	})
}

func (r *Remote) Clear(ctx context.Context) error {
	return r.Apply(ctx, []docstore.FieldUpdate{
		docstore.Update("teams", docstore.Delete),
		docstore.Update("leagues", docstore.Delete),
		docstore.Update("crownedTeams", docstore.Delete),
	})
}
