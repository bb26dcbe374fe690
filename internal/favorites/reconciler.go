package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"go.uber.org/zap"
)

var (
	ErrSignInRequired = errors.New("favorites: this requires a signed-in account")
	ErrNotFavorited   = errors.New("favorites: league is not a favorite")
	ErrNotResolved    = errors.New("favorites: no identity has been resolved")
	ErrClosed         = errors.New("favorites: reconciler is closed")
)

// Identity is who is using the app. An empty UID is a guest.
type Identity struct {
	UID       string
	Anonymous bool
}

// Guest reports whether the identity keeps its favorites on the device.
func (id Identity) Guest() bool {
	return id.UID == "" || id.Anonymous
}

func (id Identity) String() string {
	switch {
	case id.UID == "":
		return "guest"
	case id.Anonymous:
		return "anonymous:" + id.UID
	}
	return id.UID
}

// Scope selects a notification switch: the global news switch, or the switch of one favorite league.
type Scope struct {
	LeagueID int
}

// News is the global news scope.
var News = Scope{}

// LeagueScope is the scope of a favorite league.
func LeagueScope(id int) Scope {
	return Scope{LeagueID: id}
}

func (s Scope) String() string {
	if s.LeagueID == 0 {
		return "news"
	}
	return fmt.Sprintf("league %d", s.LeagueID)
}

type task struct {
	store   Store
	updates []docstore.FieldUpdate
	version uint64
	before  firestore.Favorites
}

// Reconciler is the single source of truth for what is favorited. Reads and toggles see updates immediately;
// writes reach the active store in order on a background worker.
type Reconciler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	local    *Local
	remote   func(uid string) Store
	reporter *errreport.Reporter
	logger   *zap.Logger

	resolveMu sync.Mutex

	mu        sync.Mutex
	cond      *sync.Cond
	identity  Identity
	active    Store
	stopWatch func()
	base      firestore.Favorites
	state     firestore.Favorites
	version   uint64
	queue     []*task
	pending   []*task
	subs      map[int]func(firestore.Favorites)
	nextSub   int
	closed    bool

	inflight   sync.WaitGroup
	workerDone chan struct{}
}

// NewReconciler starts a Reconciler. remote builds the account store for a uid.
// Watches and background writes run until ctx is done or Close is called.
func NewReconciler(ctx context.Context, local *Local, remote func(uid string) Store, reporter *errreport.Reporter, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = errreport.NewReporter(logger)
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Reconciler{
		ctx:        ctx,
		cancel:     cancel,
		local:      local,
		remote:     remote,
		reporter:   reporter,
		logger:     logger,
		state:      firestore.NewFavorites(),
		subs:       make(map[int]func(firestore.Favorites)),
		workerDone: make(chan struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	go r.run()
	return r
}

// Resolve binds the reconciler to the store of id. Guests and anonymous users get the device record; everyone
// else gets their account record, watched live. Moving onto an account folds a non-empty device record into
// it once and then clears the device record. A failed fold leaves the device record in place and is returned,
// but the account is still bound.
func (r *Reconciler) Resolve(ctx context.Context, id Identity) error {
	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	stop := r.stopWatch
	r.stopWatch = nil
	r.active = nil
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
	// writes queued against the old store land before the device record is read
	r.inflight.Wait()

	var store Store
	var mergeErr error
	if id.Guest() {
		store = r.local
	} else {
		store = r.remote(id.UID)
		mergeErr = r.mergeLocal(ctx, store)
	}

	r.mu.Lock()
	r.identity = id
	r.active = store
	r.base = firestore.NewFavorites()
	r.state = firestore.NewFavorites()
	r.version++
	r.mu.Unlock()

	stop, err := store.Watch(r.ctx, func(f firestore.Favorites) { r.onPush(store, f) })
	if err != nil {
		r.mu.Lock()
		r.active = nil
		r.mu.Unlock()
		return fmt.Errorf("Resolve: unable to watch %s: %w", store.Name(), err)
	}

	r.mu.Lock()
	if r.active == store && !r.closed {
		r.stopWatch = stop
		stop = nil
	}
	r.mu.Unlock()
	if stop != nil {
		stop()
	}

	r.logger.Info("resolved favorites store", zap.Stringer("identity", id), zap.String("store", store.Name()))
	return mergeErr
}

func (r *Reconciler) mergeLocal(ctx context.Context, remote Store) error {
	local, err := r.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("mergeLocal: %w", err)
	}
	if local.IsEmpty() {
		return nil
	}
	if err := remote.Apply(ctx, MergeUpdates(local)); err != nil {
		r.reporter.Report(err)
		return fmt.Errorf("mergeLocal: unable to merge device favorites into %s: %w", remote.Name(), err)
	}
	if err := r.local.Clear(ctx); err != nil {
		return fmt.Errorf("mergeLocal: %w", err)
	}
	r.logger.Info("merged device favorites",
		zap.String("store", remote.Name()),
		zap.Int("teams", len(local.Teams)),
		zap.Int("leagues", len(local.Leagues)),
		zap.Int("crowned", len(local.CrownedTeams)))
	return nil
}

// onPush takes a state delivered by the active store. Writes still in flight are laid over it.
func (r *Reconciler) onPush(store Store, f firestore.Favorites) {
	r.mu.Lock()
	if store != r.active {
		r.mu.Unlock()
		return
	}
	r.base = f.Normalized()
	r.state = r.overlayLocked(r.base)
	r.version++
	r.notifyLocked()
}

func (r *Reconciler) overlayLocked(base firestore.Favorites) firestore.Favorites {
	state := base.Clone()
	for _, t := range r.pending {
		if t.store != r.active {
			continue
		}
		next, err := ApplyTo(state, t.updates)
		if err != nil {
			r.logger.Warn("unable to replay pending favorites write", zap.Error(err))
			continue
		}
		state = next
	}
	return state
}

// notifyLocked releases r.mu and hands the current state to every subscriber.
func (r *Reconciler) notifyLocked() {
	snapshot := r.state.Clone()
	fns := make([]func(firestore.Favorites), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}

// update applies u optimistically and queues it for the active store. r.mu must be held; it is released.
func (r *Reconciler) updateLocked(updates ...docstore.FieldUpdate) error {
	next, err := ApplyTo(r.state, updates)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("update: %w", err)
	}
	before := r.state
	r.state = next
	r.version++
	t := &task{store: r.active, updates: updates, version: r.version, before: before}
	r.queue = append(r.queue, t)
	r.pending = append(r.pending, t)
	r.inflight.Add(1)
	r.cond.Signal()
	r.notifyLocked()
	return nil
}

func (r *Reconciler) lockActive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.active == nil {
		r.mu.Unlock()
		return ErrNotResolved
	}
	return nil
}

// ToggleFavorite stars item if it is not starred and unstars it otherwise. It reports whether item is now starred.
func (r *Reconciler) ToggleFavorite(ctx context.Context, typ ItemType, item Item) (bool, error) {
	if err := r.lockActive(ctx); err != nil {
		return false, err
	}
	u := toggleUpdate(r.state, typ, item)
	if err := r.updateLocked(u); err != nil {
		return false, err
	}
	return !docstore.IsDelete(u.Value), nil
}

// ToggleCrown crowns or uncrowns a team. Guests cannot crown.
func (r *Reconciler) ToggleCrown(ctx context.Context, item Item, note string) (bool, error) {
	if err := r.lockActive(ctx); err != nil {
		return false, err
	}
	if r.identity.Guest() {
		r.mu.Unlock()
		return false, ErrSignInRequired
	}
	u := crownUpdate(r.state, item, note)
	if err := r.updateLocked(u); err != nil {
		return false, err
	}
	return !docstore.IsDelete(u.Value), nil
}

// SetNotification writes a single notification switch.
func (r *Reconciler) SetNotification(ctx context.Context, scope Scope, enabled bool) error {
	if err := r.lockActive(ctx); err != nil {
		return err
	}
	if scope.LeagueID == 0 {
		return r.updateLocked(docstore.Update("notificationsEnabled.news", enabled))
	}
	key := firestore.IDKey(scope.LeagueID)
	if _, ok := r.state.Leagues[key]; !ok {
		r.mu.Unlock()
		return ErrNotFavorited
	}
	return r.updateLocked(docstore.FieldUpdate{Path: []string{"leagues", key, "notificationsEnabled"}, Value: enabled})
}

func (r *Reconciler) run() {
	defer close(r.workerDone)
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}
		t := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		err := t.store.Apply(r.ctx, t.updates)
		if err != nil {
			err = errreport.Wrap(t.store.Name(), errreport.OpUpdate, t.updates, err)
		}
		r.finish(t, err)
	}
}

// finish retires t. A failed write is reported, and its effect is undone: back to the state before it if nothing
// has happened since, otherwise by replaying the remaining writes over the last pushed state.
func (r *Reconciler) finish(t *task, err error) {
	defer r.inflight.Done()

	r.mu.Lock()
	for i, p := range r.pending {
		if p == t {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	if err == nil || t.store != r.active {
		r.mu.Unlock()
		if err != nil {
			r.reporter.Report(err)
		}
		return
	}
	if r.version == t.version {
		r.state = t.before
	} else {
		r.state = r.overlayLocked(r.base)
	}
	r.version++
	r.logger.Warn("rolled back favorites write", zap.String("store", t.store.Name()), zap.Error(err))
	r.notifyLocked()
	r.reporter.Report(err)
}

// Wait blocks until every queued write has been attempted.
func (r *Reconciler) Wait() {
	r.inflight.Wait()
}

// Close drains queued writes, stops the live watch and ends the worker.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.workerDone
		return
	}
	r.closed = true
	stop := r.stopWatch
	r.stopWatch = nil
	r.active = nil
	r.cond.Broadcast()
	r.mu.Unlock()

	<-r.workerDone
	if stop != nil {
		stop()
	}
	r.cancel()
}

// Subscribe calls fn with the current state now and after every change. The returned function unsubscribes.
func (r *Reconciler) Subscribe(fn func(firestore.Favorites)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	snapshot := r.state.Clone()
	r.mu.Unlock()
	fn(snapshot)
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Favorites returns a copy of the current state.
func (r *Reconciler) Favorites() firestore.Favorites {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Identity returns the identity last resolved.
func (r *Reconciler) Identity() Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identity
}

// StoreName names the active store, or "" before the first Resolve.
func (r *Reconciler) StoreName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return ""
	}
	return r.active.Name()
}

func (r *Reconciler) IsFavoriteTeam(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.Teams[firestore.IDKey(id)]
	return ok
}

func (r *Reconciler) IsFavoriteLeague(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.Leagues[firestore.IDKey(id)]
	return ok
}

func (r *Reconciler) IsCrowned(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.CrownedTeams[firestore.IDKey(id)]
	return ok
}
