package editfavorites

import (
	"fmt"
	"sync"
	"time"

	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"github.com/abozbere2001-collab/Nabd6/internal/favorites"
	"github.com/abozbere2001-collab/Nabd6/internal/firestore"
	"go.uber.org/zap"
)

// firstStateTimeout bounds the wait for the active store's first snapshot.
const firstStateTimeout = 10 * time.Second

// session is a reconciler resolved to the context's identity, with the persistence failures it reports collected
// so a one-shot command can return them.
type session struct {
	*favorites.Reconciler

	mu       sync.Mutex
	failures []error
	unsubs   []func()
}

func openSession(ctx *Context) (*session, error) {
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := ctx.Reporter
	if reporter == nil {
		reporter = errreport.NewReporter(logger)
	}
	s := &session{}
	s.unsubs = append(s.unsubs, reporter.Subscribe(func(err error) {
		s.mu.Lock()
		s.failures = append(s.failures, err)
		s.mu.Unlock()
	}))

	local := favorites.NewLocal(ctx.KV, ctx.Notifier)
	remote := func(uid string) favorites.Store { return favorites.NewRemote(ctx.Store, uid).WithLogger(logger) }
	s.Reconciler = favorites.NewReconciler(ctx.Context, local, remote, reporter, logger)

	// Subscribe calls back once right away; the call after that is the first snapshot of the resolved store.
	loaded := make(chan struct{})
	var once sync.Once
	seen := 0
	s.unsubs = append(s.unsubs, s.Subscribe(func(firestore.Favorites) {
		s.mu.Lock()
		seen++
		first := seen == 2
		s.mu.Unlock()
		if first {
			once.Do(func() { close(loaded) })
		}
	}))

	if err := s.Resolve(ctx.Context, ctx.Identity()); err != nil {
		s.close()
		return nil, err
	}

	timer := time.NewTimer(firstStateTimeout)
	defer timer.Stop()
	select {
	case <-loaded:
	case <-ctx.Done():
		s.close()
		return nil, ctx.Err()
	case <-timer.C:
		logger.Warn("favorites store sent no snapshot, showing an empty record", zap.Stringer("identity", ctx.Identity()))
	}
	return s, nil
}

// finish waits for queued writes and returns the first one that failed.
func (s *session) finish() error {
	s.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) > 0 {
		return fmt.Errorf("favorites write failed and was rolled back: %w", s.failures[0])
	}
	return nil
}

func (s *session) close() {
	s.Reconciler.Close()
	for _, unsub := range s.unsubs {
		unsub()
	}
}
