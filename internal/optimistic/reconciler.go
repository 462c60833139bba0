// internal/optimistic/reconciler.go
// Mutate-then-call-then-resync helper shared by likes, saves and follows

package optimistic

import (
	"context"
	"sync"

	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/metrics"
	"go.uber.org/zap"
)

// Toggle is one optimistic action. Mutate and Revert touch local state only; Call is the
// mutating request; Resync pulls authoritative state afterwards and may be nil.
type Toggle struct {
	Key    string // resource identity, e.g. "location:abc"
	Action string // metrics label, e.g. "location.save"

	Mutate func()
	Revert func()
	Call   func(ctx context.Context) error
	Resync func(ctx context.Context) error
}

// Reconciler runs toggles. Toggles sharing a Key are serialized so a resync for one
// mutation can never land after (and clobber) a newer mutation of the same resource.
type Reconciler struct {
	locks   *keyedMutex
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewReconciler(log *zap.SugaredLogger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		locks:   newKeyedMutex(),
		log:     logger.OrNop(log),
		metrics: m,
	}
}

// Perform applies t. A Call error reverts and is returned. A Resync error is logged and
// swallowed: the mutation already succeeded server side. Resync is skipped when ctx is
// already done, since the view that owns the state is gone.
func (r *Reconciler) Perform(ctx context.Context, t Toggle) error {
	unlock := r.locks.Lock(t.Key)
	defer unlock()

	if t.Mutate != nil {
		t.Mutate()
	}

	if err := t.Call(ctx); err != nil {
		if t.Revert != nil {
			t.Revert()
		}
		r.metrics.ObserveRevert(t.Action)
		r.log.Debugw("optimistic action reverted", "key", t.Key, "action", t.Action, "error", err)
		return err
	}

	if t.Resync == nil {
		return nil
	}
	if ctx.Err() != nil {
		r.log.Debugw("skipping resync for dismissed view", "key", t.Key)
		return nil
	}
	if err := t.Resync(ctx); err != nil {
		r.log.Warnw("resync after optimistic action failed", "key", t.Key, "action", t.Action, "error", err)
	}
	return nil
}

// keyedMutex hands out one mutex per key and drops it when the last holder leaves.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
