// internal/profile/follow.go

package profile

import (
	"context"
	"errors"
	"sync"

	"github.com/sacavia/sacavia-go/internal/optimistic"
)

// FollowState is the follow button state for one target user.
type FollowState int

const (
	NotFollowing FollowState = iota
	Pending
	Following
)

func (s FollowState) String() string {
	switch s {
	case Following:
		return "following"
	case Pending:
		return "pending"
	default:
		return "not_following"
	}
}

var ErrTogglePending = errors.New("a follow change is already in progress")

// Follower is the subset of Service a FollowToggle drives.
type Follower interface {
	Follow(ctx context.Context, userID string) (bool, error)
	Unfollow(ctx context.Context, userID string) (bool, error)
	IsFollowing(ctx context.Context, userID string) (bool, error)
}

// FollowToggle owns the follow state for one target.
//
//	NotFollowing --Follow--> Pending --200/409--> Following
//	Following --Unfollow--> Pending --200--> NotFollowing
//	Pending --409 on unfollow--> pre-action state (reported as false)
//	any error --> pre-action state
type FollowToggle struct {
	mu     sync.Mutex
	state  FollowState
	target string

	svc        Follower
	reconciler *optimistic.Reconciler
}

func NewFollowToggle(svc Follower, reconciler *optimistic.Reconciler, target string, following bool) *FollowToggle {
	if reconciler == nil {
		reconciler = optimistic.NewReconciler(nil, nil)
	}
	t := &FollowToggle{svc: svc, reconciler: reconciler, target: target}
	if following {
		t.state = Following
	}
	return t
}

func (t *FollowToggle) State() FollowState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Follow moves to Following. It returns the server's answer (always true on success).
func (t *FollowToggle) Follow(ctx context.Context) (bool, error) {
	return t.run(ctx, "user.follow", t.svc.Follow, func(prev FollowState, ok bool) FollowState {
		return Following
	})
}

// Unfollow moves to NotFollowing, or keeps the state it started from and returns false
// when the server says there was no follow to remove.
func (t *FollowToggle) Unfollow(ctx context.Context) (bool, error) {
	return t.run(ctx, "user.unfollow", t.svc.Unfollow, func(prev FollowState, ok bool) FollowState {
		if ok {
			return NotFollowing
		}
		return prev
	})
}

func (t *FollowToggle) run(ctx context.Context, action string, call func(context.Context, string) (bool, error),
	next func(prev FollowState, ok bool) FollowState) (bool, error) {
	t.mu.Lock()
	if t.state == Pending {
		t.mu.Unlock()
		return false, ErrTogglePending
	}
	prev := t.state
	t.state = Pending
	t.mu.Unlock()

	var result bool
	err := t.reconciler.Perform(ctx, optimistic.Toggle{
		Key:    "user:" + t.target,
		Action: action,
		Revert: func() { t.set(prev) },
		Call: func(ctx context.Context) error {
			ok, err := call(ctx, t.target)
			if err != nil {
				return err
			}
			result = ok
			t.set(next(prev, ok))
			return nil
		},
		Resync: func(ctx context.Context) error {
			following, err := t.svc.IsFollowing(ctx, t.target)
			if err != nil {
				return err
			}
			if following {
				t.set(Following)
			} else {
				t.set(NotFollowing)
			}
			return nil
		},
	})
	return result, err
}

func (t *FollowToggle) set(s FollowState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
