// internal/optimistic/state.go

package optimistic

import "sync"

// FlagState is a screen-owned cache of one interaction flag (isSaved, isLiked, following)
// plus its count, keyed by resource id. It is the local state toggles mutate.
type FlagState struct {
	mu     sync.RWMutex
	flags  map[string]bool
	counts map[string]int
}

func NewFlagState() *FlagState {
	return &FlagState{
		flags:  make(map[string]bool),
		counts: make(map[string]int),
	}
}

func (s *FlagState) Get(id string) (bool, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[id], s.counts[id]
}

// Set stores server truth for id.
func (s *FlagState) Set(id string, flag bool, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[id] = flag
	s.counts[id] = count
}

// Flip sets the flag to desired and moves the count with it. It returns the previous
// values so a revert can restore them exactly.
func (s *FlagState) Flip(id string, desired bool) (prevFlag bool, prevCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevFlag, prevCount = s.flags[id], s.counts[id]
	if prevFlag == desired {
		return
	}
	s.flags[id] = desired
	if desired {
		s.counts[id] = prevCount + 1
	} else if prevCount > 0 {
		s.counts[id] = prevCount - 1
	}
	return
}

// FlipToggle builds the Mutate/Revert pair for flipping id to desired on s.
func (s *FlagState) FlipToggle(id string, desired bool) (mutate, revert func()) {
	var prevFlag bool
	var prevCount int
	mutate = func() { prevFlag, prevCount = s.Flip(id, desired) }
	revert = func() { s.Set(id, prevFlag, prevCount) }
	return
}

// Generation tags in-flight work with the state version that started it. Owners bump it
// when newer input or a dismiss makes older work irrelevant; late responses compare their
// token and drop themselves.
type Generation struct {
	mu  sync.Mutex
	gen uint64
}

// Begin returns the token for work started now.
func (g *Generation) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// Bump invalidates every outstanding token.
func (g *Generation) Bump() {
	g.mu.Lock()
	g.gen++
	g.mu.Unlock()
}

// Current reports whether token is still the live generation.
func (g *Generation) Current(token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen == token
}
