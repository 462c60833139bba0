// internal/media/tracker.go

package media

import "sync"

// Tracker counts uploads in flight so a form can refuse to submit a partial payload.
type Tracker struct {
	mu      sync.Mutex
	pending int
	failed  []error
}

// Begin registers an upload and returns the function that finishes it. Calling the
// returned function more than once has no effect.
func (t *Tracker) Begin() func(err error) {
	t.mu.Lock()
	t.pending++
	t.mu.Unlock()

	var once sync.Once
	return func(err error) {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.pending--
			if err != nil {
				t.failed = append(t.failed, err)
			}
		})
	}
}

// Pending is the number of uploads not yet finished.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Failures returns the errors of finished uploads that failed.
func (t *Tracker) Failures() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]error(nil), t.failed...)
}
