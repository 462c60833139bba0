// internal/forms/wizard.go
// Linear multi-step form state machine shared by signup and add-location.

package forms

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUploadsInFlight = errors.New("please wait for uploads to finish")
	ErrFirstStep       = errors.New("already at the first step")
	ErrSubmitting      = errors.New("form is already being submitted")
	ErrNoSteps         = errors.New("form has no steps")
)

// Step is one screen of a wizard. CanProceed returns the reason the user cannot move on,
// or nil.
type Step struct {
	Name       string
	CanProceed func() error
}

// PendingCounter reports uploads still in flight. *media.Tracker satisfies it.
type PendingCounter interface {
	Pending() int
}

// Wizard walks steps 0..N-1. Next on the last step submits instead of advancing.
type Wizard struct {
	mu         sync.Mutex
	steps      []Step
	index      int
	submitting bool
	submitted  bool

	submit  func(ctx context.Context) error
	uploads PendingCounter
}

func NewWizard(steps []Step, submit func(ctx context.Context) error, uploads PendingCounter) *Wizard {
	return &Wizard{steps: steps, submit: submit, uploads: uploads}
}

// Step returns the current step index.
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Current returns the current step, or the zero Step when there are none.
func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.steps) == 0 {
		return Step{}
	}
	return w.steps[w.index]
}

func (w *Wizard) Len() int { return len(w.steps) }

// Submitted reports whether the final submission succeeded.
func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// Next validates the current step and advances, or submits from the last step. It
// reports whether a submission happened.
func (w *Wizard) Next(ctx context.Context) (bool, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return false, ErrSubmitting
	}
	if len(w.steps) == 0 {
		w.mu.Unlock()
		return false, ErrNoSteps
	}
	step := w.steps[w.index]
	if step.CanProceed != nil {
		if err := step.CanProceed(); err != nil {
			w.mu.Unlock()
			return false, err
		}
	}
	if w.index < len(w.steps)-1 {
		w.index++
		w.mu.Unlock()
		return false, nil
	}

	// last step: submit, but never with a partial media payload
	if w.uploads != nil && w.uploads.Pending() > 0 {
		w.mu.Unlock()
		return false, ErrUploadsInFlight
	}
	w.submitting = true
	w.mu.Unlock()

	err := w.submit(ctx)

	w.mu.Lock()
	w.submitting = false
	if err == nil {
		w.submitted = true
	}
	w.mu.Unlock()
	return err == nil, err
}

// Back moves to the previous step.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return ErrSubmitting
	}
	if w.index == 0 {
		return ErrFirstStep
	}
	w.index--
	return nil
}
