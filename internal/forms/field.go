// internal/forms/field.go

package forms

import (
	"context"
	"sync"
	"time"

	"github.com/sacavia/sacavia-go/internal/optimistic"
)

// FieldStatus is the async validation state of one input.
type FieldStatus int

const (
	FieldIdle FieldStatus = iota
	FieldChecking
	FieldValid
	FieldInvalid
	FieldUnavailable
)

func (s FieldStatus) String() string {
	switch s {
	case FieldChecking:
		return "checking"
	case FieldValid:
		return "valid"
	case FieldInvalid:
		return "invalid"
	case FieldUnavailable:
		return "unavailable"
	default:
		return "idle"
	}
}

// FieldState is what the UI renders under an input.
type FieldState struct {
	Status      FieldStatus
	Value       string
	Reason      string
	Suggestions []string
}

// Terminal reports whether the field lets the form advance.
func (s FieldState) Terminal() bool {
	return s.Status == FieldValid
}

// Checker validates a value remotely.
type Checker func(ctx context.Context, value string) FieldState

// DefaultDebounce is the pause after the last keystroke before a check runs.
const DefaultDebounce = 500 * time.Millisecond

// FieldValidator debounces input and runs one remote check for the latest value. Every
// Input cancels the pending timer and any in-flight check, so only the last input's
// result ever lands.
type FieldValidator struct {
	mu       sync.Mutex
	state    FieldState
	gen      optimistic.Generation
	timer    *time.Timer
	cancel   context.CancelFunc
	interval time.Duration

	local    func(value string) string // sync pre-check, returns a reason
	check    Checker
	onChange func(FieldState)
}

// NewFieldValidator builds a validator. local runs on every keystroke without a request
// and may be nil; onChange is called on every state change and may be nil.
func NewFieldValidator(interval time.Duration, local func(string) string, check Checker, onChange func(FieldState)) *FieldValidator {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &FieldValidator{interval: interval, local: local, check: check, onChange: onChange}
}

func (f *FieldValidator) State() FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Input records a new value and schedules its check.
func (f *FieldValidator) Input(value string) {
	f.mu.Lock()
	f.gen.Bump()
	token := f.gen.Begin()
	f.stopLocked()

	var next FieldState
	switch {
	case value == "":
		next = FieldState{Status: FieldIdle}
	case f.local != nil && f.local(value) != "":
		next = FieldState{Status: FieldInvalid, Value: value, Reason: f.local(value)}
	default:
		next = FieldState{Status: FieldChecking, Value: value}
		f.timer = time.AfterFunc(f.interval, func() { f.run(token, value) })
	}
	f.state = next
	f.mu.Unlock()

	f.notify(next)
}

func (f *FieldValidator) run(token uint64, value string) {
	ctx, cancel := context.WithCancel(context.Background())
	f.mu.Lock()
	if !f.gen.Current(token) {
		f.mu.Unlock()
		cancel()
		return
	}
	f.cancel = cancel
	f.mu.Unlock()

	result := f.check(ctx, value)
	result.Value = value

	f.mu.Lock()
	if !f.gen.Current(token) {
		// superseded while the request was in flight
		f.mu.Unlock()
		cancel()
		return
	}
	f.cancel = nil
	f.state = result
	f.mu.Unlock()
	cancel()

	f.notify(result)
}

// Close stops pending work; the state is left as is.
func (f *FieldValidator) Close() {
	f.mu.Lock()
	f.gen.Bump()
	f.stopLocked()
	f.mu.Unlock()
}

func (f *FieldValidator) stopLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *FieldValidator) notify(s FieldState) {
	if f.onChange != nil {
		f.onChange(s)
	}
}

// RequireValid is a CanProceed helper: the field must have settled on valid.
func RequireValid(name string, f *FieldValidator) error {
	s := f.State()
	switch s.Status {
	case FieldValid:
		return nil
	case FieldChecking:
		return &FieldError{Field: name, Reason: "still checking"}
	case FieldIdle:
		return &FieldError{Field: name, Reason: "is required"}
	default:
		return &FieldError{Field: name, Reason: s.Reason}
	}
}

// FieldError explains why a step cannot advance.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}
