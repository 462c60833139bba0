// internal/forms/signup.go

package forms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/auth"
	"github.com/sacavia/sacavia-go/internal/common/utils"
)

// SignupBackend is the part of auth.Service the signup form uses.
type SignupBackend interface {
	CheckUsername(ctx context.Context, username string) (*auth.UsernameCheck, error)
	CheckEmail(ctx context.Context, email string) (*auth.EmailCheck, error)
	Signup(ctx context.Context, req *auth.SignupRequest) (*auth.AuthResponse, error)
}

// SignupFields are the plain inputs of the signup form.
type SignupFields struct {
	Name            string
	Password        string
	ConfirmPassword string
	Bio             string
	Location        string
	Interests       []string
	AcceptTerms     bool
}

// SignupForm runs the account -> username -> profile -> interests flow.
type SignupForm struct {
	mu     sync.Mutex
	fields SignupFields
	result *auth.AuthResponse

	Email    *FieldValidator
	Username *FieldValidator

	backend SignupBackend
	wizard  *Wizard
}

func NewSignupForm(backend SignupBackend, debounce time.Duration, onChange func(field string, s FieldState)) *SignupForm {
	f := &SignupForm{backend: backend}
	notify := func(name string) func(FieldState) {
		if onChange == nil {
			return nil
		}
		return func(s FieldState) { onChange(name, s) }
	}

	f.Email = NewFieldValidator(debounce, localEmail, f.checkEmail, notify("email"))
	f.Username = NewFieldValidator(debounce, localUsername, f.checkUsername, notify("username"))

	f.wizard = NewWizard([]Step{
		{Name: "account", CanProceed: f.accountReady},
		{Name: "username", CanProceed: func() error { return RequireValid("username", f.Username) }},
		{Name: "profile", CanProceed: f.profileReady},
		{Name: "interests", CanProceed: f.interestsReady},
	}, f.submit, nil)
	return f
}

func (f *SignupForm) Wizard() *Wizard { return f.wizard }

// Update edits the plain fields.
func (f *SignupForm) Update(edit func(*SignupFields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit(&f.fields)
}

func (f *SignupForm) Fields() SignupFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.fields
	out.Interests = append([]string(nil), f.fields.Interests...)
	return out
}

// Result is the signed-in account after a successful submit.
func (f *SignupForm) Result() *auth.AuthResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Request aggregates every step into the register payload.
func (f *SignupForm) Request() *auth.SignupRequest {
	fields := f.Fields()
	return &auth.SignupRequest{
		Name:            strings.TrimSpace(fields.Name),
		Email:           f.Email.State().Value,
		Username:        f.Username.State().Value,
		Password:        fields.Password,
		ConfirmPassword: fields.ConfirmPassword,
		Interests:       fields.Interests,
		Location:        strings.TrimSpace(fields.Location),
		Bio:             strings.TrimSpace(fields.Bio),
		AcceptTerms:     fields.AcceptTerms,
	}
}

// Close stops pending availability checks.
func (f *SignupForm) Close() {
	f.Email.Close()
	f.Username.Close()
}

func (f *SignupForm) accountReady() error {
	fields := f.Fields()
	if strings.TrimSpace(fields.Name) == "" {
		return &FieldError{Field: "name", Reason: "is required"}
	}
	if err := RequireValid("email", f.Email); err != nil {
		return err
	}
	if len(fields.Password) < 8 {
		return &FieldError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if fields.Password != fields.ConfirmPassword {
		return &FieldError{Field: "confirm password", Reason: "does not match"}
	}
	if !fields.AcceptTerms {
		return &FieldError{Field: "terms", Reason: "must be accepted"}
	}
	return nil
}

func (f *SignupForm) profileReady() error {
	fields := f.Fields()
	if len(fields.Bio) > 500 {
		return &FieldError{Field: "bio", Reason: "must be at most 500 characters"}
	}
	return nil
}

func (f *SignupForm) interestsReady() error {
	if len(f.Fields().Interests) == 0 {
		return &FieldError{Field: "interests", Reason: "pick at least one"}
	}
	return nil
}

func (f *SignupForm) submit(ctx context.Context) error {
	res, err := f.backend.Signup(ctx, f.Request())
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.result = res
	f.mu.Unlock()
	return nil
}

func (f *SignupForm) checkEmail(ctx context.Context, email string) FieldState {
	res, err := f.backend.CheckEmail(ctx, email)
	if err != nil {
		return checkFailed(err)
	}
	if !res.Available {
		reason := res.Reason
		if reason == "" {
			reason = "is already registered"
		}
		return FieldState{Status: FieldUnavailable, Reason: reason}
	}
	return FieldState{Status: FieldValid}
}

func (f *SignupForm) checkUsername(ctx context.Context, username string) FieldState {
	res, err := f.backend.CheckUsername(ctx, username)
	if err != nil {
		return checkFailed(err)
	}
	if !res.Available {
		reason := res.Reason
		if reason == "" {
			reason = "is taken"
		}
		return FieldState{Status: FieldUnavailable, Reason: reason, Suggestions: res.Suggestions}
	}
	return FieldState{Status: FieldValid}
}

func checkFailed(err error) FieldState {
	if errors.Is(err, apiclient.ErrValidation) || errors.Is(err, apiclient.ErrServer) {
		return FieldState{Status: FieldInvalid, Reason: apiclient.MessageOf(err)}
	}
	return FieldState{Status: FieldInvalid, Reason: "could not be checked, try again"}
}

func localEmail(v string) string {
	if err := utils.ValidateStruct(struct {
		Email string `validate:"email"`
	}{v}); err != nil {
		return "must be a valid email"
	}
	return ""
}

func localUsername(v string) string {
	if err := utils.ValidateStruct(struct {
		Username string `validate:"username"`
	}{v}); err != nil {
		return "must be 3-30 lowercase letters, digits, '_' or '.'"
	}
	return ""
}
