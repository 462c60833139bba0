// internal/auth/service.go

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"go.uber.org/zap"
)

var (
	ErrMissingToken = &apiclient.APIError{Kind: apiclient.KindMalformedResponse, Message: "server returned no token"}
)

// TokenStore receives the token after login and forgets it on logout.
// *session.Session satisfies it.
type TokenStore interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Authenticated() bool
}

type Service struct {
	client *apiclient.Client
	tokens TokenStore
	log    *zap.SugaredLogger
}

func NewService(client *apiclient.Client, tokens TokenStore, log *zap.SugaredLogger) *Service {
	return &Service{client: client, tokens: tokens, log: logger.OrNop(log)}
}

// Login signs in and stores the returned token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	// 1. Normalize and validate
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	// 2. Exchange credentials for a token
	res, err := apiclient.Call[AuthResponse](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/auth/login",
		JSON:   req,
		Auth:   apiclient.AuthNone,
	})
	if err != nil {
		return nil, err
	}

	// 3. Persist the session
	if err := s.store(ctx, res.Token); err != nil {
		return nil, err
	}
	return &res, nil
}

// Signup creates an account and signs it in.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	// 1. Normalize inputs
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Name = strings.TrimSpace(req.Name)

	// 2. Validate
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	// 3. Register
	res, err := apiclient.Call[AuthResponse](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/auth/register",
		JSON:   req,
		Auth:   apiclient.AuthNone,
	})
	if err != nil {
		return nil, err
	}

	// 4. Persist the session
	if err := s.store(ctx, res.Token); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) store(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Logout tells the server (best effort) and always clears the local session.
func (s *Service) Logout(ctx context.Context) error {
	if s.tokens.Authenticated() {
		callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := apiclient.Exec(callCtx, s.client, apiclient.Request{
			Method: http.MethodPost,
			Path:   "/api/mobile/auth/logout",
			Auth:   apiclient.AuthCookie,
		})
		cancel()
		if err != nil {
			s.log.Warnw("server logout failed", "error", err)
		}
	}
	return s.tokens.Clear(ctx)
}

// CheckUsername asks whether a username is free; taken names come with suggestions.
func (s *Service) CheckUsername(ctx context.Context, username string) (*UsernameCheck, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := utils.ValidateStruct(struct {
		Username string `validate:"required,username"`
	}{username}); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[UsernameCheck](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/auth/check-username",
		Query:  map[string]string{"username": username},
		Auth:   apiclient.AuthNone,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckEmail asks whether an email can still register.
func (s *Service) CheckEmail(ctx context.Context, email string) (*EmailCheck, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateStruct(struct {
		Email string `validate:"required,email"`
	}{email}); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[EmailCheck](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/auth/check-email",
		Query:  map[string]string{"email": email},
		Auth:   apiclient.AuthNone,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
