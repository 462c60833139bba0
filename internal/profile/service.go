// internal/profile/service.go

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/posts"
	"go.uber.org/zap"
)

var (
	ErrCannotBlockSelf = apiclient.Validation("cannot block yourself")
	ErrMissingUserID   = apiclient.Validation("user id is required")
)

// Identity tells the service who is signed in. *session.Session satisfies it.
type Identity interface {
	UserID() string
}

// Service wraps the user, social graph and blocking routes.
type Service struct {
	client *apiclient.Client
	me     Identity
	log    *zap.SugaredLogger

	// cascadeTimeout bounds the best-effort unfollow after a block
	cascadeTimeout time.Duration
}

// NewService creates a new profile service. me may be nil.
func NewService(client *apiclient.Client, me Identity, log *zap.SugaredLogger) *Service {
	return &Service{
		client:         client,
		me:             me,
		log:            logger.OrNop(log),
		cascadeTimeout: 15 * time.Second,
	}
}

// GetProfile retrieves a user's profile, or the caller's own when userID is empty.
func (s *Service) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	req := apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/users/profile",
		Auth:   apiclient.AuthCookie,
	}
	if userID != "" {
		req.Query = map[string]string{"userId": userID}
	}

	res, err := apiclient.Call[ProfileResponse](ctx, s.client, req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateProfile updates the caller's profile and returns the stored user.
func (s *Service) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[struct {
		User User `json:"user"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/api/mobile/users/profile",
		JSON:   req,
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res.User, nil
}

// GetUserPosts pages through a user's posts.
func (s *Service) GetUserPosts(ctx context.Context, userID string, page, limit int) (*posts.Page, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	res, err := apiclient.Call[posts.Page](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/users/" + apiclient.PathEscape(userID) + "/posts",
		Route:  "/api/mobile/users/{id}/posts",
		Query:  posts.PageQuery(page, limit),
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetStats fetches the server computed counters for a user.
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	res, err := apiclient.Call[Stats](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/users/" + apiclient.PathEscape(userID) + "/stats",
		Route:  "/api/mobile/users/{id}/stats",
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) GetFollowers(ctx context.Context, userID string, page, limit int) (*Connections, error) {
	return s.connections(ctx, userID, "followers", page, limit)
}

func (s *Service) GetFollowing(ctx context.Context, userID string, page, limit int) (*Connections, error) {
	return s.connections(ctx, userID, "following", page, limit)
}

func (s *Service) connections(ctx context.Context, userID, kind string, page, limit int) (*Connections, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	res, err := apiclient.Call[map[string]json.RawMessage](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/users/" + apiclient.PathEscape(userID) + "/" + kind,
		Route:  "/api/mobile/users/{id}/" + kind,
		Query:  posts.PageQuery(page, limit),
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}

	// the list sits under "followers" or "following"
	out := &Connections{}
	if raw, ok := res[kind]; ok {
		if err := json.Unmarshal(raw, &out.Users); err != nil {
			return nil, &apiclient.APIError{Kind: apiclient.KindMalformedResponse, Message: "unexpected " + kind + " list", Err: err}
		}
	}
	if raw, ok := res["pagination"]; ok {
		_ = json.Unmarshal(raw, &out.Pagination)
	}
	return out, nil
}

// Follow follows userID. A 409 means the caller already follows and reports true.
func (s *Service) Follow(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrMissingUserID
	}
	_, err := apiclient.Exec(ctx, s.client, s.followRequest(http.MethodPost, userID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apiclient.ErrConflict):
		return true, nil
	default:
		return false, err
	}
}

// Unfollow unfollows userID. A 409 means the caller was not following: false, no error.
func (s *Service) Unfollow(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, ErrMissingUserID
	}
	_, err := apiclient.Exec(ctx, s.client, s.followRequest(http.MethodDelete, userID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apiclient.ErrConflict):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) followRequest(method, userID string) apiclient.Request {
	return apiclient.Request{
		Method: method,
		Path:   "/api/mobile/users/" + apiclient.PathEscape(userID) + "/follow",
		Route:  "/api/mobile/users/{id}/follow",
		Auth:   apiclient.AuthCookie,
	}
}

// IsFollowing reads the authoritative follow flag for userID from their profile.
func (s *Service) IsFollowing(ctx context.Context, userID string) (bool, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	return p.User.IsFollowing, nil
}

// GetBlockedUsers lists the users the caller has blocked.
func (s *Service) GetBlockedUsers(ctx context.Context) ([]BlockedUser, error) {
	res, err := apiclient.Call[struct {
		BlockedUsers []BlockedUser `json:"blockedUsers"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/users/blocked",
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return res.BlockedUsers, nil
}

// BlockUser blocks targetID, then unfollows them. The unfollow is best effort: blocking
// already succeeded, so its failure is only logged. The server drops the reverse edge.
func (s *Service) BlockUser(ctx context.Context, targetID, reason string) error {
	req := &BlockRequest{TargetUserID: targetID, Reason: reason}
	if err := utils.ValidateStruct(req); err != nil {
		return apiclient.WrapValidation(err)
	}
	if s.me != nil && s.me.UserID() != "" && s.me.UserID() == targetID {
		return ErrCannotBlockSelf
	}

	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/users/block",
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return err
	}

	cascadeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cascadeTimeout)
	defer cancel()
	if _, err := s.Unfollow(cascadeCtx, targetID); err != nil {
		s.log.Warnw("unfollow after block failed", "targetUserId", targetID, "error", err)
	}
	return nil
}

// UnblockUser unblocks a user
func (s *Service) UnblockUser(ctx context.Context, targetID string) error {
	if targetID == "" {
		return ErrMissingUserID
	}
	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: http.MethodDelete,
		Path:   "/api/mobile/users/block",
		Query:  map[string]string{"targetUserId": targetID},
		Auth:   apiclient.AuthBearer,
	})
	return err
}

// DeleteAccount permanently deletes the caller's account and drops the session.
func (s *Service) DeleteAccount(ctx context.Context, req *DeleteAccountRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apiclient.WrapValidation(err)
	}
	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/users/delete-account",
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return err
	}
	if sess := s.client.Session(); sess != nil {
		sess.Invalidate()
	}
	return nil
}
