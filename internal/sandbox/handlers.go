// internal/sandbox/handlers.go
// Auth and user routes of the fake backend

package sandbox

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/auth"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/posts"
	"github.com/sacavia/sacavia-go/internal/profile"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves every sandbox route
type Handler struct {
	store      *Store
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
	log        *zap.SugaredLogger
}

func NewHandler(store *Store, secret string, tokenTTL time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{
		store:      store,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.MinCost,
		log:        log,
	}
}

// Auth

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// 1. Validate input
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 2. Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		utils.ErrorResponse(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	// 3. Create user
	u, ok := h.store.CreateUser(profile.User{
		Name:      req.Name,
		Email:     req.Email,
		Username:  req.Username,
		Bio:       req.Bio,
		Location:  req.Location,
		Interests: req.Interests,
		Role:      "user",
	}, hash)
	if !ok {
		utils.CodedErrorResponse(w, "User already exists", "USER_EXISTS", http.StatusBadRequest)
		return
	}

	// 4. Issue token
	h.respondWithToken(w, u, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	u, hash, ok := h.store.Credentials(strings.ToLower(strings.TrimSpace(req.Email)))
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		utils.ErrorResponse(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	h.respondWithToken(w, u, http.StatusOK)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, u profile.User, status int) {
	issued := time.Now()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:     u.ID,
		Email:      u.Email,
		Collection: "users",
		IssuedAt:   issued.Unix(),
		ExpiresAt:  issued.Add(h.tokenTTL).Unix(),
	}, h.secret)
	if err != nil {
		h.log.Errorw("failed to sign token", "error", err)
		utils.ErrorResponse(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, auth.AuthResponse{
		Token: token,
		User: auth.User{
			ID:         u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Username:   u.Username,
			Role:       u.Role,
			Interests:  u.Interests,
			IsVerified: u.IsVerified,
		},
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	}, status)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.MessageResponse(w, "Logged out", http.StatusOK)
}

func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("username")))
	if err := utils.ValidateStruct(struct {
		Username string `validate:"required,username"`
	}{username}); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.store.UsernameTaken(username) {
		utils.SuccessResponse(w, auth.UsernameCheck{Available: true}, http.StatusOK)
		return
	}

	suggestions := []string{}
	for _, candidate := range []string{username + "1", username + "_", username + strconv.Itoa(time.Now().Year())} {
		if !h.store.UsernameTaken(candidate) {
			suggestions = append(suggestions, candidate)
		}
	}
	utils.SuccessResponse(w, auth.UsernameCheck{
		Available:   false,
		Reason:      "Username is already taken",
		Suggestions: suggestions,
	}, http.StatusOK)
}

func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if err := utils.ValidateStruct(struct {
		Email string `validate:"required,email"`
	}{email}); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.store.EmailTaken(email) {
		utils.SuccessResponse(w, auth.EmailCheck{Available: false, Reason: "An account with this email already exists"}, http.StatusOK)
		return
	}
	utils.SuccessResponse(w, auth.EmailCheck{Available: true}, http.StatusOK)
}

// Users

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	viewer := UserIDFromContext(r.Context())
	target := r.URL.Query().Get("userId")
	if target == "" {
		target = viewer
	}

	u, ok := h.store.User(viewer, target)
	if !ok {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	stats := h.store.Stats(target)
	recent := h.store.UserPosts(viewer, target)
	if len(recent) > 3 {
		recent = recent[:3]
	}
	utils.SuccessResponse(w, profile.ProfileResponse{User: u, Stats: &stats, RecentPosts: recent}, http.StatusOK)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req profile.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Username != nil {
		current, _ := h.store.User(userID, userID)
		if *req.Username != current.Username && h.store.UsernameTaken(*req.Username) {
			utils.ErrorResponse(w, "Username is already taken", http.StatusBadRequest)
			return
		}
	}

	u, ok := h.store.UpdateUser(userID, func(u *profile.User) {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Username != nil {
			u.Username = *req.Username
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.Location != nil {
			u.Location = *req.Location
		}
		if req.Website != nil {
			u.Website = *req.Website
		}
		if req.Interests != nil {
			u.Interests = req.Interests
		}
	})
	if !ok {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"user": u}, http.StatusOK)
}

func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	viewer := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if !h.store.UserExists(id) {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	page, limit := pageParams(r)
	items, pagination := paginate(h.store.UserPosts(viewer, id), page, limit)
	utils.SuccessResponse(w, posts.Page{Posts: items, Pagination: pagination}, http.StatusOK)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.store.UserExists(id) {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, h.store.Stats(id), http.StatusOK)
}

func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.connections(w, r, "followers")
}

func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.connections(w, r, "following")
}

func (h *Handler) connections(w http.ResponseWriter, r *http.Request, kind string) {
	viewer := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if !h.store.UserExists(id) {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	page, limit := pageParams(r)
	users, pagination := paginate(h.store.Connections(viewer, id, kind == "followers"), page, limit)
	utils.SuccessResponse(w, map[string]interface{}{kind: users, "pagination": pagination}, http.StatusOK)
}

// Follow answers 409 when the edge already exists.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	target := mux.Vars(r)["id"]

	if target == userID {
		utils.ErrorResponse(w, "You cannot follow yourself", http.StatusBadRequest)
		return
	}
	if !h.store.UserExists(target) {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}
	if !h.store.Follow(userID, target) {
		utils.ErrorResponse(w, "Already following this user", http.StatusConflict)
		return
	}
	utils.MessageResponse(w, "User followed", http.StatusOK)
}

// Unfollow answers 409 when there is nothing to remove.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	target := mux.Vars(r)["id"]

	if !h.store.Unfollow(userID, target) {
		utils.ErrorResponse(w, "Not following this user", http.StatusConflict)
		return
	}
	utils.MessageResponse(w, "User unfollowed", http.StatusOK)
}

func (h *Handler) GetBlockedUsers(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	utils.SuccessResponse(w, map[string]interface{}{"blockedUsers": h.store.Blocked(userID)}, http.StatusOK)
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req profile.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TargetUserID == userID {
		utils.ErrorResponse(w, "You cannot block yourself", http.StatusBadRequest)
		return
	}
	if !h.store.UserExists(req.TargetUserID) {
		utils.ErrorResponse(w, "User not found", http.StatusNotFound)
		return
	}

	h.store.Block(userID, req.TargetUserID, req.Reason)
	utils.MessageResponse(w, "User blocked", http.StatusOK)
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	target := r.URL.Query().Get("targetUserId")
	if target == "" {
		utils.ErrorResponse(w, "targetUserId is required", http.StatusBadRequest)
		return
	}
	if !h.store.Unblock(userID, target) {
		utils.ErrorResponse(w, "User is not blocked", http.StatusNotFound)
		return
	}
	utils.MessageResponse(w, "User unblocked", http.StatusOK)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	var req profile.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password != "" {
		u, _ := h.store.User(userID, userID)
		_, hash, _ := h.store.Credentials(u.Email)
		if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
			utils.ErrorResponse(w, "Incorrect password", http.StatusBadRequest)
			return
		}
	}

	h.store.DeleteUser(userID)
	h.log.Infow("account deleted", "userId", userID, "reason", req.Reason)
	utils.MessageResponse(w, "Account deleted", http.StatusOK)
}

// Pagination helpers

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

// paginate slices items to one page; page and limit default to 1 and 20.
func paginate[T any](items []T, page, limit int) ([]T, apiclient.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	total := len(items)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, apiclient.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
