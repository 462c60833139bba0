// internal/sandbox/content.go
// Post, location, media, category, event, report and planner routes

package sandbox

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/events"
	"github.com/sacavia/sacavia-go/internal/locations"
	"github.com/sacavia/sacavia-go/internal/media"
	"github.com/sacavia/sacavia-go/internal/planner"
	"github.com/sacavia/sacavia-go/internal/posts"
	"github.com/sacavia/sacavia-go/internal/reports"
)

const maxUploadMemory = 32 << 20

// Posts

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.ErrorResponse(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	var mediaItems []posts.Media
	for _, field := range []string{"images", "videos"} {
		kind := strings.TrimSuffix(field, "s")
		for _, fh := range r.MultipartForm.File[field] {
			up, err := h.storeUpload(fh, "")
			if err != nil {
				utils.ErrorResponse(w, "Failed to read upload", http.StatusBadRequest)
				return
			}
			mediaItems = append(mediaItems, posts.Media{Type: kind, URL: up.URL})
		}
	}
	if content == "" && len(mediaItems) == 0 {
		utils.ErrorResponse(w, "Post must have content or media", http.StatusBadRequest)
		return
	}

	postType := r.FormValue("type")
	if postType == "" {
		postType = "post"
	}
	p := h.store.CreatePost(userID, posts.Post{
		Content:    content,
		Type:       postType,
		Media:      mediaItems,
		LocationID: r.FormValue("locationId"),
	})
	utils.SuccessResponse(w, map[string]interface{}{"post": p}, http.StatusCreated)
}

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.postFlag(w, r, false)
}

func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	h.postFlag(w, r, true)
}

// postFlag is idempotent in both directions; POST sets, DELETE clears.
func (h *Handler) postFlag(w http.ResponseWriter, r *http.Request, save bool) {
	userID := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if !h.store.SetPostFlag(userID, id, save, r.Method == http.MethodPost) {
		utils.ErrorResponse(w, "Post not found", http.StatusNotFound)
		return
	}
	utils.MessageResponse(w, "Updated", http.StatusOK)
}

func (h *Handler) PostInteractionState(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	var req struct {
		PostIDs []string `json:"postIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PostIDs) == 0 {
		utils.ErrorResponse(w, "postIds is required", http.StatusBadRequest)
		return
	}
	utils.SuccessResponse(w, h.store.PostInteractions(userID, req.PostIDs), http.StatusOK)
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		utils.ErrorResponse(w, "postId is required", http.StatusBadRequest)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"comments": h.store.Comments(postID)}, http.StatusOK)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	var req posts.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, ok := h.store.AddComment(userID, posts.Comment{PostID: req.PostID, ParentID: req.ParentID, Content: req.Content})
	if !ok {
		utils.ErrorResponse(w, "Post not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"comment": c}, http.StatusCreated)
}

func (h *Handler) SharePost(w http.ResponseWriter, r *http.Request) {
	var req posts.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.store.SharePost(mux.Vars(r)["id"]) {
		utils.ErrorResponse(w, "Post not found", http.StatusNotFound)
		return
	}
	utils.MessageResponse(w, "Post shared", http.StatusOK)
}

// Locations

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	var req locations.CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	addr := req.Address
	l := h.store.CreateLocation(userID, locations.Location{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Address:          &addr,
		Coordinates:      req.Coordinates,
		Categories:       req.Categories,
		FeaturedImage:    req.FeaturedImage,
		Gallery:          req.Gallery,
		BusinessHours:    req.BusinessHours,
		ContactInfo:      req.ContactInfo,
		PriceRange:       req.PriceRange,
		Privacy:          req.Privacy,
	})
	utils.SuccessResponse(w, map[string]interface{}{"location": l}, http.StatusCreated)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	l, ok := h.store.Location(UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if !ok {
		utils.ErrorResponse(w, "Location not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"location": l}, http.StatusOK)
}

func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Page  int    `json:"page"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		utils.ErrorResponse(w, "query is required", http.StatusBadRequest)
		return
	}
	found := h.store.SearchLocations(UserIDFromContext(r.Context()), strings.TrimSpace(req.Query))
	items, pagination := paginate(found, req.Page, req.Limit)
	utils.SuccessResponse(w, locations.SearchResult{Locations: items, Pagination: pagination}, http.StatusOK)
}

func (h *Handler) LocationInteractionState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationIDs []string `json:"locationIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.LocationIDs) == 0 {
		utils.ErrorResponse(w, "locationIds is required", http.StatusBadRequest)
		return
	}
	utils.SuccessResponse(w, h.store.LocationInteractions(UserIDFromContext(r.Context()), req.LocationIDs), http.StatusOK)
}

func (h *Handler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Action != "save" && req.Action != "unsave") {
		utils.ErrorResponse(w, "action must be save or unsave", http.StatusBadRequest)
		return
	}
	if !h.store.SetLocationSaved(UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.Action == "save") {
		utils.ErrorResponse(w, "Location not found", http.StatusNotFound)
		return
	}
	utils.MessageResponse(w, "Location "+req.Action+"d", http.StatusOK)
}

func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	page, limit := pageParams(r)
	items, pagination := paginate(h.store.Reviews(id), page, limit)
	utils.SuccessResponse(w, map[string]interface{}{"reviews": items, "pagination": pagination}, http.StatusOK)
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req locations.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	rv, ok := h.store.AddReview(UserIDFromContext(r.Context()), locations.Review{
		LocationID: mux.Vars(r)["id"],
		Title:      req.Title,
		Content:    req.Content,
		Rating:     req.Rating,
		VisitDate:  req.VisitDate,
	})
	if !ok {
		utils.ErrorResponse(w, "Location not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"review": rv}, http.StatusCreated)
}

func (h *Handler) GetTips(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, map[string]interface{}{"tips": h.store.Tips(mux.Vars(r)["id"])}, http.StatusOK)
}

func (h *Handler) AddTip(w http.ResponseWriter, r *http.Request) {
	var req locations.TipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	tip, ok := h.store.AddTip(UserIDFromContext(r.Context()), locations.InsiderTip{
		LocationID: mux.Vars(r)["id"],
		Category:   req.Category,
		Tip:        req.Tip,
		Priority:   req.Priority,
	})
	if !ok {
		utils.ErrorResponse(w, "Location not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"tip": tip}, http.StatusCreated)
}

func (h *Handler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, map[string]interface{}{"photos": h.store.Photos(mux.Vars(r)["id"])}, http.StatusOK)
}

func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.ErrorResponse(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["photo"]
	if len(files) == 0 {
		utils.ErrorResponse(w, "photo is required", http.StatusBadRequest)
		return
	}
	caption := r.FormValue("caption")
	up, err := h.storeUpload(files[0], caption)
	if err != nil {
		utils.ErrorResponse(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	photo, ok := h.store.AddPhoto(UserIDFromContext(r.Context()), locations.CommunityPhoto{
		LocationID: mux.Vars(r)["id"],
		URL:        up.URL,
		Caption:    caption,
		Category:   r.FormValue("category"),
	})
	if !ok {
		utils.ErrorResponse(w, "Location not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"photo": photo}, http.StatusCreated)
}

// Media

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		utils.ErrorResponse(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		utils.ErrorResponse(w, "file is required", http.StatusBadRequest)
		return
	}
	up, err := h.storeUpload(files[0], r.FormValue("alt"))
	if err != nil {
		utils.ErrorResponse(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	utils.SuccessResponse(w, up, http.StatusCreated)
}

func (h *Handler) storeUpload(fh *multipart.FileHeader, alt string) (media.Uploaded, error) {
	f, err := fh.Open()
	if err != nil {
		return media.Uploaded{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return media.Uploaded{}, err
	}
	if len(data) == 0 {
		return media.Uploaded{}, errors.New("empty upload")
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return h.store.AddMedia(media.Uploaded{Alt: alt, Filename: fh.Filename, MimeType: mimeType}), nil
}

// Categories, events

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	utils.SuccessResponse(w, h.store.Categories(), http.StatusOK)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	found := h.store.Events(UserIDFromContext(r.Context()), q.Get("category"), events.Status(q.Get("status")))
	page, limit := pageParams(r)
	items, pagination := paginate(found, page, limit)
	utils.SuccessResponse(w, events.Page{Events: items, Pagination: pagination}, http.StatusOK)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := h.store.Event(UserIDFromContext(r.Context()), mux.Vars(r)["id"])
	if !ok {
		utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"event": e}, http.StatusOK)
}

func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status events.RSVP `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Status.Valid() {
		utils.ErrorResponse(w, "Invalid RSVP status", http.StatusBadRequest)
		return
	}

	e, err := h.store.RSVP(UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		utils.ErrorResponse(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, ErrEventFull):
		utils.CodedErrorResponse(w, "Event is full", "EVENT_FULL", http.StatusBadRequest)
	case err != nil:
		utils.ErrorResponse(w, "Failed to RSVP", http.StatusInternalServerError)
	default:
		utils.SuccessResponse(w, map[string]interface{}{"event": e}, http.StatusOK)
	}
}

// Reports, planner

// CreateReport answers 409 when the caller already reported the same content.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reports.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, ok := h.store.AddReport(UserIDFromContext(r.Context()), string(req.ContentType)+":"+req.ContentID)
	if !ok {
		utils.ErrorResponse(w, "You have already reported this content", http.StatusConflict)
		return
	}
	utils.SuccessResponse(w, map[string]interface{}{"report": reports.Report{ID: id, Status: "pending"}}, http.StatusCreated)
}

// Plan builds a canned itinerary from the first known locations.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	plan := planner.Plan{
		Title:   "Plan: " + strings.TrimSpace(req.Input),
		Summary: "A sandbox itinerary",
		Steps:   []planner.Step{},
	}
	if req.UseNearby {
		nearby := h.store.SearchLocations(UserIDFromContext(r.Context()), "")
		if len(nearby) > 3 {
			nearby = nearby[:3]
		}
		for _, l := range nearby {
			plan.Steps = append(plan.Steps, planner.Step{Activity: "Visit " + l.Name, LocationID: l.ID, Location: l.Name})
		}
		plan.UsedRealLocations = len(nearby) > 0
	}
	if len(plan.Steps) == 0 {
		plan.Steps = append(plan.Steps, planner.Step{Activity: "Explore the neighborhood"})
	}
	utils.SuccessResponse(w, map[string]interface{}{"plan": plan}, http.StatusOK)
}
