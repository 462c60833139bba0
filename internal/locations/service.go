// internal/locations/service.go
package locations

import (
	"context"
	"net/http"
	"strings"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"github.com/sacavia/sacavia-go/internal/optimistic"
	"github.com/sacavia/sacavia-go/internal/posts"
	"go.uber.org/zap"
)

var ErrMissingLocationID = apiclient.Validation("location id is required")

type Service struct {
	client     *apiclient.Client
	reconciler *optimistic.Reconciler
	encoder    multipart.Encoder
	log        *zap.SugaredLogger
}

func NewService(client *apiclient.Client, reconciler *optimistic.Reconciler, log *zap.SugaredLogger) *Service {
	if reconciler == nil {
		reconciler = optimistic.NewReconciler(log, nil)
	}
	return &Service{client: client, reconciler: reconciler, log: logger.OrNop(log)}
}

func path(id string, sub ...string) string {
	p := "/api/mobile/locations/" + apiclient.PathEscape(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

func route(sub ...string) string {
	return "/api/mobile/locations/{id}" + strings.Join(append([]string{""}, sub...), "/")
}

// CreateLocation validates and submits a new location.
func (s *Service) CreateLocation(ctx context.Context, req *CreateLocationRequest) (*Location, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[struct {
		Location Location `json:"location"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/locations",
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res.Location, nil
}

func (s *Service) GetLocation(ctx context.Context, id string) (*Location, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	res, err := apiclient.Call[struct {
		Location Location `json:"location"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   path(id),
		Route:  route(),
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res.Location, nil
}

// Search runs a free text location search.
func (s *Service) Search(ctx context.Context, query string, page, limit int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apiclient.Validation("search query is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	res, err := apiclient.Call[SearchResult](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/locations/search",
		JSON: map[string]interface{}{
			"query": query,
			"page":  page,
			"limit": limit,
		},
		Auth: apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckInteractionState fetches the authoritative save/subscribe state for ids.
func (s *Service) CheckInteractionState(ctx context.Context, ids []string) (*InteractionState, error) {
	if len(ids) == 0 {
		return nil, apiclient.Validation("at least one location id is required")
	}
	res, err := apiclient.Call[InteractionState](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/locations/interaction-state",
		JSON:   map[string][]string{"locationIds": ids},
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SetSaved saves or unsaves a location. The response body is not authoritative.
func (s *Service) SetSaved(ctx context.Context, id string, save bool) error {
	if id == "" {
		return ErrMissingLocationID
	}
	action := "unsave"
	if save {
		action = "save"
	}
	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   path(id, "save"),
		Route:  route("save"),
		JSON:   map[string]string{"action": action},
		Auth:   apiclient.AuthCookie,
	})
	return err
}

// ToggleSave flips isSaved in state before the request, reverts it if the request
// fails and otherwise resyncs from interaction-state. A failed resync keeps the flip.
func (s *Service) ToggleSave(ctx context.Context, state *optimistic.FlagState, id string, desired bool) error {
	if id == "" {
		return ErrMissingLocationID
	}
	mutate, revert := state.FlipToggle(id, desired)
	return s.reconciler.Perform(ctx, optimistic.Toggle{
		Key:    "location:" + id,
		Action: "location.save",
		Mutate: mutate,
		Revert: revert,
		Call: func(ctx context.Context) error {
			return s.SetSaved(ctx, id, desired)
		},
		Resync: func(ctx context.Context) error {
			res, err := s.CheckInteractionState(ctx, []string{id})
			if err != nil {
				return err
			}
			if i, ok := res.Find(id); ok {
				state.Set(id, i.IsSaved, i.SaveCount)
			}
			return nil
		},
	})
}

func (s *Service) GetReviews(ctx context.Context, id string, page, limit int) ([]Review, *apiclient.Pagination, error) {
	if id == "" {
		return nil, nil, ErrMissingLocationID
	}
	res, err := apiclient.Call[struct {
		Reviews    []Review             `json:"reviews"`
		Pagination apiclient.Pagination `json:"pagination"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   path(id, "reviews"),
		Route:  route("reviews"),
		Query:  posts.PageQuery(page, limit),
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, nil, err
	}
	return res.Reviews, &res.Pagination, nil
}

func (s *Service) AddReview(ctx context.Context, id string, req *ReviewRequest) (*Review, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}
	res, err := apiclient.Call[struct {
		Review Review `json:"review"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   path(id, "reviews"),
		Route:  route("reviews"),
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res.Review, nil
}

func (s *Service) GetInsiderTips(ctx context.Context, id string) ([]InsiderTip, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	res, err := apiclient.Call[struct {
		Tips []InsiderTip `json:"tips"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   path(id, "insider-tips"),
		Route:  route("insider-tips"),
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return res.Tips, nil
}

func (s *Service) AddInsiderTip(ctx context.Context, id string, req *TipRequest) (*InsiderTip, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	req.Tip = strings.TrimSpace(req.Tip)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}
	res, err := apiclient.Call[struct {
		Tip InsiderTip `json:"tip"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   path(id, "insider-tips"),
		Route:  route("insider-tips"),
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res.Tip, nil
}

func (s *Service) GetCommunityPhotos(ctx context.Context, id string) ([]CommunityPhoto, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	res, err := apiclient.Call[struct {
		Photos []CommunityPhoto `json:"photos"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   path(id, "community-photos"),
		Route:  route("community-photos"),
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return res.Photos, nil
}

// AddCommunityPhoto uploads a photo for moderation; it shows up once approved.
func (s *Service) AddCommunityPhoto(ctx context.Context, id string, photo multipart.File, caption, category string,
	progress multipart.ProgressFunc) (*CommunityPhoto, error) {
	if id == "" {
		return nil, ErrMissingLocationID
	}
	if len(photo.Data) == 0 {
		return nil, apiclient.Validation("photo is empty")
	}

	photo.Name = "photo"
	if compressed, err := multipart.CompressFile(photo); err == nil {
		photo = compressed
	} else {
		s.log.Warnw("photo compression failed, uploading original", "filename", photo.Filename, "error", err)
	}

	fields := []multipart.Field{}
	if caption = strings.TrimSpace(caption); caption != "" {
		fields = append(fields, multipart.Field{Name: "caption", Value: caption})
	}
	if category != "" {
		fields = append(fields, multipart.Field{Name: "category", Value: category})
	}
	body, err := s.encoder.Encode(fields, []multipart.File{photo}, progress.Scaled(multipart.EncodedShare))
	if err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[struct {
		Photo CommunityPhoto `json:"photo"`
	}](ctx, s.client, apiclient.Request{
		Method:      http.MethodPost,
		Path:        path(id, "community-photos"),
		Route:       route("community-photos"),
		Body:        body.Data,
		ContentType: body.ContentType,
		Auth:        apiclient.AuthBearer,
		Upload:      true,
	})
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(1.0)
	}
	return &res.Photo, nil
}
