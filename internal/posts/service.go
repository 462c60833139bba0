// internal/posts/service.go
package posts

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"github.com/sacavia/sacavia-go/internal/optimistic"
	"go.uber.org/zap"
)

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
	return &Service{
		client:     client,
		reconciler: reconciler,
		log:        logger.OrNop(log),
	}
}

// CreatePost uploads a post with its media as one multipart request. Images are
// recompressed first. progress, when set, is called after each encoded part and once
// more with 1.0 when the server accepts the post.
func (s *Service) CreatePost(ctx context.Context, req *CreatePostRequest, progress multipart.ProgressFunc) (bool, error) {
	// Validate input
	content := strings.TrimSpace(req.Content)
	if content == "" && len(req.Images) == 0 && len(req.Videos) == 0 {
		return false, apiclient.Validation("a post needs text, an image or a video")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return false, apiclient.WrapValidation(err)
	}

	fields := []multipart.Field{
		{Name: "content", Value: content},
		{Name: "type", Value: "post"},
	}
	if req.LocationID != "" {
		fields = append(fields, multipart.Field{Name: "locationId", Value: req.LocationID})
	}

	files := make([]multipart.File, 0, len(req.Images)+len(req.Videos))
	for _, img := range req.Images {
		img.Name = "images"
		compressed, err := multipart.CompressFile(img)
		if err != nil {
			// the server can still take the original bytes
			s.log.Warnw("image compression failed, uploading original", "filename", img.Filename, "error", err)
			compressed = img
		}
		files = append(files, compressed)
	}
	for _, vid := range req.Videos {
		vid.Name = "videos"
		files = append(files, vid)
	}

	// 1.0 is only reported once the server accepts the post
	body, err := s.encoder.Encode(fields, files, progress.Scaled(multipart.EncodedShare))
	if err != nil {
		return false, apiclient.WrapValidation(err)
	}

	_, err = apiclient.Exec(ctx, s.client, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/api/mobile/posts",
		Body:        body.Data,
		ContentType: body.ContentType,
		Auth:        apiclient.AuthCookie,
		Upload:      true,
	})
	if err != nil {
		return false, err
	}

	if progress != nil {
		progress(1.0)
	}
	return true, nil
}

func (s *Service) Like(ctx context.Context, postID string) error {
	return s.interact(ctx, http.MethodPost, postID, "like")
}

func (s *Service) Unlike(ctx context.Context, postID string) error {
	return s.interact(ctx, http.MethodDelete, postID, "like")
}

func (s *Service) Save(ctx context.Context, postID string) error {
	return s.interact(ctx, http.MethodPost, postID, "save")
}

func (s *Service) Unsave(ctx context.Context, postID string) error {
	return s.interact(ctx, http.MethodDelete, postID, "save")
}

func (s *Service) interact(ctx context.Context, method, postID, action string) error {
	if postID == "" {
		return apiclient.Validation("post id is required")
	}
	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: method,
		Path:   "/api/mobile/posts/" + apiclient.PathEscape(postID) + "/" + action,
		Route:  "/api/mobile/posts/{id}/" + action,
		Auth:   apiclient.AuthCookie,
	})
	return err
}

// ToggleLike flips the like flag in state, calls like/unlike and resyncs from
// interaction-state.
func (s *Service) ToggleLike(ctx context.Context, state *optimistic.FlagState, postID string, desired bool) error {
	call := s.Unlike
	if desired {
		call = s.Like
	}
	return s.toggle(ctx, state, postID, desired, "post.like", call, func(i Interaction) (bool, int) {
		return i.IsLiked, i.LikeCount
	})
}

// ToggleSave is ToggleLike for the saved flag.
func (s *Service) ToggleSave(ctx context.Context, state *optimistic.FlagState, postID string, desired bool) error {
	call := s.Unsave
	if desired {
		call = s.Save
	}
	return s.toggle(ctx, state, postID, desired, "post.save", call, func(i Interaction) (bool, int) {
		return i.IsSaved, i.SaveCount
	})
}

func (s *Service) toggle(ctx context.Context, state *optimistic.FlagState, postID string, desired bool, action string,
	call func(context.Context, string) error, pick func(Interaction) (bool, int)) error {
	mutate, revert := state.FlipToggle(postID, desired)
	return s.reconciler.Perform(ctx, optimistic.Toggle{
		Key:    "post:" + postID,
		Action: action,
		Mutate: mutate,
		Revert: revert,
		Call: func(ctx context.Context) error {
			return call(ctx, postID)
		},
		Resync: func(ctx context.Context) error {
			res, err := s.CheckInteractionState(ctx, []string{postID})
			if err != nil {
				return err
			}
			if i, ok := res.Find(postID); ok {
				flag, count := pick(i)
				state.Set(postID, flag, count)
			}
			return nil
		},
	})
}

// CheckInteractionState fetches the authoritative like/save state for postIDs.
func (s *Service) CheckInteractionState(ctx context.Context, postIDs []string) (*InteractionState, error) {
	if len(postIDs) == 0 {
		return nil, apiclient.Validation("at least one post id is required")
	}
	res, err := apiclient.Call[InteractionState](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/posts/interaction-state",
		JSON:   map[string][]string{"postIds": postIDs},
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FetchComments returns the flat comment list for a post; use BuildCommentTree to nest it.
func (s *Service) FetchComments(ctx context.Context, postID string) ([]Comment, error) {
	if postID == "" {
		return nil, apiclient.Validation("post id is required")
	}
	res, err := apiclient.Call[struct {
		Comments []Comment `json:"comments"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/posts/comments",
		Query:  map[string]string{"postId": postID},
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return res.Comments, nil
}

// AddComment posts a comment, or a reply when parentID is non-empty.
func (s *Service) AddComment(ctx context.Context, postID, content, parentID string) (*Comment, error) {
	req := &CommentRequest{PostID: postID, Content: strings.TrimSpace(content)}
	if parentID != "" {
		req.ParentID = &parentID
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[struct {
		Comment Comment `json:"comment"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/posts/comments",
		JSON:   req,
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res.Comment, nil
}

// SharePost sends a post to other users.
func (s *Service) SharePost(ctx context.Context, postID string, recipientIDs []string, message string) error {
	if postID == "" {
		return apiclient.Validation("post id is required")
	}
	req := &ShareRequest{RecipientIDs: recipientIDs, Message: strings.TrimSpace(message)}
	if err := utils.ValidateStruct(req); err != nil {
		return apiclient.WrapValidation(err)
	}
	_, err := apiclient.Exec(ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/posts/" + apiclient.PathEscape(postID) + "/share",
		Route:  "/api/mobile/posts/{id}/share",
		JSON:   req,
		Auth:   apiclient.AuthCookie,
	})
	return err
}

// Page is one page of posts.
type Page struct {
	Posts      []Post               `json:"posts"`
	Pagination apiclient.Pagination `json:"pagination"`
}

// PageQuery builds the page/limit query shared by every paginated route.
func PageQuery(page, limit int) map[string]string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return map[string]string{"page": strconv.Itoa(page), "limit": strconv.Itoa(limit)}
}
