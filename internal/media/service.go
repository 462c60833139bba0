// internal/media/service.go

package media

import (
	"context"
	"net/http"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"go.uber.org/zap"
)

// Uploaded is the media record the backend returns for an upload.
type Uploaded struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type Service struct {
	client  *apiclient.Client
	source  Source
	encoder multipart.Encoder
	log     *zap.SugaredLogger
}

// NewService creates an upload service. source resolves references for UploadRef and
// defaults to local files.
func NewService(client *apiclient.Client, source Source, log *zap.SugaredLogger) *Service {
	if source == nil {
		source = Resolver{}
	}
	return &Service{client: client, source: source, log: logger.OrNop(log)}
}

// UploadImage uploads one image. The route accepts either transport and callers differ:
// profile and post screens send the cookie, the location gallery sends a bearer token.
func (s *Service) UploadImage(ctx context.Context, file multipart.File, alt string, auth apiclient.AuthMode) (*Uploaded, error) {
	if len(file.Data) == 0 {
		return nil, apiclient.Validation("image is empty")
	}
	if auth == apiclient.AuthNone {
		auth = apiclient.AuthCookie
	}

	file.Name = "file"
	if file.Filename == "" {
		file.Filename = "image.jpg"
	}
	compressed, err := multipart.CompressFile(file)
	if err != nil {
		s.log.Warnw("image compression failed, uploading original", "filename", file.Filename, "error", err)
		compressed = file
	}

	fields := []multipart.Field{}
	if alt != "" {
		fields = append(fields, multipart.Field{Name: "alt", Value: alt})
	}
	body, err := s.encoder.Encode(fields, []multipart.File{compressed}, nil)
	if err != nil {
		return nil, apiclient.WrapValidation(err)
	}

	res, err := apiclient.Call[Uploaded](ctx, s.client, apiclient.Request{
		Method:      http.MethodPost,
		Path:        "/api/mobile/upload/image",
		Body:        body.Data,
		ContentType: body.ContentType,
		Auth:        auth,
		Upload:      true,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UploadRef loads ref from the configured source and uploads it.
func (s *Service) UploadRef(ctx context.Context, ref, alt string, auth apiclient.AuthMode) (*Uploaded, error) {
	file, err := s.source.Open(ctx, ref)
	if err != nil {
		return nil, apiclient.WrapValidation(err)
	}
	return s.UploadImage(ctx, file, alt, auth)
}

// UploadTracked is UploadImage registered on t for the duration of the call.
func (s *Service) UploadTracked(ctx context.Context, t *Tracker, file multipart.File, alt string, auth apiclient.AuthMode) (*Uploaded, error) {
	done := t.Begin()
	res, err := s.UploadImage(ctx, file, alt, auth)
	done(err)
	return res, err
}
