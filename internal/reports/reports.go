// internal/reports/reports.go
package reports

import (
	"context"
	"net/http"
	"strings"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/utils"
)

type ContentType string

const (
	ContentPost     ContentType = "post"
	ContentComment  ContentType = "comment"
	ContentUser     ContentType = "user"
	ContentLocation ContentType = "location"
	ContentReview   ContentType = "review"
	ContentPhoto    ContentType = "photo"
)

type ReportRequest struct {
	ContentType ContentType `json:"contentType" validate:"required,oneof=post comment user location review photo"`
	ContentID   string      `json:"contentId" validate:"required"`
	Reason      string      `json:"reason" validate:"required,oneof=spam harassment inappropriate misinformation violence copyright other"`
	Description string      `json:"description,omitempty" validate:"max=1000"`
}

type Report struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Report files a content report. Reports are explicit user actions, so every failure is
// returned for the caller to show.
func (s *Service) Report(ctx context.Context, req *ReportRequest) (*Report, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}
	if req.Reason == "other" && req.Description == "" {
		return nil, apiclient.Validation("please describe the problem")
	}

	res, err := apiclient.Call[struct {
		Report Report `json:"report"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/reports",
		JSON:   req,
		Auth:   apiclient.AuthBearer,
	})
	if err != nil {
		return nil, err
	}
	return &res.Report, nil
}
