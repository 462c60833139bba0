// internal/planner/planner.go
package planner

import (
	"context"
	"net/http"
	"strings"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/common/utils"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// PlanRequest asks the planner for an itinerary. Context is a free form hint such as
// "date night" or "family day".
type PlanRequest struct {
	Input       string       `json:"input" validate:"required,min=3,max=1000"`
	Context     string       `json:"context,omitempty" validate:"max=100"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	UseNearby   bool         `json:"useNearbyLocations"`
}

type Step struct {
	Time        string `json:"time,omitempty"`
	Activity    string `json:"activity"`
	Description string `json:"description,omitempty"`
	LocationID  string `json:"locationId,omitempty"`
	Location    string `json:"location,omitempty"`
}

type Plan struct {
	Title             string   `json:"title"`
	Summary           string   `json:"summary,omitempty"`
	Steps             []Step   `json:"steps"`
	Tips              []string `json:"tips,omitempty"`
	UsedRealLocations bool     `json:"usedRealLocations"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Plan(ctx context.Context, req *PlanRequest) (*Plan, error) {
	req.Input = strings.TrimSpace(req.Input)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apiclient.WrapValidation(err)
	}
	res, err := apiclient.Call[struct {
		Plan Plan `json:"plan"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/ai-planner",
		JSON:   req,
		Auth:   apiclient.AuthCookie,
		// generation is slow; give it the upload budget
		Upload: true,
	})
	if err != nil {
		return nil, err
	}
	return &res.Plan, nil
}
