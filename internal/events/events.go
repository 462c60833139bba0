// internal/events/events.go
package events

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sacavia/sacavia-go/internal/apiclient"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// RSVP is the viewer's participation in an event.
type RSVP string

const (
	RSVPGoing      RSVP = "going"
	RSVPInterested RSVP = "interested"
	RSVPNotGoing   RSVP = "not_going"
	RSVPInvited    RSVP = "invited"
)

func (r RSVP) Valid() bool {
	switch r {
	case RSVPGoing, RSVPInterested, RSVPNotGoing, RSVPInvited:
		return true
	}
	return false
}

type Organizer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category,omitempty"`
	EventType        string     `json:"eventType,omitempty"`
	Status           Status     `json:"status"`
	StartDate        string     `json:"startDate"`
	EndDate          string     `json:"endDate,omitempty"`
	LocationID       string     `json:"locationId,omitempty"`
	Capacity         int        `json:"capacity"`
	ParticipantCount int        `json:"participantCount"`
	InterestedCount  int        `json:"interestedCount"`
	Organizer        *Organizer `json:"organizer,omitempty"`
	UserRSVP         RSVP       `json:"userRsvpStatus,omitempty"`
	Image            string     `json:"image,omitempty"`
}

// Full reports whether capacity is set and reached.
func (e *Event) Full() bool {
	return e.Capacity > 0 && e.ParticipantCount >= e.Capacity
}

type Filter struct {
	Category string
	Status   Status
	Page     int
	Limit    int
}

type Page struct {
	Events     []Event              `json:"events"`
	Pagination apiclient.Pagination `json:"pagination"`
}

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// ListEvents pages through events matching f.
func (s *Service) ListEvents(ctx context.Context, f Filter) (*Page, error) {
	q := map[string]string{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	if f.Page > 0 {
		q["page"] = strconv.Itoa(f.Page)
	}
	if f.Limit > 0 {
		q["limit"] = strconv.Itoa(f.Limit)
	}

	res, err := apiclient.Call[Page](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/events",
		Query:  q,
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	if id == "" {
		return nil, apiclient.Validation("event id is required")
	}
	res, err := apiclient.Call[struct {
		Event Event `json:"event"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/api/mobile/events/" + apiclient.PathEscape(id),
		Route:  "/api/mobile/events/{id}",
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res.Event, nil
}

// RSVP records the caller's participation and returns the updated event.
func (s *Service) RSVP(ctx context.Context, id string, status RSVP) (*Event, error) {
	if id == "" {
		return nil, apiclient.Validation("event id is required")
	}
	if !status.Valid() {
		return nil, apiclient.Validation("invalid rsvp status %q", status)
	}
	res, err := apiclient.Call[struct {
		Event Event `json:"event"`
	}](ctx, s.client, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/mobile/events/" + apiclient.PathEscape(id) + "/rsvp",
		Route:  "/api/mobile/events/{id}/rsvp",
		JSON:   map[string]RSVP{"status": status},
		Auth:   apiclient.AuthCookie,
	})
	if err != nil {
		return nil, err
	}
	return &res.Event, nil
}
