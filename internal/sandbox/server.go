// internal/sandbox/server.go
// Local fake of the Sacavia mobile backend, used by cmd/sandbox and end-to-end tests

package sandbox

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sacavia/sacavia-go/internal/categories"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/sacavia/sacavia-go/internal/events"
	"go.uber.org/zap"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *zap.SugaredLogger
	// Seed loads sample categories and events
	Seed bool
}

// Server is the sandbox backend. It implements http.Handler.
type Server struct {
	store  *Store
	router *mux.Router
}

func New(opts Options) *Server {
	log := logger.OrNop(opts.Logger)
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}

	store := NewStore()
	if opts.Seed {
		Seed(store)
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.MessageResponse(w, "ok", http.StatusOK)
	}).Methods("GET")

	handler := NewHandler(store, opts.JWTSecret, opts.TokenTTL, log)
	RegisterRoutes(router, handler, NewMiddleware(store, opts.JWTSecret))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.ErrorResponse(w, "Route not found", http.StatusNotFound)
	})
	router.Use(loggingMiddleware(log))

	return &Server{store: store, router: router}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Store exposes the state for tests and seeding.
func (s *Server) Store() *Store {
	return s.store
}

// Seed loads a small taxonomy and two events.
func Seed(store *Store) {
	store.SetCategories([]categories.Category{
		{ID: "food", Name: "Food & Drink", Slug: "food", Type: "location"},
		{ID: "cafe", Name: "Cafes", Slug: "cafe", Type: "location", Parent: &categories.ParentRef{ID: "food"}},
		{ID: "bar", Name: "Bars", Slug: "bar", Type: "location", Parent: &categories.ParentRef{ID: "food"}},
		{ID: "outdoors", Name: "Outdoors", Slug: "outdoors", Type: "location"},
		{ID: "park", Name: "Parks", Slug: "park", Type: "location", Parent: &categories.ParentRef{ID: "outdoors"}},
	})

	start := time.Now().Add(72 * time.Hour).UTC()
	store.AddEvent(events.Event{
		ID:        "evt-market",
		Name:      "Night Market",
		Category:  "food",
		EventType: "market",
		Status:    events.StatusPublished,
		StartDate: start.Format(time.RFC3339),
		EndDate:   start.Add(4 * time.Hour).Format(time.RFC3339),
		Capacity:  200,
	})
	store.AddEvent(events.Event{
		ID:        "evt-hike",
		Name:      "Sunrise Hike",
		Category:  "outdoors",
		EventType: "meetup",
		Status:    events.StatusPublished,
		StartDate: start.Add(24 * time.Hour).Format(time.RFC3339),
		Capacity:  1,
	})
}
