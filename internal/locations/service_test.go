package locations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/multipart"
	"github.com/sacavia/sacavia-go/internal/optimistic"
	"github.com/sacavia/sacavia-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, handler http.HandlerFunc, log *zap.SugaredLogger) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New(nil, "test", nil)
	require.NoError(t, sess.SetToken(context.Background(), "tok"))
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)
	return NewService(client, optimistic.NewReconciler(log, nil), log)
}

func validRequest() *CreateLocationRequest {
	return &CreateLocationRequest{
		Name:        "Blue Bottle",
		Description: "Coffee in a converted garage",
		Address:     Address{City: "Oakland", Country: "US"},
		Coordinates: &Coordinates{Latitude: 37.8, Longitude: -122.27},
		Categories:  []string{"cafe", "coffee"},
		BusinessHours: []BusinessHours{
			{Day: "Monday", Open: "07:00", Close: "17:00"},
			{Day: "Sunday", Closed: true},
		},
		Privacy: PrivacyPublic,
	}
}

func TestCreateLocation(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body CreateLocationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Blue Bottle", body.Name)
		w.Write([]byte(`{"success":true,"data":{"location":{"id":"l1","name":"Blue Bottle","ownershipStatus":"unclaimed","privacy":"public"}}}`))
	}, nil)

	loc, err := svc.CreateLocation(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "l1", loc.ID)
	assert.Equal(t, OwnershipUnclaimed, loc.Ownership)
	assert.False(t, loc.Ownership.Claimed())
}

func TestCreateLocationValidation(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, nil)

	tests := []struct {
		name   string
		mutate func(r *CreateLocationRequest)
	}{
		{"missing name", func(r *CreateLocationRequest) { r.Name = "" }},
		{"too many categories", func(r *CreateLocationRequest) { r.Categories = []string{"a", "b", "c", "d"} }},
		{"no categories", func(r *CreateLocationRequest) { r.Categories = nil }},
		{"bad privacy", func(r *CreateLocationRequest) { r.Privacy = "secret" }},
		{"bad latitude", func(r *CreateLocationRequest) { r.Coordinates.Latitude = 120 }},
		{"open day without hours", func(r *CreateLocationRequest) { r.BusinessHours[0].Open = "" }},
		{"missing city", func(r *CreateLocationRequest) { r.Address.City = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := svc.CreateLocation(context.Background(), req)
			require.ErrorIs(t, err, apiclient.ErrValidation)
		})
	}
}

func TestToggleSaveResyncFailureKeepsSaved(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	var mu sync.Mutex
	var calls []string

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/api/mobile/locations/l1/save":
			_, err := r.Cookie(apiclient.CookieName)
			require.NoError(t, err)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "save", body["action"])
			w.Write([]byte(`{"success":true,"message":"Location saved"}`))
		case "/api/mobile/locations/interaction-state":
			// drop the connection so the resync sees a transport failure
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
		}
	}, zap.New(core).Sugar())

	state := optimistic.NewFlagState()
	require.NoError(t, svc.ToggleSave(context.Background(), state, "l1", true))

	saved, count := state.Get("l1")
	assert.True(t, saved)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"/api/mobile/locations/l1/save", "/api/mobile/locations/interaction-state"}, calls)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "resync after optimistic action failed", entry.Message)
	assert.Equal(t, "location.save", entry.ContextMap()["action"])
}

func TestToggleSaveRevertsOnError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Location not found"}`))
	}, nil)

	state := optimistic.NewFlagState()
	err := svc.ToggleSave(context.Background(), state, "l1", true)
	require.Error(t, err)
	assert.Equal(t, "Location not found", apiclient.MessageOf(err))

	saved, count := state.Get("l1")
	assert.False(t, saved)
	assert.Zero(t, count)
}

func TestToggleSaveResyncsCounts(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/mobile/locations/interaction-state" {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Write([]byte(`{"success":true,"data":{"interactions":[{"locationId":"l1","isSaved":true,"saveCount":12}],"totalLocations":1,"totalSaved":1}}`))
			return
		}
		w.Write([]byte(`{"success":true}`))
	}, nil)

	state := optimistic.NewFlagState()
	require.NoError(t, svc.ToggleSave(context.Background(), state, "l1", true))
	saved, count := state.Get("l1")
	assert.True(t, saved)
	assert.Equal(t, 12, count)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile/locations/search", r.URL.Path)
		_, err := r.Cookie(apiclient.CookieName)
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tacos", body["query"])
		assert.Equal(t, float64(1), body["page"])
		w.Write([]byte(`{"success":true,"data":{"locations":[{"id":"l2","name":"Taqueria"}],"pagination":{"page":1,"limit":20,"total":1,"totalPages":1}}}`))
	}, nil)

	res, err := svc.Search(context.Background(), " tacos ", 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Locations, 1)
	assert.Equal(t, 1, res.Pagination.Total)

	_, err = svc.Search(context.Background(), "  ", 1, 10)
	require.ErrorIs(t, err, apiclient.ErrValidation)
}

func TestReviewsAndTips(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method + " " + r.URL.Path {
		case "GET /api/mobile/locations/l1/reviews":
			w.Write([]byte(`{"success":true,"data":{"reviews":[{"id":"r1","rating":4}],"pagination":{"page":1,"total":1}}}`))
		case "POST /api/mobile/locations/l1/reviews":
			w.Write([]byte(`{"success":true,"data":{"review":{"id":"r2","rating":5}}}`))
		case "GET /api/mobile/locations/l1/insider-tips":
			w.Write([]byte(`{"success":true,"data":{"tips":[{"id":"t1","category":"timing","priority":"high"}]}}`))
		case "POST /api/mobile/locations/l1/insider-tips":
			w.Write([]byte(`{"success":true,"data":{"tip":{"id":"t2","category":"food","priority":"low"}}}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}, nil)
	ctx := context.Background()

	reviews, page, err := svc.GetReviews(ctx, "l1", 1, 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, page.Total)

	review, err := svc.AddReview(ctx, "l1", &ReviewRequest{Title: "Great", Content: "Loved the cold brew", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "r2", review.ID)

	_, err = svc.AddReview(ctx, "l1", &ReviewRequest{Title: "Bad", Content: "short", Rating: 9})
	require.ErrorIs(t, err, apiclient.ErrValidation)

	tips, err := svc.GetInsiderTips(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, tips[0].Priority)

	tip, err := svc.AddInsiderTip(ctx, "l1", &TipRequest{Category: TipFood, Tip: "Order the tostada", Priority: PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, "t2", tip.ID)

	_, err = svc.AddInsiderTip(ctx, "l1", &TipRequest{Category: "gossip", Tip: "whatever it is", Priority: "urgent"})
	require.ErrorIs(t, err, apiclient.ErrValidation)
}

func TestAddCommunityPhoto(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile/locations/l1/community-photos", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "patio", r.FormValue("caption"))
		_, header, err := r.FormFile("photo")
		require.NoError(t, err)
		assert.Equal(t, "p.bin", header.Filename)
		w.Write([]byte(`{"success":true,"data":{"photo":{"id":"cp1","status":"pending"}}}`))
	}, nil)

	var last float64
	photo, err := svc.AddCommunityPhoto(context.Background(), "l1",
		multipart.File{Filename: "p.bin", MimeType: "application/octet-stream", Data: []byte("raw")},
		"patio", "", func(f float64) { last = f })
	require.NoError(t, err)
	assert.Equal(t, "pending", photo.Status)
	assert.Equal(t, 1.0, last)
}

func TestAddCommunityPhotoFailureNeverCompletes(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"storage unavailable"}`))
	}, nil)

	var progress []float64
	_, err := svc.AddCommunityPhoto(context.Background(), "l1",
		multipart.File{Filename: "p.bin", MimeType: "application/octet-stream", Data: []byte("raw")},
		"patio", "", func(f float64) { progress = append(progress, f) })
	require.ErrorIs(t, err, apiclient.ErrServer)
	require.NotEmpty(t, progress)
	for _, f := range progress {
		assert.Less(t, f, 1.0)
	}
}
