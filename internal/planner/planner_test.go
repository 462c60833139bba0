package planner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(apiclient.CookieName)
		require.NoError(t, err)
		assert.Equal(t, "tok", c.Value)
		w.Write([]byte(`{"success":true,"data":{"plan":{"title":"Saturday in Oakland","steps":[{"time":"09:00","activity":"Coffee","locationId":"l1"}],"usedRealLocations":true}}}`))
	}))
	t.Cleanup(srv.Close)

	sess := session.New(nil, "k", nil)
	require.NoError(t, sess.SetToken(context.Background(), "tok"))
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)
	svc := NewService(client)

	plan, err := svc.Plan(context.Background(), &PlanRequest{Input: "a relaxed saturday", Coordinates: &Coordinates{Latitude: 37.8, Longitude: -122.27}})
	require.NoError(t, err)
	assert.Equal(t, "Saturday in Oakland", plan.Title)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "l1", plan.Steps[0].LocationID)

	_, err = svc.Plan(context.Background(), &PlanRequest{Input: "  "})
	require.ErrorIs(t, err, apiclient.ErrValidation)
}
