package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestService(t *testing.T, token string, handler http.HandlerFunc, log *zap.SugaredLogger) (*Service, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New(nil, "test", nil)
	if token != "" {
		require.NoError(t, sess.SetToken(context.Background(), token))
	}
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)
	return NewService(client, sess, log), sess
}

func TestFollow(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
		kind   apiclient.Kind
	}{
		{"ok", 200, `{"success":true,"message":"Followed"}`, true, ""},
		{"already following", 409, `{"success":false,"error":"Already following this user"}`, true, ""},
		{"unauthorized", 401, `{"success":false,"error":"Unauthorized"}`, false, apiclient.KindUnauthorized},
		{"server error", 500, ``, false, apiclient.KindServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/mobile/users/u1/follow", r.URL.Path)
				c, err := r.Cookie(apiclient.CookieName)
				require.NoError(t, err)
				assert.Equal(t, "tok", c.Value)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			got, err := svc.Follow(context.Background(), "u1")
			assert.Equal(t, tt.want, got)
			if tt.kind == "" {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.kind, apiclient.KindOf(err))
			}
		})
	}
}

func TestFollowWithoutToken(t *testing.T) {
	rec := &recorder{}
	svc, _ := newTestService(t, "", func(w http.ResponseWriter, r *http.Request) { rec.add(r) }, nil)

	ok, err := svc.Follow(context.Background(), "u1")
	assert.False(t, ok)
	require.ErrorIs(t, err, apiclient.ErrAuthenticationRequired)
	assert.Empty(t, rec.list())
}

func TestFollowUnauthorizedInvalidatesSession(t *testing.T) {
	svc, sess := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := svc.Follow(context.Background(), "u1")
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.False(t, sess.Authenticated())
}

func TestUnfollow(t *testing.T) {
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/mobile/users/u2/follow" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"success":false,"error":"Not following this user"}`))
			return
		}
		w.Write([]byte(`{"success":true}`))
	}, nil)

	ok, err := svc.Unfollow(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Unfollow(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlockUserCascadesUnfollow(t *testing.T) {
	rec := &recorder{}
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		if r.URL.Path == "/api/mobile/users/block" {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var body BlockRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, BlockRequest{TargetUserID: "u9", Reason: "spam"}, body)
		}
		w.Write([]byte(`{"success":true}`))
	}, nil)

	require.NoError(t, svc.BlockUser(context.Background(), "u9", "spam"))
	assert.Equal(t, []string{"POST /api/mobile/users/block", "DELETE /api/mobile/users/u9/follow"}, rec.list())
}

func TestBlockUserSwallowsCascadeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mobile/users/block" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}, zap.New(core).Sugar())

	require.NoError(t, svc.BlockUser(context.Background(), "u9", ""))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "unfollow after block failed", logs.All()[0].Message)
}

func TestBlockUserRejectsSelf(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "me"})
	signed, err := token.SignedString([]byte("k"))
	require.NoError(t, err)

	rec := &recorder{}
	svc, _ := newTestService(t, signed, func(w http.ResponseWriter, r *http.Request) { rec.add(r) }, nil)

	err = svc.BlockUser(context.Background(), "me", "")
	require.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Empty(t, rec.list())

	err = svc.BlockUser(context.Background(), "", "")
	require.ErrorIs(t, err, apiclient.ErrValidation)
}

func TestUnblockUser(t *testing.T) {
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/mobile/users/block", r.URL.Path)
		assert.Equal(t, "u9", r.URL.Query().Get("targetUserId"))
		w.Write([]byte(`{"success":true}`))
	}, nil)

	require.NoError(t, svc.UnblockUser(context.Background(), "u9"))
}

func TestGetStatsDefaultsMissingCounters(t *testing.T) {
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile/users/u1/stats", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"postsCount":4,"averageRating":4.5}}`))
	}, nil)

	stats, err := svc.GetStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &Stats{PostsCount: 4, AverageRating: 4.5}, stats)
}

func TestGetProfileAndFollowers(t *testing.T) {
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mobile/users/profile":
			assert.Equal(t, "u1", r.URL.Query().Get("userId"))
			w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","name":"Ada","isFollowing":true}}}`))
		case "/api/mobile/users/u1/followers":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			w.Write([]byte(`{"success":true,"data":{"followers":[{"id":"u2","name":"Bo"}],"pagination":{"page":2,"limit":20,"total":21,"totalPages":2,"hasPrev":true}}}`))
		}
	}, nil)

	p, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.User.Name)
	assert.Nil(t, p.Stats)

	following, err := svc.IsFollowing(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, following)

	conns, err := svc.GetFollowers(context.Background(), "u1", 2, 20)
	require.NoError(t, err)
	require.Len(t, conns.Users, 1)
	assert.Equal(t, "Bo", conns.Users[0].Name)
	assert.Equal(t, 21, conns.Pagination.Total)
}

func TestUpdateProfileValidates(t *testing.T) {
	rec := &recorder{}
	svc, _ := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","name":"New"}}}`))
	}, nil)

	bad := "not a url"
	_, err := svc.UpdateProfile(context.Background(), &UpdateProfileRequest{Website: &bad})
	require.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Empty(t, rec.list())

	name := "New"
	u, err := svc.UpdateProfile(context.Background(), &UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)
	assert.Equal(t, []string{"PUT /api/mobile/users/profile"}, rec.list())
}

func TestDeleteAccountDropsSession(t *testing.T) {
	svc, sess := newTestService(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mobile/users/delete-account", r.URL.Path)
		w.Write([]byte(`{"success":true,"message":"Account deleted"}`))
	}, nil)

	require.NoError(t, svc.DeleteAccount(context.Background(), &DeleteAccountRequest{Password: "pw"}))
	assert.False(t, sess.Authenticated())
}
