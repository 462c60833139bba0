package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sacavia/sacavia-go/internal/common/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	token, err := utils.GenerateJWT(&utils.JWTClaims{UserID: userID, ExpiresAt: exp.Unix()}, "test")
	require.NoError(t, err)
	return token
}

func TestSessionJWTClaims(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore(), "default", nil)
	require.False(t, s.Authenticated())

	token := signedToken(t, "user-1", time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(ctx, token))

	assert.Equal(t, token, s.Token())
	assert.Equal(t, "user-1", s.UserID())
	assert.True(t, s.Authenticated())
}

func TestSessionOpaqueToken(t *testing.T) {
	s := New(nil, "default", nil)
	require.NoError(t, s.SetToken(context.Background(), "opaque"))
	assert.Equal(t, "opaque", s.Token())
	assert.Equal(t, "", s.UserID())
}

func TestSessionExpiredTokenIsAbsent(t *testing.T) {
	s := New(nil, "default", nil)
	require.NoError(t, s.SetToken(context.Background(), signedToken(t, "user-1", time.Now().Add(time.Minute))))

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, "", s.Token())
	assert.False(t, s.Authenticated())
}

func TestSessionInvalidateClearsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(store, "default", nil)
	require.NoError(t, s.SetToken(ctx, "opaque"))

	s.Invalidate()
	assert.Equal(t, "", s.Token())

	restored := New(store, "default", nil)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, "", restored.Token())
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, New(store, "default", nil).SetToken(ctx, "opaque"))

	s := New(store, "default", nil)
	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, "opaque", s.Token())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "k", "v", time.Minute))

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	token, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", token)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "sacavia:session:")
	s := New(store, "default", nil)

	token := signedToken(t, "user-9", time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(ctx, token))

	stored, err := mr.Get("sacavia:session:default")
	require.NoError(t, err)
	assert.Equal(t, token, stored)
	ttl := mr.TTL("sacavia:session:default")
	assert.True(t, ttl > 50*time.Minute && ttl <= time.Hour, "ttl %s", ttl)

	loaded, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", loaded)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("sacavia:session:default"))
}
