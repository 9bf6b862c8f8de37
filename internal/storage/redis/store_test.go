package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimeyayush/altair-frontend/internal/storage"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "altair:", ttl), mr
}

func TestStore_Get_Success(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	require.NoError(t, mr.Set("altair:mediDarkCart", `{"items":[]}`))

	got, err := s.Get(context.Background(), "mediDarkCart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(got))
}

func TestStore_Get_NotFound(t *testing.T) {
	s, _ := setupTestRedis(t, 0)

	_, err := s.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestStore_Set_UsesPrefixAndTTL(t *testing.T) {
	s, mr := setupTestRedis(t, time.Hour)

	require.NoError(t, s.Set(context.Background(), "session", []byte(`{"uid":"u"}`)))

	val, err := mr.Get("altair:session")
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"u"}`, val)
	assert.Equal(t, time.Hour, mr.TTL("altair:session"))
}

func TestStore_Set_NoTTL(t *testing.T) {
	s, mr := setupTestRedis(t, 0)

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	assert.Equal(t, time.Duration(0), mr.TTL("altair:k"))
}

func TestStore_Delete(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	require.NoError(t, mr.Set("altair:k", "v"))

	require.NoError(t, s.Delete(context.Background(), "k"))
	assert.False(t, mr.Exists("altair:k"))
}

func TestStore_ConnectionError(t *testing.T) {
	s, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, storage.IsNotFound(err))
	assert.Contains(t, err.Error(), "redis get k")
}
