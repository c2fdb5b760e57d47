package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/provision/pkg/adapters/redis"
	"github.com/aretw0/provision/pkg/domain"
	"github.com/aretw0/provision/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()
	state := &domain.DeviceState{ID: "dev-ttl", Credentials: domain.Credentials{SSID: "home"}}

	require.NoError(t, store.Save(ctx, "dev-ttl", state))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "dev-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "dev-ttl")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, "esp-1", &domain.DeviceState{ID: "esp-1"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:esp-1"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.Equal(t, "custom:app:", store.Prefix())
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_DefaultPrefixAndCorruptValue(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))
	_, err := store.Load(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
