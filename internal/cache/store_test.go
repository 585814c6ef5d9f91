package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func newBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores_GetSet(t *testing.T) {
	rs, _ := newRedis(t)
	stores := map[string]Store{"redis": rs, "badger": newBadger(t)}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))
		})
	}
}

func TestRedisStore_Expires(t *testing.T) {
	s, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Hour))
	mr.FastForward(59 * time.Minute)
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestBadgerStore_Expires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for badger's one second ttl resolution")
	}
	s := newBadger(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))
	assert.Eventually(t, func() bool {
		_, err := s.Get(ctx, "k")
		return err == ErrMiss
	}, 5*time.Second, 100*time.Millisecond)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "://nope")
	assert.Error(t, err)
}
