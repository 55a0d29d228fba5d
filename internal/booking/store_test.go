package booking

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession("sess-1", now)
	s.Form = Form{Name: "Asha", Email: "asha@example.com", WhatsApp: "+91 9", Issue: "PCOS", Plan: "Weight Loss Plan"}
	outcome := Failed("Payment cancelled by user")
	s.Page = PageFailure
	s.Outcome = &outcome
	s.TestimonialIndex = 3
	return s
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	s := sampleSession()
	require.NoError(t, store.Save(ctx, s))

	s.Form.Name = "changed after save"
	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Form.Name, "store must keep its own copy")
	assert.Equal(t, PageFailure, got.Page)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, "Payment cancelled by user", got.Outcome.Error)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), sampleSession()))
	now = now.Add(2 * time.Minute)

	_, err := store.Load(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	_, err := store.Load(ctx, "sess-1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.True(t, mr.Exists("landing_session:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("landing_session:sess-1"))

	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, PageFailure, got.Page)
	assert.Equal(t, 3, got.TestimonialIndex)
	assert.Equal(t, "Weight Loss Plan", got.Form.Plan)

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, mr.Exists("landing_session:sess-1"))
}
