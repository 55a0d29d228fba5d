package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store keeps visitor sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates a memory store. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok && m.ttl > 0 && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return nil, fmt.Errorf("booking: decode session: %w", err)
	}
	return &s, nil
}

// Save implements Store. The stored value is a copy.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("booking: encode session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// RedisStore keeps sessions in Redis so several instances can share them.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("booking: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("nutrition.internal.booking.sessions"),
	}
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	ctx, span := r.tracer.Start(ctx, "booking.load_session")
	defer span.End()

	data, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("booking: failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("booking: failed to decode session: %w", err)
	}
	return &s, nil
}

// Save implements Store. Every save refreshes the TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ctx, span := r.tracer.Start(ctx, "booking.save_session")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: failed to marshal session: %w", err)
	}
	if err := r.redis.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("booking: failed to persist session: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.redis.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("booking: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("landing_session:%s", id)
}
