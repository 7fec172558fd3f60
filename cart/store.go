package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an untouched session cart is kept
const DefaultTTL = 24 * time.Hour

// Store keeps one cart per session. Get on a session that has none
// returns an empty cart, which starts the session.
type Store interface {
	Get(ctx context.Context, session string) (State, error)
	Put(ctx context.Context, session string, s State) error
	Delete(ctx context.Context, session string) error
}

// Update loads a session's cart, applies fn and saves the result
func Update(ctx context.Context, st Store, session string, fn func(State) State) (State, error) {
	current, err := st.Get(ctx, session)
	if err != nil {
		return State{}, err
	}
	next := fn(current)
	if err := st.Put(ctx, session, next); err != nil {
		return State{}, err
	}
	return next, nil
}

// MemoryStore keeps carts in process memory
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]State)}
}

func (m *MemoryStore) Get(_ context.Context, session string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.carts[session]
	if !ok {
		return Empty(), nil
	}
	s.Items = clone(s.Items)
	return s, nil
}

func (m *MemoryStore) Put(_ context.Context, session string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Items = clone(s.Items)
	m.carts[session] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, session)
	return nil
}

// RedisStore keeps carts in Redis as JSON with a sliding expiry
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore stores carts under "cart:<session>"
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: "cart:"}
}

// NewRedisStoreFromURL connects to the Redis server at url and checks it answers
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedisStore(client, DefaultTTL), nil
}

func (r *RedisStore) Get(ctx context.Context, session string) (State, error) {
	raw, err := r.client.Get(ctx, r.prefix+session).Bytes()
	if errors.Is(err, redis.Nil) {
		return Empty(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load cart: %w", err)
	}

	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode cart: %w", err)
	}
	if s.Items == nil {
		s.Items = []Item{}
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, session string, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+session, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, r.prefix+session).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}
