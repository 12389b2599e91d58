// Package pending holds activation requests that are waiting for the user to
// confirm or cancel a quota overrun.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/model"
)

// Store keeps pending requests until they are settled or expire.
// Get and Take return ErrActivationNotFound for unknown and expired ids.
// Take removes the request in the same step, so only one caller can settle it.
type Store interface {
	Save(ctx context.Context, req *model.ActivationRequest) error
	Get(ctx context.Context, id string) (*model.ActivationRequest, error)
	Take(ctx context.Context, id string) (*model.ActivationRequest, error)
}

var ErrInvalidExpiry = errors.New("pending: request must expire after it is created")

func lifetime(req *model.ActivationRequest) (time.Duration, error) {
	ttl := req.ExpiresAt.Sub(req.CreatedAt)
	if ttl <= 0 {
		return 0, ErrInvalidExpiry
	}
	return ttl, nil
}

// RedisStore relies on key expiry; ExpiresAt must be set on saved requests.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string {
	return "activation:" + id
}

// Save keeps the request for ExpiresAt - CreatedAt.
func (s *RedisStore) Save(ctx context.Context, req *model.ActivationRequest) error {
	ttl, err := lifetime(req)
	if err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(req.ID), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.ActivationRequest, error) {
	return s.decode(id, s.client.Get(ctx, redisKey(id)))
}

// Take uses GETDEL so concurrent callers cannot both claim the request.
func (s *RedisStore) Take(ctx context.Context, id string) (*model.ActivationRequest, error) {
	return s.decode(id, s.client.GetDel(ctx, redisKey(id)))
}

func (s *RedisStore) decode(id string, cmd *redis.StringCmd) (*model.ActivationRequest, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.NewActivationNotFound(id)
		}
		return nil, err
	}

	var req model.ActivationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// MemoryStore is used when no Redis is configured. Expired entries are
// hidden from Get and reclaimed by Sweep.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]model.ActivationRequest
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]model.ActivationRequest),
		now:   time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, req *model.ActivationRequest) error {
	if _, err := lifetime(req); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[req.ID] = *req
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.ActivationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.items[id]
	if !ok || req.Expired(s.now()) {
		return nil, appErrors.NewActivationNotFound(id)
	}
	return &req, nil
}

func (s *MemoryStore) Take(_ context.Context, id string) (*model.ActivationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.items[id]
	delete(s.items, id)
	if !ok || req.Expired(s.now()) {
		return nil, appErrors.NewActivationNotFound(id)
	}
	return &req, nil
}

// Sweep drops requests that expired at or before now and returns how many
// were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, req := range s.items {
		if req.Expired(now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
