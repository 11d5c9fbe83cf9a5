package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a one-time token is unknown, used or expired.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps one-time tokens (e-mail confirmation, password reset).
// Take removes the token so it can only be used once.
type TokenStore interface {
	Put(ctx context.Context, kind, token, userID string, ttl time.Duration) error
	Take(ctx context.Context, kind, token string) (string, error)
}

type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func tokenKey(kind, token string) string { return "auth:" + kind + ":" + token }

func (s *RedisTokenStore) Put(ctx context.Context, kind, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, tokenKey(kind, token), userID, ttl).Err()
}

func (s *RedisTokenStore) Take(ctx context.Context, kind, token string) (string, error) {
	v, err := s.rdb.GetDel(ctx, tokenKey(kind, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	return v, err
}

// MemoryTokenStore is used when no Redis is configured and in tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	items map[string]memToken
	now   func() time.Time
}

type memToken struct {
	userID  string
	expires time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{items: map[string]memToken{}, now: time.Now}
}

func (s *MemoryTokenStore) Put(_ context.Context, kind, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tokenKey(kind, token)] = memToken{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Take(_ context.Context, kind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := tokenKey(kind, token)
	t, ok := s.items[k]
	if !ok {
		return "", ErrTokenNotFound
	}
	delete(s.items, k)
	if s.now().After(t.expires) {
		return "", ErrTokenNotFound
	}
	return t.userID, nil
}
