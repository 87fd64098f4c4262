// Package session keeps the list of signed-out session tokens.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisList struct {
	rdb *redis.Client
}

// NewRedis stores revoked token ids as keys that expire together with the token.
func NewRedis(rdb *redis.Client) *RedisList {
	return &RedisList{rdb: rdb}
}

func (s *RedisList) key(id string) string { return "revoked:" + id }

func (s *RedisList) Revoke(ctx context.Context, id string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.key(id), 1, ttl).Err()
}

func (s *RedisList) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type MemoryList struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

// NewMemory is used when no Redis is configured. Entries are dropped lazily
// once expired.
func NewMemory() *MemoryList {
	return &MemoryList{ids: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryList) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !until.After(m.now()) {
		return nil
	}
	m.ids[id] = until
	m.sweep()
	return nil
}

func (m *MemoryList) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.ids[id]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.ids, id)
		return false, nil
	}
	return true, nil
}

func (m *MemoryList) sweep() {
	now := m.now()
	for id, until := range m.ids {
		if !until.After(now) {
			delete(m.ids, id)
		}
	}
}
