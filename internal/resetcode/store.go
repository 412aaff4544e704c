// Package resetcode holds pending password changes until they are confirmed
// or expire.
package resetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgredis "github.com/Skotchmaster/storefront/pkg/redis"
)

const DefaultTTL = 10 * time.Minute

var ErrNotFound = errors.New("no pending password change")

// Entry is a pending change: the code sent to the user and the hash that
// replaces the password once the code is confirmed.
type Entry struct {
	Code         string `json:"code"`
	PasswordHash string `json:"password_hash"`
}

type Store interface {
	Put(ctx context.Context, userID uint, e Entry, ttl time.Duration) error
	Get(ctx context.Context, userID uint) (Entry, error)
	Delete(ctx context.Context, userID uint) error
}

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps entries under sf:pwreset:<userID> with a TTL.
type RedisStore struct {
	kv  kv
	key func(uint) string
}

func NewRedisStore(c *pkgredis.Client) *RedisStore {
	return &RedisStore{kv: c, key: c.PasswordResetKey}
}

func (s *RedisStore) Put(ctx context.Context, userID uint, e Entry, ttl time.Duration) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key(userID), string(data), ttl)
}

func (s *RedisStore) Get(ctx context.Context, userID uint) (Entry, error) {
	raw, err := s.kv.Get(ctx, s.key(userID))
	if errors.Is(err, pkgredis.ErrNil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, fmt.Errorf("decode reset entry: %w", err)
	}
	return e, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uint) error {
	return s.kv.Del(ctx, s.key(userID))
}

type memEntry struct {
	Entry
	expiresAt time.Time
}

// MemoryStore is the single-process fallback when redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uint]memEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[uint]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, userID uint, e Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.entries[userID] = memEntry{Entry: e, expiresAt: now.Add(ttl)}
	return nil
}

// pruneLocked drops expired entries so users who never confirm do not
// accumulate. Callers hold mu.
func (s *MemoryStore) pruneLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, userID uint) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, userID)
		return Entry{}, ErrNotFound
	}
	return e.Entry, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
