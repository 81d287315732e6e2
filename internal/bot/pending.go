// internal/bot/pending.go
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingTTL bounds how long a /register conversation may wait for an email.
const pendingTTL = 15 * time.Minute

// PendingRegistration is the state held between /register and the email reply.
type PendingRegistration struct {
	Username             string `json:"username"`
	GeneratedFullName    string `json:"generatedFullName"`
	GeneratedPhoneNumber string `json:"generatedPhoneNumber"`
}

type PendingStore interface {
	Get(telegramID int64) (*PendingRegistration, error)
	Set(telegramID int64, p PendingRegistration) error
	Delete(telegramID int64) error
}

// NewPendingStore prefers Redis so pending registrations survive restarts;
// without Redis it falls back to an in-process store.
func NewPendingStore(client *redis.Client) PendingStore {
	if client == nil {
		slog.Warn("redis unavailable, pending registrations held in memory")
		return NewMemoryPendingStore()
	}
	return &RedisPendingStore{Client: client}
}

type RedisPendingStore struct {
	Client *redis.Client
}

func pendingKey(telegramID int64) string {
	return fmt.Sprintf("pending:register:%d", telegramID)
}

func (s *RedisPendingStore) Get(telegramID int64) (*PendingRegistration, error) {
	raw, err := s.Client.Get(context.Background(), pendingKey(telegramID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p PendingRegistration
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *RedisPendingStore) Set(telegramID int64, p PendingRegistration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.Client.Set(context.Background(), pendingKey(telegramID), raw, pendingTTL).Err()
}

func (s *RedisPendingStore) Delete(telegramID int64) error {
	return s.Client.Del(context.Background(), pendingKey(telegramID)).Err()
}

type memoryEntry struct {
	pending PendingRegistration
	expires time.Time
}

type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: make(map[int64]memoryEntry)}
}

func (s *MemoryPendingStore) Get(telegramID int64) (*PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[telegramID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expires) {
		delete(s.entries, telegramID)
		return nil, nil
	}
	p := entry.pending
	return &p, nil
}

func (s *MemoryPendingStore) Set(telegramID int64, p PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[telegramID] = memoryEntry{pending: p, expires: time.Now().Add(pendingTTL)}
	return nil
}

func (s *MemoryPendingStore) Delete(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, telegramID)
	return nil
}
