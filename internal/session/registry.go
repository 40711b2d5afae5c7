package session

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxSessions = 1024

// Registry owns the live session stores, keyed by session id. The least
// recently used store is evicted once the limit is reached.
type Registry struct {
	cache        *lru.Cache[string, *Store]
	systemPrompt string
	logger       *slog.Logger
}

func NewRegistry(maxSessions int, systemPrompt string, logger *slog.Logger) (*Registry, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	r := &Registry{systemPrompt: systemPrompt, logger: logger}
	cache, err := lru.NewWithEvict[string, *Store](maxSessions, func(id string, s *Store) {
		s.Voice().Stop()
		logger.Debug("session evicted", "session_id", id)
	})
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) Get(id string) (*Store, error) {
	if s, ok := r.cache.Get(id); ok {
		return s, nil
	}
	return nil, internal.ErrSessionNotFound
}

// Acquire returns the store for the session carried by ctx, creating it on
// first use, and installs u as its current user.
func (r *Registry) Acquire(ctx context.Context, u *auth.UserContext) (*Store, error) {
	id := internal.SessionIDFromContext(ctx)
	if id == "" {
		return nil, internal.ErrSessionNotFound
	}
	s, ok := r.cache.Get(id)
	if !ok {
		s = NewStore(id, r.systemPrompt)
		if existing, found, _ := r.cache.PeekOrAdd(id, s); found {
			s = existing
		} else {
			r.logger.Debug("session opened", "session_id", id, "user_id", userID(u))
		}
	}
	s.SetUserContext(u)
	return s, nil
}

func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

func userID(u *auth.UserContext) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
