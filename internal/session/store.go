package session

import (
	"sync"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/user"
)

type Speaker string

const (
	SpeakerSystem    Speaker = "system"
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type Turn struct {
	Role    Speaker   `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store holds one user session: the authorization snapshot, the data snapshot
// the assistant reasons over and the conversation history. Setters replace
// their slice wholesale; readers get copies.
type Store struct {
	mu sync.RWMutex

	id          string
	user        *auth.UserContext
	contacts    []contact.Summary
	users       []user.Summary
	dashboard   dashboard.Stats
	refreshedAt time.Time

	system  Turn
	history []Turn

	voice *Voice
}

func NewStore(id, systemPrompt string) *Store {
	system := Turn{Role: SpeakerSystem, Content: systemPrompt, At: time.Now()}
	return &Store{
		id:      id,
		system:  system,
		history: []Turn{system},
		voice:   NewVoice(),
	}
}

func (s *Store) ID() string {
	return s.id
}

func (s *Store) Voice() *Voice {
	return s.voice
}

func (s *Store) SetUserContext(u *auth.UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u.Clone()
}

func (s *Store) User() *auth.UserContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) SetContactsContext(contacts []contact.Summary) {
	c := append([]contact.Summary(nil), contacts...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = c
}

func (s *Store) SetUsersContext(users []user.Summary) {
	var c []user.Summary
	if users != nil {
		c = append([]user.Summary{}, users...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = c
}

func (s *Store) SetDashboardContext(stats dashboard.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboard = stats
}

// ReplaceSnapshot swaps contacts, users and dashboard together under one lock,
// so Snapshot never mixes data from two refreshes.
func (s *Store) ReplaceSnapshot(snap responder.Snapshot, at time.Time) {
	contacts := append([]contact.Summary(nil), snap.Contacts...)
	var users []user.Summary
	if snap.Users != nil {
		users = append([]user.Summary{}, snap.Users...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = contacts
	s.users = users
	s.dashboard = snap.Dashboard
	s.refreshedAt = at
}

func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Snapshot returns the data the responder works on. The slices are shared
// read-only with the store; setters never mutate them in place.
func (s *Store) Snapshot() responder.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return responder.Snapshot{
		Contacts:  s.contacts,
		Users:     s.users,
		Dashboard: s.dashboard,
	}
}

func (s *Store) Append(role Speaker, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Role: role, Content: content, At: time.Now()})
}

// History returns the full conversation, system turn first.
func (s *Store) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Turn(nil), s.history...)
}

// Recent returns the system turn followed by at most n of the latest turns.
func (s *Store) Recent(n int) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rest := s.history[1:]
	if n >= 0 && len(rest) > n {
		rest = rest[len(rest)-n:]
	}
	return append([]Turn{s.system}, rest...)
}

// Clear drops everything but the system turn.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = []Turn{s.system}
}
