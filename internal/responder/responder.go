package responder

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/core/action"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/user"
)

const (
	MaxListed  = 10
	MaxActions = 5
	MaxPreview = 5
)

// Snapshot is the locally held data a reply is computed from. Users and
// Dashboard may be nil when the host has not loaded them.
type Snapshot struct {
	Contacts  []contact.Summary
	Users     []user.Summary
	Dashboard dashboard.Stats
}

// Reply is the chat answer. It always carries a message.
type Reply struct {
	Message string          `json:"message"`
	Actions []action.Action `json:"actions"`
	Data    any             `json:"data,omitempty"`
	Intent  string          `json:"intent"`
}

type query struct {
	raw   string
	text  string
	words map[string]bool
}

var wordPattern = regexp.MustCompile(`[a-z0-9']+`)

func parse(message string) query {
	text := strings.ToLower(strings.TrimSpace(message))
	q := query{raw: strings.TrimSpace(message), text: text, words: map[string]bool{}}
	for _, w := range wordPattern.FindAllString(text, -1) {
		q.words[w] = true
	}
	return q
}

func (q query) has(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(q.text, p) {
			return true
		}
	}
	return false
}

func (q query) hasWord(words ...string) bool {
	for _, w := range words {
		if q.words[w] {
			return true
		}
	}
	return false
}

type request struct {
	q    query
	user *auth.UserContext
	snap Snapshot
	now  time.Time
}

// detector answers when it recognises the request. Detectors run in order and
// the first to answer wins.
type detector struct {
	name   string
	detect func(r *Responder, req request) (Reply, bool)
}

type Responder struct {
	categories *category.Vocabulary
	logger     *slog.Logger
	now        func() time.Time
	detectors  []detector
}

type Option func(*Responder)

// WithClock fixes the reference time used by date-based aggregates.
func WithClock(now func() time.Time) Option {
	return func(r *Responder) { r.now = now }
}

func New(categories *category.Vocabulary, logger *slog.Logger, opts ...Option) *Responder {
	if categories == nil {
		categories = category.DefaultVocabulary()
	}
	r := &Responder{
		categories: categories,
		logger:     logger,
		now:        time.Now,
		detectors:  battery(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond runs the detector battery over message. It never fails: when nothing
// matches the reply is the capability summary for u.
func (r *Responder) Respond(message string, u *auth.UserContext, snap Snapshot) Reply {
	req := request{q: parse(message), user: u, snap: snap, now: r.now()}
	for _, d := range r.detectors {
		reply, ok := d.detect(r, req)
		if !ok {
			continue
		}
		reply.Intent = d.name
		if reply.Actions == nil {
			reply.Actions = []action.Action{}
		}
		if len(reply.Actions) > MaxActions {
			reply.Actions = reply.Actions[:MaxActions]
		}
		r.logger.Debug("chat intent matched", "rule", d.name, "user_id", userID(u))
		return reply
	}
	return r.fallback(req)
}

func userID(u *auth.UserContext) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
