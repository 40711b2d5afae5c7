package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/contact"
	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/responder"
	"github.com/frahmantamala/crm-assistant/internal/user"
	"golang.org/x/sync/errgroup"
)

type UserSource interface {
	ListUsers(ctx context.Context) ([]user.Summary, error)
}

// Refresher pulls the data snapshot from the configured sources into a store.
// It runs only when the host asks for it.
type Refresher struct {
	contacts  contact.Source
	users     UserSource
	dashboard dashboard.Source
	timeout   time.Duration
	logger    *slog.Logger
}

func NewRefresher(contacts contact.Source, users UserSource, dash dashboard.Source, timeout time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		contacts:  contacts,
		users:     users,
		dashboard: dash,
		timeout:   timeout,
		logger:    logger,
	}
}

type RefreshSummary struct {
	Contacts    int       `json:"contacts"`
	Users       int       `json:"users"`
	Dashboard   bool      `json:"dashboard"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Refresh loads every source concurrently and swaps the store's snapshot only
// when all of them succeed. Users are loaded for admins only.
func (r *Refresher) Refresh(ctx context.Context, s *Store) (RefreshSummary, error) {
	u := s.User()
	ctx, cancel := internal.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		contacts []contact.Summary
		users    []user.Summary
		stats    dashboard.Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := r.contacts.ListContacts(gctx)
		if err != nil {
			return fmt.Errorf("load contacts: %w", err)
		}
		contacts = list
		return nil
	})
	if r.users != nil && auth.IsAdmin(u) {
		g.Go(func() error {
			list, err := r.users.ListUsers(gctx)
			if err != nil {
				return fmt.Errorf("load users: %w", err)
			}
			if list == nil {
				list = []user.Summary{}
			}
			users = list
			return nil
		})
	}
	if r.dashboard != nil && auth.CanUseFeature(u, auth.FeatureViewStatistics) {
		g.Go(func() error {
			d, err := r.dashboard.GetDashboard(gctx)
			if err != nil {
				return fmt.Errorf("load dashboard: %w", err)
			}
			stats = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Error("session refresh failed", "session_id", s.ID(), "error", err)
		if _, ok := internal.IsAppError(err); ok {
			return RefreshSummary{}, err
		}
		return RefreshSummary{}, internal.NewExternalError("failed to refresh session data", internal.ErrCodeBackendUnavailable, err)
	}

	now := time.Now()
	s.ReplaceSnapshot(responder.Snapshot{Contacts: contacts, Users: users, Dashboard: stats}, now)

	r.logger.Info("session refreshed",
		"session_id", s.ID(),
		"contacts", len(contacts),
		"users", len(users))
	return RefreshSummary{Contacts: len(contacts), Users: len(users), Dashboard: stats != nil, RefreshedAt: now}, nil
}
