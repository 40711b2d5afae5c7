package activity

import (
	"context"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/dashboard"
	"github.com/frahmantamala/crm-assistant/internal/user"
)

const recentOnDashboard = 10

type UserLister interface {
	ListUsers(ctx context.Context) ([]user.Summary, error)
}

// Dashboard serves dashboard statistics from the audit log and the user store
// when the assistant owns its data instead of reading a remote CRM.
type Dashboard struct {
	log   *Log
	users UserLister
	now   func() time.Time
}

func NewDashboard(log *Log, users UserLister) *Dashboard {
	return &Dashboard{log: log, users: users, now: time.Now}
}

func (d *Dashboard) GetDashboard(ctx context.Context) (dashboard.Stats, error) {
	stats := dashboard.Stats{
		"weekActivities": d.log.CountSince(d.now().AddDate(0, 0, -7)),
	}

	if d.users != nil {
		users, err := d.users.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		stats["totalUsers"] = len(users)
	}

	recent := d.log.Recent(recentOnDashboard)
	list := make([]any, 0, len(recent))
	for _, e := range recent {
		list = append(list, map[string]any{
			"id":          e.ID,
			"type":        string(e.Kind),
			"description": e.Description,
			"userId":      e.UserID,
			"timestamp":   e.At.Format(time.RFC3339),
		})
	}
	stats["recentActivities"] = list
	return stats, nil
}
