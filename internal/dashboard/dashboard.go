package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Stats is the dashboard payload as delivered by the backend. Only a few known
// fields are read; everything else passes through untouched.
type Stats map[string]any

// Source supplies the dashboard snapshot.
type Source interface {
	GetDashboard(ctx context.Context) (Stats, error)
}

// Activity is one entry of recentActivities.
type Activity map[string]any

func Decode(payload []byte) (Stats, error) {
	var s Stats
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode dashboard: %w", err)
	}
	if data, ok := s["data"].(map[string]any); ok && len(s) == 1 {
		return Stats(data), nil
	}
	return s, nil
}

func (s Stats) TotalUsers() (int, bool) {
	return s.number("totalUsers")
}

func (s Stats) WeekActivities() (int, bool) {
	return s.number("weekActivities")
}

func (s Stats) RecentActivities() []Activity {
	list, ok := s["recentActivities"].([]any)
	if !ok {
		return nil
	}
	out := make([]Activity, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Activity(m))
		}
	}
	return out
}

func (s Stats) number(key string) (int, bool) {
	switch v := s[key].(type) {
	case float64:
		return int(math.Round(v)), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case []any:
		return len(v), true
	default:
		return 0, false
	}
}

// Description picks the first human-readable field of an activity.
func (a Activity) Description() string {
	for _, key := range []string{"description", "message", "action", "type"} {
		if v, ok := a[key].(string); ok && v != "" {
			return v
		}
	}
	return "activity"
}
