package user

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/frahmantamala/crm-assistant/internal/auth"
)

// Summary is the read-only view of an account used by admin listings and the
// assistant's user snapshot.
type Summary struct {
	ID                int64     `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Email             string    `json:"email" db:"email"`
	Role              auth.Role `json:"role" db:"role"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	AllowedCategories []string  `json:"allowedCategories,omitempty" db:"-"`
}

// RoleCount is one row of a role breakdown.
type RoleCount struct {
	Role  auth.Role `json:"role"`
	Count int       `json:"count"`
}

var ErrNotFound = errors.New("user not found")

// CountByRole tallies users per role in the order of auth.Roles. Unknown roles
// are reported after the known ones.
func CountByRole(users []Summary) []RoleCount {
	counts := make(map[auth.Role]int)
	var extra []auth.Role
	for _, u := range users {
		role, ok := auth.ParseRole(string(u.Role))
		if !ok {
			role = u.Role
			if _, seen := counts[role]; !seen {
				extra = append(extra, role)
			}
		}
		counts[role]++
	}

	var out []RoleCount
	for _, r := range append(append([]auth.Role(nil), auth.Roles...), extra...) {
		if counts[r] > 0 {
			out = append(out, RoleCount{Role: r, Count: counts[r]})
		}
	}
	return out
}

func (s Summary) DisplayLine() string {
	var b strings.Builder
	b.WriteString(s.Username)
	if s.Email != "" {
		b.WriteString(" <" + s.Email + ">")
	}
	b.WriteString(" - " + string(s.Role))
	if !s.IsActive {
		b.WriteString(" (inactive)")
	}
	return b.String()
}

// NormalizeAll decodes a backend user list, accepting a bare array or a
// {users}/{data} wrapper.
func NormalizeAll(payload []byte) ([]Summary, error) {
	type raw struct {
		ID                json.Number `json:"id"`
		Username          string      `json:"username"`
		Name              string      `json:"name"`
		Email             string      `json:"email"`
		Role              string      `json:"role"`
		IsActive          *bool       `json:"is_active"`
		AllowedCategories []string    `json:"allowed_categories"`
	}

	var raws []raw
	if err := json.Unmarshal(payload, &raws); err != nil {
		var wrapped struct {
			Users []raw `json:"users"`
			Data  []raw `json:"data"`
		}
		if werr := json.Unmarshal(payload, &wrapped); werr != nil {
			return nil, err
		}
		raws = wrapped.Users
		if len(raws) == 0 {
			raws = wrapped.Data
		}
	}

	out := make([]Summary, 0, len(raws))
	for _, r := range raws {
		id, _ := r.ID.Int64()
		name := r.Username
		if name == "" {
			name = r.Name
		}
		role, ok := auth.ParseRole(r.Role)
		if !ok {
			role = auth.RoleUser
		}
		out = append(out, Summary{
			ID:                id,
			Username:          name,
			Email:             r.Email,
			Role:              role,
			IsActive:          r.IsActive == nil || *r.IsActive,
			AllowedCategories: r.AllowedCategories,
		})
	}
	return out, nil
}
