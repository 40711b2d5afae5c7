package auth

import (
	"context"
	"strings"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleHR    Role = "HR"
	RoleUser  Role = "User"
)

// Roles is the closed role vocabulary.
var Roles = []Role{RoleAdmin, RoleHR, RoleUser}

// ParseRole matches a role name case-insensitively.
func ParseRole(name string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return "", false
}

type Resource string

const (
	ResourceContact Resource = "contact"
	ResourceNotes   Resource = "notes"
	ResourceTasks   Resource = "tasks"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Feature string

const (
	FeatureViewBirthdays  Feature = "view_birthdays"
	FeatureViewStatistics Feature = "view_statistics"
	FeatureExportContacts Feature = "export_contacts"
	FeatureImportContacts Feature = "import_contacts"
)

// CRUDPermissions holds per-resource flags. A nil flag means "not specified".
type CRUDPermissions struct {
	Create *bool `json:"create,omitempty"`
	Read   *bool `json:"read,omitempty"`
	Update *bool `json:"update,omitempty"`
	Delete *bool `json:"delete,omitempty"`
}

func (p *CRUDPermissions) flag(action Action) *bool {
	if p == nil {
		return nil
	}
	switch action {
	case ActionCreate:
		return p.Create
	case ActionRead:
		return p.Read
	case ActionUpdate:
		return p.Update
	case ActionDelete:
		return p.Delete
	}
	return nil
}

type FeaturePermissions struct {
	ViewBirthdays  *bool `json:"view_birthdays,omitempty"`
	ViewStatistics *bool `json:"view_statistics,omitempty"`
	ExportContacts *bool `json:"export_contacts,omitempty"`
	ImportContacts *bool `json:"import_contacts,omitempty"`
}

func (p *FeaturePermissions) flag(feature Feature) *bool {
	if p == nil {
		return nil
	}
	switch feature {
	case FeatureViewBirthdays:
		return p.ViewBirthdays
	case FeatureViewStatistics:
		return p.ViewStatistics
	case FeatureExportContacts:
		return p.ExportContacts
	case FeatureImportContacts:
		return p.ImportContacts
	}
	return nil
}

type Permissions struct {
	Contact     *CRUDPermissions    `json:"contact,omitempty"`
	Notes       *CRUDPermissions    `json:"notes,omitempty"`
	Tasks       *CRUDPermissions    `json:"tasks,omitempty"`
	CRMFeatures *FeaturePermissions `json:"crm_features,omitempty"`
}

func (p *Permissions) resource(resource Resource) *CRUDPermissions {
	if p == nil {
		return nil
	}
	switch resource {
	case ResourceContact:
		return p.Contact
	case ResourceNotes:
		return p.Notes
	case ResourceTasks:
		return p.Tasks
	}
	return nil
}

// UserContext is the identity and authorization snapshot of the signed-in user.
// It is replaced wholesale on every refresh and never mutated in place.
type UserContext struct {
	ID                int64        `json:"id"`
	Username          string       `json:"username"`
	Email             string       `json:"email"`
	Role              Role         `json:"role"`
	AllowedCategories []string     `json:"allowed_categories,omitempty"`
	Permissions       *Permissions `json:"permissions,omitempty"`
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (u *UserContext) Clone() *UserContext {
	if u == nil {
		return nil
	}
	c := *u
	c.AllowedCategories = append([]string(nil), u.AllowedCategories...)
	if u.Permissions != nil {
		p := Permissions{
			Contact: cloneCRUD(u.Permissions.Contact),
			Notes:   cloneCRUD(u.Permissions.Notes),
			Tasks:   cloneCRUD(u.Permissions.Tasks),
		}
		if f := u.Permissions.CRMFeatures; f != nil {
			p.CRMFeatures = &FeaturePermissions{
				ViewBirthdays:  cloneBool(f.ViewBirthdays),
				ViewStatistics: cloneBool(f.ViewStatistics),
				ExportContacts: cloneBool(f.ExportContacts),
				ImportContacts: cloneBool(f.ImportContacts),
			}
		}
		c.Permissions = &p
	}
	return &c
}

func cloneCRUD(p *CRUDPermissions) *CRUDPermissions {
	if p == nil {
		return nil
	}
	return &CRUDPermissions{
		Create: cloneBool(p.Create),
		Read:   cloneBool(p.Read),
		Update: cloneBool(p.Update),
		Delete: cloneBool(p.Delete),
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Bool is a helper for building permission literals.
func Bool(v bool) *bool {
	return &v
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*UserContext, bool) {
	u, ok := ctx.Value(ContextUserKey).(*UserContext)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}
