package auth

import (
	"context"
	"fmt"
	"strings"
)

// The predicates below are the only place role, permission and category gates are
// decided. Policy: Admin always passes; a permission flag passes unless it is
// explicitly false; an empty allowed-category set means unrestricted. A nil
// UserContext (no session) passes nothing.

func IsAdmin(u *UserContext) bool {
	return u != nil && u.Role == RoleAdmin
}

func CanPerform(u *UserContext, resource Resource, action Action) bool {
	if u == nil {
		return false
	}
	if IsAdmin(u) {
		return true
	}
	flag := u.Permissions.resource(resource).flag(action)
	return flag == nil || *flag
}

func CanUseFeature(u *UserContext, feature Feature) bool {
	if u == nil {
		return false
	}
	if IsAdmin(u) {
		return true
	}
	var features *FeaturePermissions
	if u.Permissions != nil {
		features = u.Permissions.CRMFeatures
	}
	flag := features.flag(feature)
	return flag == nil || *flag
}

func HasCategoryAccess(u *UserContext, category string) bool {
	if u == nil {
		return false
	}
	if IsAdmin(u) || len(u.AllowedCategories) == 0 {
		return true
	}
	for _, allowed := range u.AllowedCategories {
		if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

// HasAnyCategoryAccess reports whether at least one of categories is visible to u.
func HasAnyCategoryAccess(u *UserContext, categories []string) bool {
	if u == nil {
		return false
	}
	if IsAdmin(u) || len(u.AllowedCategories) == 0 {
		return true
	}
	for _, c := range categories {
		if HasCategoryAccess(u, c) {
			return true
		}
	}
	return false
}

// AllowedCategoriesLabel renders the allowed set for denial messages.
func AllowedCategoriesLabel(u *UserContext) string {
	if u == nil || len(u.AllowedCategories) == 0 {
		return "none"
	}
	return strings.Join(u.AllowedCategories, ", ")
}

func RoleLabel(u *UserContext) string {
	if u == nil || u.Role == "" {
		return "unknown"
	}
	return string(u.Role)
}

// DenialReason builds the human-readable reason for a failed resource check.
func DenialReason(u *UserContext, resource Resource, action Action) string {
	return fmt.Sprintf("your role (%s) cannot %s %s", RoleLabel(u), action, resourceNoun(resource))
}

func FeatureDenialReason(u *UserContext, feature Feature) string {
	return fmt.Sprintf("your role (%s) does not have the %s permission", RoleLabel(u), feature)
}

func CategoryDenialReason(u *UserContext, category string) string {
	return fmt.Sprintf("you don't have access to %s contacts; you only have access to: %s", category, AllowedCategoriesLabel(u))
}

func resourceNoun(resource Resource) string {
	switch resource {
	case ResourceContact:
		return "contacts"
	default:
		return string(resource)
	}
}

// PermissionChecker is the context-aware facade used by HTTP middleware.
type PermissionChecker interface {
	IsAdminCtx(ctx context.Context, u *UserContext) (bool, error)
	CanPerformCtx(ctx context.Context, u *UserContext, resource Resource, action Action) (bool, error)
	CanUseFeatureCtx(ctx context.Context, u *UserContext, feature Feature) (bool, error)
	HasCategoryAccessCtx(ctx context.Context, u *UserContext, category string) (bool, error)
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) IsAdminCtx(ctx context.Context, u *UserContext) (bool, error) {
	return IsAdmin(u), nil
}

func (c *DefaultPermissionChecker) CanPerformCtx(ctx context.Context, u *UserContext, resource Resource, action Action) (bool, error) {
	return CanPerform(u, resource, action), nil
}

func (c *DefaultPermissionChecker) CanUseFeatureCtx(ctx context.Context, u *UserContext, feature Feature) (bool, error) {
	return CanUseFeature(u, feature), nil
}

func (c *DefaultPermissionChecker) HasCategoryAccessCtx(ctx context.Context, u *UserContext, category string) (bool, error) {
	return HasCategoryAccess(u, category), nil
}
