package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/frahmantamala/crm-assistant/internal/transport"
)

// RBACAuthorization guards HTTP routes with the same predicates the assistant
// uses, answering denials with a PERMISSION_DENIED error naming the reason.
type RBACAuthorization struct {
	checker PermissionChecker
	logger  *slog.Logger
	out     *transport.BaseHandler
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		checker: checker,
		logger:  logger,
		out:     transport.NewBaseHandler(logger),
	}
}

type guardCheck func(r *http.Request, u *UserContext) (bool, error)

func (ra *RBACAuthorization) guard(name string, check guardCheck, reason func(u *UserContext) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.WarnContext(r.Context(), "authorization check failed: user not found in context", "check", name)
				ra.out.HandleServiceError(w, internal.ErrInvalidToken)
				return
			}

			allowed, err := check(r, user)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID, "check", name)
				ra.out.HandleServiceError(w, internal.NewInternalError("authorization check failed", err))
				return
			}

			if !allowed {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"role", user.Role,
					"check", name)
				ra.out.HandleServiceError(w, internal.NewPermissionDeniedError(reason(user)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.guard("admin",
		func(r *http.Request, u *UserContext) (bool, error) {
			return ra.checker.IsAdminCtx(r.Context(), u)
		},
		func(u *UserContext) string {
			return fmt.Sprintf("your role (%s) cannot access user management", RoleLabel(u))
		})
}

func (ra *RBACAuthorization) RequireFeature(feature Feature) func(http.Handler) http.Handler {
	return ra.guard(string(feature),
		func(r *http.Request, u *UserContext) (bool, error) {
			return ra.checker.CanUseFeatureCtx(r.Context(), u, feature)
		},
		func(u *UserContext) string { return FeatureDenialReason(u, feature) })
}

func (ra *RBACAuthorization) RequirePermission(resource Resource, action Action) func(http.Handler) http.Handler {
	return ra.guard(string(resource)+"."+string(action),
		func(r *http.Request, u *UserContext) (bool, error) {
			return ra.checker.CanPerformCtx(r.Context(), u, resource, action)
		},
		func(u *UserContext) string { return DenialReason(u, resource, action) })
}
