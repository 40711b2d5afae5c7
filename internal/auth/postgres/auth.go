package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	userDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/user"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.Select("id", "password_hash", "is_active").Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		UserID:       u.ID,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}

func (r *Repository) GetUserContext(userID int64) (*auth.UserContext, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ? AND is_active = ?", userID, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return ToUserContext(&u)
}

// ToUserContext maps the stored row onto the authorization snapshot. An unknown
// role degrades to User; an empty permissions document leaves Permissions nil.
func ToUserContext(u *userDatamodel.User) (*auth.UserContext, error) {
	role, ok := auth.ParseRole(u.Role)
	if !ok {
		role = auth.RoleUser
	}

	ctx := &auth.UserContext{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Role:              role,
		AllowedCategories: append([]string(nil), u.AllowedCategories...),
	}

	if u.Permissions != "" {
		var perms auth.Permissions
		if err := json.Unmarshal([]byte(u.Permissions), &perms); err != nil {
			return nil, fmt.Errorf("invalid permissions document for user %d: %w", u.ID, err)
		}
		ctx.Permissions = &perms
	}
	return ctx, nil
}
