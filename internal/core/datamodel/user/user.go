package user

import "time"

// User is the persisted account together with its CRM authorization snapshot.
// Permissions is stored as the backend's JSON document.
type User struct {
	ID                int64     `gorm:"primaryKey"`
	Username          string    `gorm:"column:username;uniqueIndex;not null"`
	Email             string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash      string    `gorm:"column:password_hash;not null"`
	Role              string    `gorm:"column:role;not null;default:User"`
	AllowedCategories []string  `gorm:"column:allowed_categories;serializer:json"`
	Permissions       string    `gorm:"column:permissions;type:text"`
	IsActive          bool      `gorm:"column:is_active;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
