package contact

import "time"

// Point mirrors one {value, is_primary} entry of a stored email or phone list.
type Point struct {
	Value     string `json:"value"`
	IsPrimary bool   `json:"is_primary"`
}

type Contact struct {
	ID              int64      `gorm:"primaryKey"`
	FirstName       string     `gorm:"column:first_name;not null"`
	LastName        string     `gorm:"column:last_name"`
	Emails          []Point    `gorm:"column:emails;serializer:json"`
	Phones          []Point    `gorm:"column:phones;serializer:json"`
	Company         string     `gorm:"column:company"`
	Categories      []string   `gorm:"column:categories;serializer:json"`
	Tags            []string   `gorm:"column:tags;serializer:json"`
	Status          string     `gorm:"column:status"`
	LeadScore       *float64   `gorm:"column:lead_score"`
	LastInteraction *time.Time `gorm:"column:last_interaction"`
	Birthday        *time.Time `gorm:"column:birthday"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}
