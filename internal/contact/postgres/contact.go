package postgres

import (
	"context"
	"strconv"

	"github.com/frahmantamala/crm-assistant/internal/contact"
	contactDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/contact"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) ListContacts(ctx context.Context) ([]contact.Summary, error) {
	var rows []*contactDatamodel.Contact
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]contact.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToSummary(row))
	}
	return out, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *contactDatamodel.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&contactDatamodel.Contact{}).Count(&n).Error
	return n, err
}

// ToSummary runs a stored row through the same normalisation as backend payloads.
func ToSummary(c *contactDatamodel.Contact) contact.Summary {
	raw := contact.Raw{
		ID:         contact.FlexibleID(strconv.FormatInt(c.ID, 10)),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Emails:     toPoints(c.Emails),
		Phones:     toPoints(c.Phones),
		Company:    c.Company,
		Categories: c.Categories,
		Tags:       c.Tags,
		Status:     c.Status,
		LeadScore:  c.LeadScore,
	}
	if c.LastInteraction != nil {
		raw.LastInteraction = contact.FlexibleTime{Time: *c.LastInteraction, Valid: true}
	}
	if c.Birthday != nil {
		raw.Birthday = contact.FlexibleTime{Time: *c.Birthday, Valid: true}
	}
	return contact.Normalize(raw)
}

func toPoints(in []contactDatamodel.Point) contact.Points {
	if len(in) == 0 {
		return nil
	}
	out := make(contact.Points, len(in))
	for i, p := range in {
		out[i] = contact.Point{Value: p.Value, IsPrimary: p.IsPrimary}
	}
	return out
}
