package category

import (
	"strings"
	"time"

	categoryDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/category"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultNames is the system category list used when the store has none.
var DefaultNames = []string{
	"Client",
	"Prospect",
	"Lead",
	"Partner",
	"Vendor",
	"Supplier",
	"Marketing",
	"Sales",
	"Investor",
	"Personal",
	"Other",
}

func (c *Category) IsActiveCategory() bool {
	return c.IsActive
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		Description: c.Description,
	}
}

func NewCategory(name, description string) *Category {
	now := time.Now()
	return &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.ContactCategory {
	return &categoryDatamodel.ContactCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.ContactCategory) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Vocabulary is an immutable, case-insensitive set of recognised category names.
// Lookups never touch storage, so the interpreters can call it synchronously.
type Vocabulary struct {
	names []string
	index map[string]string
}

func NewVocabulary(names ...string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" {
			continue
		}
		if _, dup := v.index[key]; dup {
			continue
		}
		v.index[key] = n
		v.names = append(v.names, n)
	}
	return v
}

func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(DefaultNames...)
}

// Canonical returns the stored spelling of name.
func (v *Vocabulary) Canonical(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	c, ok := v.index[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.Canonical(name)
	return ok
}

func (v *Vocabulary) Names() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.names...)
}
