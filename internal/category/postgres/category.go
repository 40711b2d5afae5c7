package postgres

import (
	"github.com/frahmantamala/crm-assistant/internal/category"
	categoryDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll() ([]*categoryDatamodel.ContactCategory, error) {
	var categories []*categoryDatamodel.ContactCategory
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// Ensure inserts cat unless a row with the same name exists. cat is filled
// from the stored row either way.
func (r *CategoryRepository) Ensure(cat *categoryDatamodel.ContactCategory) (bool, error) {
	res := r.db.Where(categoryDatamodel.ContactCategory{Name: cat.Name}).FirstOrCreate(cat)
	return res.RowsAffected > 0, res.Error
}
