package category

import (
	"context"
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll() ([]*categoryDatamodel.ContactCategory, error)
	Ensure(category *categoryDatamodel.ContactCategory) (created bool, err error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllCategories() ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	var responses []CategoryResponse
	for _, dataCategory := range dataCategories {
		domainCategory := FromDataModel(dataCategory)
		if domainCategory.IsActiveCategory() {
			responses = append(responses, domainCategory.ToResponse())
		}
	}

	s.logger.Info("retrieved categories", "count", len(responses))
	return responses, nil
}

// EnsureDefaults stores every system category that is missing and reports how
// many were created. Existing rows are left untouched.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, name := range DefaultNames {
		ok, err := s.repo.Ensure(ToDataModel(NewCategory(name, name+" contacts")))
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to store category", "name", name, "error", err)
			return created, err
		}
		if ok {
			created++
		}
	}
	s.logger.InfoContext(ctx, "system categories ensured", "created", created, "total", len(DefaultNames))
	return created, nil
}

// Vocabulary snapshots the active categories. An empty store yields the
// default system list.
func (s *Service) Vocabulary(ctx context.Context) (*Vocabulary, error) {
	categories, err := s.GetAllCategories()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		s.logger.WarnContext(ctx, "no categories stored, using defaults", "count", len(DefaultNames))
		return DefaultVocabulary(), nil
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return NewVocabulary(names...), nil
}
