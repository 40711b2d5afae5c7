package user

import (
	"context"
	"fmt"
	"log/slog"
)

type Repository interface {
	ListUsers(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, id int64) (*Summary, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]Summary, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	s.logger.DebugContext(ctx, "listed users", "count", len(users))
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Summary, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}
