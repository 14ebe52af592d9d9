package application

import (
	"context"
	"log/slog"

	"github.com/storefront/backoffice/internal/product/domain"
)

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, p domain.Product) (int64, error) {
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	s.log.Info("product created", "product_id", id, "name", p.Name)
	return id, nil
}

func (s *Service) Update(ctx context.Context, id int64, u domain.Update) error {
	return s.repo.Update(ctx, id, u)
}

// Delete returns the removed product so callers can echo its details.
func (s *Service) Delete(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product deleted", "product_id", id, "name", p.Name)
	return p, nil
}
