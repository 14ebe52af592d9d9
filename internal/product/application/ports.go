package application

import (
	"context"

	"github.com/storefront/backoffice/internal/product/domain"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, p domain.Product) (int64, error)
	Update(ctx context.Context, id int64, u domain.Update) error
	Delete(ctx context.Context, id int64) (domain.Product, error)
}
