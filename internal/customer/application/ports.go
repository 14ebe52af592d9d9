package application

import (
	"context"

	"github.com/storefront/backoffice/internal/customer/domain"
)

type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (int64, error)
	UpdateByID(ctx context.Context, id int64, u domain.CustomerUpdate) error
	UpdateByName(ctx context.Context, name string, u domain.CustomerUpdate) error
	Delete(ctx context.Context, id int64, cascade bool) error
}

type AccountRepository interface {
	List(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, a domain.Account) (int64, error)
	Update(ctx context.Context, id int64, u domain.AccountUpdate) error
	Delete(ctx context.Context, id int64) error
}
