package application

import (
	"context"

	"github.com/storefront/backoffice/internal/order/domain"
)

// OrderRepository is the transactional order engine. Each mutating call runs
// its whole algorithm, outbox write included, inside one transaction.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order, traceparent string) (int64, error)
	Update(ctx context.Context, o domain.Order, traceparent string) error
	Cancel(ctx context.Context, id int64, restock bool, traceparent string) error
	ListAll(ctx context.Context) ([]domain.OrderView, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error)
}
