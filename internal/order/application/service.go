package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/storefront/backoffice/internal/order/domain"
)

// Service normalizes order requests and applies the restock policy before
// handing off to the transactional repository.
type Service struct {
	log             *slog.Logger
	repo            OrderRepository
	restockOnCancel bool
}

func NewService(log *slog.Logger, repo OrderRepository, restockOnCancel bool) *Service {
	return &Service{log: log, repo: repo, restockOnCancel: restockOnCancel}
}

// RestockOnCancel reports the active cancellation policy. Stock is NOT
// restored on cancel unless the flag was set at construction.
func (s *Service) RestockOnCancel() bool { return s.restockOnCancel }

// Create places a new order. Duplicate product ids in the request are merged
// by summing quantities before any stock is touched.
func (s *Service) Create(ctx context.Context, customerID int64, date time.Time, lines []domain.Line, traceparent string) (int64, error) {
	o := domain.Order{
		CustomerID: customerID,
		Date:       date,
		Lines:      domain.MergeLines(lines),
	}
	id, err := s.repo.Create(ctx, o, traceparent)
	if err != nil {
		return 0, err
	}
	s.log.Info("order created", "order_id", id, "customer_id", customerID, "lines", len(o.Lines))
	return id, nil
}

// Update replaces an order's lines, reconciling stock by the per-product
// delta. A zero customerID or zero date keeps the stored value. Duplicate
// product ids follow last-write-wins, matching the request's replacement
// semantics.
func (s *Service) Update(ctx context.Context, id, customerID int64, date time.Time, lines []domain.Line, traceparent string) error {
	o := domain.Order{
		ID:         id,
		CustomerID: customerID,
		Date:       date,
		Lines:      domain.CollapseLines(lines),
	}
	if err := s.repo.Update(ctx, o, traceparent); err != nil {
		return err
	}
	s.log.Info("order updated", "order_id", id)
	return nil
}

// Cancel removes the order and its lines.
func (s *Service) Cancel(ctx context.Context, id int64, traceparent string) error {
	if err := s.repo.Cancel(ctx, id, s.restockOnCancel, traceparent); err != nil {
		return err
	}
	s.log.Info("order cancelled", "order_id", id, "restocked", s.restockOnCancel)
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.OrderView, error) {
	return s.repo.ListAll(ctx)
}

// History returns a customer's orders ascending by id. A customer with no
// orders gets an empty slice, not an error.
func (s *Service) History(ctx context.Context, customerID int64) ([]domain.OrderView, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}
