package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront/backoffice/internal/order/domain"
)

const dateLayout = "2006-01-02"

// Repository runs the order engine. Every mutating method executes its whole
// algorithm inside a single transaction: product rows are locked with
// SELECT ... FOR UPDATE (ids ascending, so concurrent orders cannot deadlock),
// stock is checked and adjusted under that lock, and the outbox row is written
// before commit. Any failure rolls everything back.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, o domain.Order, traceparent string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, line := range sortedByProduct(o.Lines) {
		stock, name, err := lockProduct(ctx, tx, line.ProductID)
		if err != nil {
			return 0, err
		}
		if stock < line.Quantity {
			return 0, &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      name,
				Available: stock,
				Requested: line.Quantity,
			}
		}
		if err := adjustStock(ctx, tx, line.ProductID, -line.Quantity); err != nil {
			return 0, err
		}
	}

	var orderID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (customer_id, order_date) VALUES ($1,$2) RETURNING id`,
		o.CustomerID, o.Date,
	).Scan(&orderID)
	if err != nil {
		return 0, mapFKViolation(err)
	}

	if err := insertItems(ctx, tx, orderID, o.Lines); err != nil {
		return 0, err
	}

	event := domain.OrderCreated{
		OrderID:    orderID,
		CustomerID: o.CustomerID,
		Date:       o.Date.Format(dateLayout),
		Lines:      domain.EventLines(o.Lines),
	}
	if err := insertOutbox(ctx, tx, orderID, "OrderCreated", event, traceparent); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *Repository) Update(ctx context.Context, o domain.Order, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var (
		currentCustomer int64
		currentDate     time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT customer_id, order_date FROM orders WHERE id=$1 FOR UPDATE`, o.ID,
	).Scan(&currentCustomer, &currentDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if o.CustomerID == 0 {
		o.CustomerID = currentCustomer
	}
	if o.Date.IsZero() {
		o.Date = currentDate
	}

	original, err := itemQuantities(ctx, tx, o.ID)
	if err != nil {
		return err
	}

	// Products dropped from the new set keep their decremented stock; only
	// products still present are reconciled by delta.
	for _, line := range sortedByProduct(o.Lines) {
		stock, name, err := lockProduct(ctx, tx, line.ProductID)
		if err != nil {
			return err
		}
		delta := line.Quantity - original[line.ProductID]
		if stock < delta {
			return &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      name,
				Available: stock,
				Requested: line.Quantity,
			}
		}
		if delta != 0 {
			if err := adjustStock(ctx, tx, line.ProductID, -delta); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, o.ID, o.Lines); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET customer_id=$2, order_date=$3 WHERE id=$1`,
		o.ID, o.CustomerID, o.Date,
	); err != nil {
		return mapFKViolation(err)
	}

	event := domain.OrderUpdated{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Date:       o.Date.Format(dateLayout),
		Lines:      domain.EventLines(o.Lines),
	}
	if err := insertOutbox(ctx, tx, o.ID, "OrderUpdated", event, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Cancel(ctx context.Context, id int64, restock bool, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists int64
	err = tx.QueryRow(ctx, `SELECT id FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if restock {
		quantities, err := itemQuantities(ctx, tx, id)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(quantities))
		for pid := range quantities {
			ids = append(ids, pid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, pid := range ids {
			if _, _, err := lockProduct(ctx, tx, pid); err != nil {
				return err
			}
			if err := adjustStock(ctx, tx, pid, quantities[pid]); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id); err != nil {
		return err
	}

	event := domain.OrderCancelled{OrderID: id, Restocked: restock}
	if err := insertOutbox(ctx, tx, id, "OrderCancelled", event, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.OrderView, error) {
	return r.listViews(ctx, `
		SELECT o.id, o.customer_id, o.order_date, i.product_id, p.name, i.quantity
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN products p ON p.id = i.product_id
		ORDER BY o.id ASC, i.product_id ASC`)
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.OrderView, error) {
	return r.listViews(ctx, `
		SELECT o.id, o.customer_id, o.order_date, i.product_id, p.name, i.quantity
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN products p ON p.id = i.product_id
		WHERE o.customer_id = $1
		ORDER BY o.id ASC, i.product_id ASC`, customerID)
}

func (r *Repository) listViews(ctx context.Context, query string, args ...any) ([]domain.OrderView, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.OrderView{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			id, customerID int64
			date           time.Time
			productID      *int64
			name           *string
			quantity       *int
		)
		if err := rows.Scan(&id, &customerID, &date, &productID, &name, &quantity); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			i = len(views)
			index[id] = i
			views = append(views, domain.OrderView{ID: id, CustomerID: customerID, Date: date})
		}
		if productID != nil {
			views[i].Products = append(views[i].Products, domain.ProductLine{
				ProductID: *productID,
				Name:      *name,
				Quantity:  *quantity,
			})
		}
	}
	return views, rows.Err()
}

// lockProduct takes a row lock on the product and returns its stock and name.
func lockProduct(ctx context.Context, tx pgx.Tx, productID int64) (int, string, error) {
	var (
		stock int
		name  string
	)
	err := tx.QueryRow(ctx,
		`SELECT stock_level, name FROM products WHERE id=$1 FOR UPDATE`, productID,
	).Scan(&stock, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", &domain.ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return 0, "", err
	}
	return stock, name, nil
}

func adjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	_, err := tx.Exec(ctx,
		`UPDATE products SET stock_level = stock_level + $2 WHERE id=$1`, productID, delta)
	return err
}

func itemQuantities(ctx context.Context, tx pgx.Tx, orderID int64) (map[int64]int, error) {
	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quantities := map[int64]int{}
	for rows.Next() {
		var (
			pid int64
			qty int
		)
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, err
		}
		quantities[pid] = qty
	}
	return quantities, rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, lines []domain.Line) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1,$2,$3)`,
			orderID, line.ProductID, line.Quantity)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, orderID int64, eventType string, event any, traceparent string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		 VALUES ('order', $1, $2, $3, $4, 'pending')`,
		strconv.FormatInt(orderID, 10), eventType, payload, traceparent)
	return err
}

func sortedByProduct(lines []domain.Line) []domain.Line {
	out := make([]domain.Line, len(lines))
	copy(out, lines)
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// mapFKViolation turns a customer FK failure into the domain's not-found.
func mapFKViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrCustomerNotFound
	}
	return err
}
