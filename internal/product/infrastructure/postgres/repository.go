package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront/backoffice/internal/product/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, stock_level FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockLevel); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p domain.Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, price, stock_level) VALUES ($1,$2,$3) RETURNING id`,
		p.Name, p.Price, p.StockLevel,
	).Scan(&id)
	return id, err
}

func (r *Repository) Update(ctx context.Context, id int64, u domain.Update) error {
	if u.Empty() {
		return r.exists(ctx, id)
	}

	set := make([]string, 0, 3)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.StockLevel != nil {
		add("stock_level", *u.StockLevel)
	}

	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET `+strings.Join(set, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		`DELETE FROM products WHERE id=$1 RETURNING id, name, price, stock_level`, id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.StockLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, err
}

func (r *Repository) exists(ctx context.Context, id int64) error {
	var found int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM products WHERE id=$1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	return err
}
