package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront/backoffice/internal/customer/domain"
)

type CustomerRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCustomerRepository(log *slog.Logger, pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{log: log, pool: pool}
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Create(ctx context.Context, c domain.Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone) VALUES ($1,$2,$3) RETURNING id`,
		c.Name, c.Email, c.Phone,
	).Scan(&id)
	return id, err
}

func (r *CustomerRepository) UpdateByID(ctx context.Context, id int64, u domain.CustomerUpdate) error {
	return r.update(ctx, `id=$1`, id, u)
}

// UpdateByName targets the first match in id order; duplicate names are a
// known ambiguity of this lookup key.
func (r *CustomerRepository) UpdateByName(ctx context.Context, name string, u domain.CustomerUpdate) error {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM customers WHERE name=$1 ORDER BY id LIMIT 1`, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCustomerNotFound
	}
	if err != nil {
		return err
	}
	return r.update(ctx, `id=$1`, id, u)
}

func (r *CustomerRepository) update(ctx context.Context, where string, key any, u domain.CustomerUpdate) error {
	if u.Empty() {
		return r.exists(ctx, where, key)
	}

	set := make([]string, 0, 3)
	args := []any{key}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Phone != nil {
		add("phone", *u.Phone)
	}

	ct, err := r.pool.Exec(ctx,
		`UPDATE customers SET `+strings.Join(set, ", ")+` WHERE `+where, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) exists(ctx context.Context, where string, key any) error {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM customers WHERE `+where, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCustomerNotFound
	}
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64, cascade bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var found int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id=$1 FOR UPDATE`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCustomerNotFound
	}
	if err != nil {
		return err
	}

	if cascade {
		if _, err := tx.Exec(ctx,
			`DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE customer_id=$1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE customer_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM customer_accounts WHERE customer_id=$1`, id); err != nil {
			return err
		}
	} else {
		var hasDependents bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM customer_accounts WHERE customer_id=$1)
			    OR EXISTS (SELECT 1 FROM orders WHERE customer_id=$1)`, id,
		).Scan(&hasDependents)
		if err != nil {
			return err
		}
		if hasDependents {
			return domain.ErrCustomerHasDependents
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type AccountRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewAccountRepository(log *slog.Logger, pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{log: log, pool: pool}
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, password, customer_id FROM customer_accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Password, &a.CustomerID); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Create(ctx context.Context, a domain.Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customer_accounts (username, password, customer_id) VALUES ($1,$2,$3) RETURNING id`,
		a.Username, a.Password, a.CustomerID,
	).Scan(&id)
	if err != nil {
		return 0, mapAccountError(err)
	}
	return id, nil
}

func (r *AccountRepository) Update(ctx context.Context, id int64, u domain.AccountUpdate) error {
	if u.Empty() {
		return r.exists(ctx, id)
	}

	set := make([]string, 0, 3)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if u.Username != nil {
		add("username", *u.Username)
	}
	if u.Password != nil {
		add("password", *u.Password)
	}
	if u.CustomerID != nil {
		add("customer_id", *u.CustomerID)
	}

	ct, err := r.pool.Exec(ctx,
		`UPDATE customer_accounts SET `+strings.Join(set, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return mapAccountError(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM customer_accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) exists(ctx context.Context, id int64) error {
	var found int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM customer_accounts WHERE id=$1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	return err
}

func mapAccountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrUsernameTaken
		case "23503":
			return domain.ErrCustomerNotFound
		}
	}
	return err
}
