package application

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/backoffice/internal/customer/domain"
)

type Service struct {
	log          *slog.Logger
	customers    CustomerRepository
	accounts     AccountRepository
	deletePolicy domain.DeletePolicy
}

func NewService(log *slog.Logger, customers CustomerRepository, accounts AccountRepository, policy domain.DeletePolicy) *Service {
	return &Service{log: log, customers: customers, accounts: accounts, deletePolicy: policy}
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.List(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, c domain.Customer) (int64, error) {
	id, err := s.customers.Create(ctx, c)
	if err != nil {
		return 0, err
	}
	s.log.Info("customer created", "customer_id", id)
	return id, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, u domain.CustomerUpdate) error {
	return s.customers.UpdateByID(ctx, id, u)
}

// UpdateCustomerByName updates the lowest-id customer with that name. Names
// are not unique; the first match wins, which callers of this route accept.
func (s *Service) UpdateCustomerByName(ctx context.Context, name string, u domain.CustomerUpdate) error {
	return s.customers.UpdateByName(ctx, name, u)
}

// DeleteCustomer applies the configured policy: restrict refuses while the
// customer still owns an account or orders, cascade removes them too.
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, id, s.deletePolicy == domain.DeleteCascade); err != nil {
		return err
	}
	s.log.Info("customer deleted", "customer_id", id, "policy", string(s.deletePolicy))
	return nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// CreateAccount stores a bcrypt hash, never the raw password.
func (s *Service) CreateAccount(ctx context.Context, a domain.Account) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	a.Password = string(hash)
	id, err := s.accounts.Create(ctx, a)
	if err != nil {
		return 0, err
	}
	s.log.Info("customer account created", "account_id", id, "customer_id", a.CustomerID)
	return id, nil
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, u domain.AccountUpdate) error {
	if u.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hashed := string(hash)
		u.Password = &hashed
	}
	return s.accounts.Update(ctx, id, u)
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.accounts.Delete(ctx, id)
}
