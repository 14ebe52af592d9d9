package domain

import "errors"

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrAccountNotFound       = errors.New("customer account not found")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrCustomerHasDependents = errors.New("customer still has an account or orders")
)

type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

type CustomerUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

func (u CustomerUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}

// Account holds login credentials for exactly one customer. Password holds a
// bcrypt hash at rest; the raw value exists only inside a request.
type Account struct {
	ID         int64
	Username   string
	Password   string
	CustomerID int64
}

type AccountUpdate struct {
	Username   *string
	Password   *string
	CustomerID *int64
}

func (u AccountUpdate) Empty() bool {
	return u.Username == nil && u.Password == nil && u.CustomerID == nil
}

// DeletePolicy decides what happens to a customer's account and orders when
// the customer is deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses the delete while dependents exist.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade removes the account, the orders and their lines too.
	DeleteCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) DeletePolicy {
	if DeletePolicy(s) == DeleteCascade {
		return DeleteCascade
	}
	return DeleteRestrict
}
