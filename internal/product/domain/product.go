package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	StockLevel int
}

// Update carries only the fields present in a request; nil means untouched.
type Update struct {
	Name       *string
	Price      *decimal.Decimal
	StockLevel *int
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Price == nil && u.StockLevel == nil
}
