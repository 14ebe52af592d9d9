package domain

import "time"

// Order is the write model: a customer, a date and the requested lines.
// Quantity is an integer per line; it is never encoded as repeated rows.
type Order struct {
	ID         int64
	CustomerID int64
	Date       time.Time
	Lines      []Line
}

type Line struct {
	ProductID int64
	Quantity  int
}

// OrderView is the read projection used by list and history queries.
type OrderView struct {
	ID         int64
	CustomerID int64
	Date       time.Time
	Products   []ProductLine
}

type ProductLine struct {
	ProductID int64
	Name      string
	Quantity  int
}

// MergeLines collapses duplicate product ids by summing their quantities,
// preserving first-appearance order. Used on create, where two lines for the
// same product mean the client wants both.
func MergeLines(lines []Line) []Line {
	merged := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

// CollapseLines keeps the last quantity seen per product id, preserving
// first-appearance order. Used on update, where the request is a replacement
// statement of desired quantities.
func CollapseLines(lines []Line) []Line {
	collapsed := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			collapsed[i].Quantity = l.Quantity
			continue
		}
		index[l.ProductID] = len(collapsed)
		collapsed = append(collapsed, l)
	}
	return collapsed
}

// QuantityByProduct indexes lines for delta computation against a prior state.
func QuantityByProduct(lines []Line) map[int64]int {
	m := make(map[int64]int, len(lines))
	for _, l := range lines {
		m[l.ProductID] = l.Quantity
	}
	return m
}
