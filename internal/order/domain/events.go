package domain

type EventLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type OrderCreated struct {
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	Date       string      `json:"date"`
	Lines      []EventLine `json:"lines"`
}

type OrderUpdated struct {
	OrderID    int64       `json:"order_id"`
	CustomerID int64       `json:"customer_id"`
	Date       string      `json:"date"`
	Lines      []EventLine `json:"lines"`
}

type OrderCancelled struct {
	OrderID   int64 `json:"order_id"`
	Restocked bool  `json:"restocked"`
}

func EventLines(lines []Line) []EventLine {
	out := make([]EventLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, EventLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}
