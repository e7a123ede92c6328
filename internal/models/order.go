package models

import "fmt"

// TotalPriceNotApplicable is reported instead of a number when a user has no orders.
const TotalPriceNotApplicable = "N/A"

// Order is a single line of a user's order history. It has no identity of its own.
type Order struct {
	ProductName string  `json:"productName" bson:"productName"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
}

// LineTotal is price times quantity.
func (o Order) LineTotal() float64 {
	return o.Price * o.Quantity
}

// TotalPrice sums the line totals of orders. ok is false when there is nothing to sum.
func TotalPrice(orders []Order) (total float64, ok bool) {
	if len(orders) == 0 {
		return 0, false
	}
	for _, o := range orders {
		total += o.LineTotal()
	}
	return total, true
}

// FormatTotalPrice renders TotalPrice with two decimals, or TotalPriceNotApplicable.
func FormatTotalPrice(orders []Order) string {
	total, ok := TotalPrice(orders)
	if !ok {
		return TotalPriceNotApplicable
	}
	return fmt.Sprintf("%.2f", total)
}
