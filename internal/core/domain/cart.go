package domain

import "github.com/shopspring/decimal"

// CartLine is one (product, quantity) entry in the customer's in-progress
// order. UnitPrice is snapshotted when the line is created and is not
// refreshed by later adds. Quantity is always positive; a zero-quantity
// line is removed, never stored.
type CartLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice multiplied by Quantity, unrounded.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
