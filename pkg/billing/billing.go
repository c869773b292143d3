// Package billing keeps a bill's cost and unit price consistent as it is
// edited.
package billing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/raterudder/fuelcast/pkg/types"
)

// Edit is a partial update to a BillRecord. nil fields are left unchanged.
type Edit struct {
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty"`
}

func divide(a, b float64) float64 {
	return decimal.NewFromFloat(a).Div(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func multiply(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// ApplyEdit returns bill with edit applied. Changing only the cost re-derives
// the unit price, and changing only the unit price re-derives the cost. A
// quantity change re-derives the cost from the unit price when there is one,
// otherwise the unit price from the cost. Derived values are rounded to the
// cent and nothing is derived while the quantity is not positive.
func ApplyEdit(bill types.BillRecord, edit Edit) types.BillRecord {
	if edit.StartDate != nil {
		bill.StartDate = *edit.StartDate
	}
	if edit.EndDate != nil {
		bill.EndDate = *edit.EndDate
	}
	if edit.Unit != nil {
		bill.Unit = *edit.Unit
	}
	if edit.Quantity != nil {
		bill.Quantity = *edit.Quantity
	}
	if edit.Cost != nil {
		bill.Cost = lo.ToPtr(*edit.Cost)
	}
	if edit.PricePerUnit != nil {
		bill.PricePerUnit = lo.ToPtr(*edit.PricePerUnit)
	}

	switch {
	case edit.Cost != nil && edit.PricePerUnit == nil:
		if bill.Quantity > 0 {
			bill.PricePerUnit = lo.ToPtr(divide(*bill.Cost, bill.Quantity))
		}
	case edit.PricePerUnit != nil && edit.Cost == nil:
		if bill.Quantity > 0 {
			bill.Cost = lo.ToPtr(multiply(*bill.PricePerUnit, bill.Quantity))
		}
	case edit.Quantity != nil && bill.Quantity > 0:
		if bill.PricePerUnit != nil {
			bill.Cost = lo.ToPtr(multiply(*bill.PricePerUnit, bill.Quantity))
		} else if bill.Cost != nil {
			bill.PricePerUnit = lo.ToPtr(divide(*bill.Cost, bill.Quantity))
		}
	}
	return bill
}

// PricingConsistent returns false if the bill has both a cost and a unit
// price, a positive quantity, and the cost disagrees with the unit price times
// the quantity by more than a cent plus the rounding error of the unit price.
func PricingConsistent(bill types.BillRecord) bool {
	if bill.Cost == nil || bill.PricePerUnit == nil || bill.Quantity <= 0 {
		return true
	}
	expected := decimal.NewFromFloat(*bill.PricePerUnit).Mul(decimal.NewFromFloat(bill.Quantity))
	diff := expected.Sub(decimal.NewFromFloat(*bill.Cost)).Abs()
	// unit prices are stored rounded so allow for that error across the quantity
	tolerance := decimal.NewFromFloat(0.01).Add(decimal.NewFromFloat(0.005).Mul(decimal.NewFromFloat(bill.Quantity)))
	return diff.LessThanOrEqual(tolerance)
}
