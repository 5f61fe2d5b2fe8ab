// Package billing holds the pure arithmetic, numbering and calendar rules
// for guest bills. Nothing in here touches storage or the clock.
package billing

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ChargeInput is the raw money a bill is computed from. Nil pointers count
// as zero.
type ChargeInput struct {
	RoomCharges   *decimal.Decimal
	FoodCharges   *decimal.Decimal
	OtherCharges  *decimal.Decimal
	TaxPercentage decimal.Decimal
}

// Totals are the derived amounts of a bill. Values are exact; rounding is
// left to presentation.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals returns subtotal = room + food + other,
// tax = subtotal * taxPercentage / 100 and total = subtotal + tax.
func ComputeTotals(in ChargeInput) Totals {
	subtotal := orZero(in.RoomCharges).Add(orZero(in.FoodCharges)).Add(orZero(in.OtherCharges))
	tax := subtotal.Mul(in.TaxPercentage).Div(hundred)
	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		TotalAmount: subtotal.Add(tax),
	}
}

// NumberOfDays is the stay length in whole days, rounded up. It is <= 0
// when checkOut is not after checkIn.
func NumberOfDays(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
