package billing

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/models"
)

// Summarize folds the bills of one month into a MonthlySummary. The bills
// are expected to be pre-selected by createdAt; Summarize does not filter.
func Summarize(month int, year int, bills []models.Bill) *models.MonthlySummary {
	s := &models.MonthlySummary{
		Month:             month,
		Year:              year,
		TotalBills:        len(bills),
		TotalRevenue:      decimal.Zero,
		TotalRoomCharges:  decimal.Zero,
		TotalFoodCharges:  decimal.Zero,
		TotalOtherCharges: decimal.Zero,
		TotalTax:          decimal.Zero,
		Bills:             bills,
	}
	if s.Bills == nil {
		s.Bills = []models.Bill{}
	}

	for _, b := range bills {
		s.TotalRevenue = s.TotalRevenue.Add(b.TotalAmount)
		s.TotalRoomCharges = s.TotalRoomCharges.Add(b.RoomCharges)
		s.TotalFoodCharges = s.TotalFoodCharges.Add(b.FoodCharges)
		s.TotalOtherCharges = s.TotalOtherCharges.Add(b.OtherCharges)
		s.TotalTax = s.TotalTax.Add(b.Tax)
	}

	s.PaidCount = lo.CountBy(bills, func(b models.Bill) bool { return b.Status == models.BillStatusPaid })
	s.PendingCount = lo.CountBy(bills, func(b models.Bill) bool { return b.Status == models.BillStatusPending })
	return s
}

// SortByCreatedAt orders bills in place. Ties keep invoice number order so
// the output is deterministic.
func SortByCreatedAt(bills []models.Bill, order models.SortOrder) {
	sort.SliceStable(bills, func(i, j int) bool {
		a, b := bills[i], bills[j]
		if a.CreatedAt.Equal(b.CreatedAt) {
			if order == models.SortAsc {
				return a.InvoiceNumber < b.InvoiceNumber
			}
			return a.InvoiceNumber > b.InvoiceNumber
		}
		if order == models.SortAsc {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
