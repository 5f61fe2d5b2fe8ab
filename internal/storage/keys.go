package storage

import (
	"fmt"

	"gulmohar/billing/internal/billing"
)

// BillKey is where a bill's invoice PDF is archived. Invoice numbers are
// unique, so the key is stable for the life of the bill.
func BillKey(invoiceNumber string) string {
	if ym, _, err := billing.ParseInvoiceNumber(invoiceNumber); err == nil {
		return fmt.Sprintf("invoices/%s/%s.pdf", ym.Key(), invoiceNumber)
	}
	return fmt.Sprintf("invoices/other/%s.pdf", invoiceNumber)
}

// MonthlySummaryKey is where a monthly report PDF is archived.
func MonthlySummaryKey(year, month int) string {
	return fmt.Sprintf("reports/%04d/monthly-summary-%04d-%02d.pdf", year, year, month)
}
