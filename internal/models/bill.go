package models

import (
	"time"

	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/utils"
)

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentMethod is how the guest settled the bill.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank-transfer"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// BillStatus is the settlement state of a bill.
type BillStatus string

const (
	BillStatusPaid      BillStatus = "paid"
	BillStatusPending   BillStatus = "pending"
	BillStatusCancelled BillStatus = "cancelled"
)

func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPaid, BillStatusPending, BillStatusCancelled:
		return true
	}
	return false
}

// Bill is a guest invoice. Subtotal, Tax and TotalAmount are derived from the
// charges at creation and never accepted from callers.
type Bill struct {
	Base          `bson:",inline"`
	InvoiceNumber string          `bson:"invoice_number" json:"invoiceNumber"`
	CustomerName  string          `bson:"customer_name" json:"customerName"`
	RoomNumber    string          `bson:"room_number" json:"roomNumber"`
	CheckIn       time.Time       `bson:"check_in" json:"checkIn"`
	CheckOut      time.Time       `bson:"check_out" json:"checkOut"`
	NumberOfDays  int             `bson:"number_of_days" json:"numberOfDays"`
	RoomCharges   decimal.Decimal `bson:"room_charges" json:"roomCharges"`
	FoodCharges   decimal.Decimal `bson:"food_charges" json:"foodCharges"`
	OtherCharges  decimal.Decimal `bson:"other_charges" json:"otherCharges"`
	Subtotal      decimal.Decimal `bson:"subtotal" json:"subtotal"`
	TaxPercentage decimal.Decimal `bson:"tax_percentage" json:"taxPercentage"`
	Tax           decimal.Decimal `bson:"tax" json:"tax"`
	TotalAmount   decimal.Decimal `bson:"total_amount" json:"totalAmount"`
	PaymentMethod PaymentMethod   `bson:"payment_method" json:"paymentMethod"`
	Status        BillStatus      `bson:"status" json:"status"`
	Notes         string          `bson:"notes" json:"notes"`
	CreatedBy     utils.SixID     `bson:"created_by" json:"createdBy"`
}

// SortOrder selects ascending or descending createdAt ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// BillFilter describes the list/search query. Zero values mean "no filter"
// on that dimension.
type BillFilter struct {
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     BillStatus
	RoomNumber string
	Page       int
	Limit      int
}

// BillPage is one page of search results.
type BillPage struct {
	Bills []Bill `json:"bills"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int64  `json:"total"`
}
