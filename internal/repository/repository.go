// Package repository is the storage boundary of the billing service. The
// interfaces are what services depend on; the Mongo types implement them.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/utils"
)

// BillQuery selects bills. Empty fields do not constrain. CreatedFrom and
// CreatedTo are both inclusive.
type BillQuery struct {
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Status      models.BillStatus
	RoomNumber  string
}

// Page controls ordering and windowing of Find. Limit 0 means no limit.
type Page struct {
	Order models.SortOrder
	Skip  int64
	Limit int64
}

type BillRepository interface {
	// Insert stores a fully populated bill. A clash on invoice_number is
	// reported as ierr.ErrAllocationConflict.
	Insert(ctx context.Context, bill *models.Bill) error
	FindByID(ctx context.Context, id utils.SixID) (*models.Bill, error)
	Find(ctx context.Context, q BillQuery, page Page) ([]models.Bill, error)
	Count(ctx context.Context, q BillQuery) (int64, error)
	// SumTotal adds up total_amount over the matching bills.
	SumTotal(ctx context.Context, q BillQuery) (decimal.Decimal, error)
	DeleteByID(ctx context.Context, id utils.SixID) error
	UpdateStatus(ctx context.Context, id utils.SixID, status models.BillStatus, now time.Time) (*models.Bill, error)
	// FindLastInvoiceNumber returns the highest invoice number starting with
	// prefix, or "" when there is none.
	FindLastInvoiceNumber(ctx context.Context, prefix string) (string, error)
}

type SequenceRepository interface {
	// Next atomically increments the counter for key, creating it at 1.
	Next(ctx context.Context, key string, now time.Time) (int64, error)
	// RaiseTo sets the counter to value unless it is already higher.
	RaiseTo(ctx context.Context, key string, value int64, now time.Time) error
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id utils.SixID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}
