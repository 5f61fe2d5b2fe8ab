package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/billing"
	"gulmohar/billing/internal/cache"
	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/db"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/utils"
	"gulmohar/billing/internal/validator"
)

const maxBillsPageLimit = 100

// CreateBillInput is what a caller may supply for a new bill. Derived
// amounts and the invoice number are deliberately absent.
type CreateBillInput struct {
	CustomerName  string               `json:"customerName" validate:"required,max=200"`
	RoomNumber    string               `json:"roomNumber" validate:"required,max=20"`
	CheckIn       time.Time            `json:"checkIn" validate:"required"`
	CheckOut      time.Time            `json:"checkOut" validate:"required"`
	RoomCharges   *decimal.Decimal     `json:"roomCharges"`
	FoodCharges   *decimal.Decimal     `json:"foodCharges"`
	OtherCharges  *decimal.Decimal     `json:"otherCharges"`
	TaxPercentage *decimal.Decimal     `json:"taxPercentage"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"omitempty,paymentmethod"`
	Status        models.BillStatus    `json:"status" validate:"omitempty,billstatus"`
	Notes         string               `json:"notes" validate:"max=2000"`
}

// IBillArchiver schedules the PDF archive of a bill. It is best effort:
// failures are logged by the caller and never fail the bill operation.
type IBillArchiver interface {
	ArchiveBill(ctx context.Context, billID utils.SixID) error
}

// IBillService is the bill record lifecycle.
type IBillService interface {
	CreateBill(ctx context.Context, in CreateBillInput, createdBy utils.SixID) (*models.Bill, error)
	GetBill(ctx context.Context, id utils.SixID) (*models.Bill, error)
	ListBills(ctx context.Context, filter models.BillFilter) (*models.BillPage, error)
	UpdateBillStatus(ctx context.Context, id utils.SixID, status models.BillStatus) (*models.Bill, error)
	DeleteBill(ctx context.Context, id utils.SixID) error
}

type billService struct {
	bills     repository.BillRepository
	sequences IInvoiceSequenceService
	cache     cache.ReportCache
	archiver  IBillArchiver
	clock     clock.Clock
	cfg       *config.Config
	log       *logger.Logger
}

// NewBillService creates a new BillService. archiver may be nil.
func NewBillService(
	bills repository.BillRepository,
	sequences IInvoiceSequenceService,
	reportCache cache.ReportCache,
	archiver IBillArchiver,
	clk clock.Clock,
	cfg *config.Config,
	log *logger.Logger,
) IBillService {
	if reportCache == nil {
		reportCache = cache.NopReportCache{}
	}
	return &billService{
		bills:     bills,
		sequences: sequences,
		cache:     reportCache,
		archiver:  archiver,
		clock:     clk,
		cfg:       cfg,
		log:       log.Named("bills"),
	}
}

func (s *billService) CreateBill(ctx context.Context, in CreateBillInput, createdBy utils.SixID) (*models.Bill, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.Notes = strings.TrimSpace(in.Notes)

	if err := validator.ValidateRequest(in); err != nil {
		return nil, err
	}
	if err := s.validateAmounts(in); err != nil {
		return nil, err
	}

	days := billing.NumberOfDays(in.CheckIn, in.CheckOut)
	if days <= 0 {
		return nil, ierr.NewErrorf("check-out %s not after check-in %s", in.CheckOut, in.CheckIn).
			WithHint("Check-out date must be after check-in date").
			Mark(ierr.ErrValidation)
	}

	taxPct := s.cfg.DefaultTaxPercentage
	if in.TaxPercentage != nil {
		taxPct = *in.TaxPercentage
	}
	totals := billing.ComputeTotals(billing.ChargeInput{
		RoomCharges:   in.RoomCharges,
		FoodCharges:   in.FoodCharges,
		OtherCharges:  in.OtherCharges,
		TaxPercentage: taxPct,
	})
	if !totals.Subtotal.IsPositive() {
		return nil, ierr.NewError("all charges are zero").
			WithHint("Please enter at least one charge").
			Mark(ierr.ErrValidation)
	}

	now := s.clock.Now()
	bill := &models.Bill{
		CustomerName:  in.CustomerName,
		RoomNumber:    in.RoomNumber,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		NumberOfDays:  days,
		RoomCharges:   valueOrZero(in.RoomCharges),
		FoodCharges:   valueOrZero(in.FoodCharges),
		OtherCharges:  valueOrZero(in.OtherCharges),
		Subtotal:      totals.Subtotal,
		TaxPercentage: taxPct,
		Tax:           totals.Tax,
		TotalAmount:   totals.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		Notes:         in.Notes,
		CreatedBy:     createdBy,
	}
	if bill.PaymentMethod == "" {
		bill.PaymentMethod = models.PaymentMethodCash
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusPaid
	}
	bill.Touch(now)

	maxRetries := s.cfg.InvoiceAllocationRetries
	err := db.WithRetries(ctx, func(attempt int) error {
		if attempt > 0 {
			s.log.Warnw("invoice number conflict, retrying", "attempt", attempt, "invoice_number", bill.InvoiceNumber)
			if err := s.sequences.Resync(ctx, now); err != nil {
				return err
			}
		}
		number, err := s.sequences.Allocate(ctx, now)
		if err != nil {
			return err
		}
		bill.InvoiceNumber = number
		return s.bills.Insert(ctx, bill)
	}, maxRetries, ierr.IsAllocationConflict)
	if err != nil {
		if ierr.IsAllocationConflict(err) {
			s.log.Errorw("giving up on invoice number allocation", "retries", maxRetries, "error", err)
			return nil, ierr.WithError(err).
				WithHint("Could not allocate a unique invoice number, please try again").
				Mark(ierr.ErrFatalAllocation)
		}
		return nil, err
	}

	s.log.Infow("bill created",
		"bill_id", bill.ID.String(),
		"invoice_number", bill.InvoiceNumber,
		"total_amount", bill.TotalAmount.String(),
		"created_by", createdBy.String(),
	)
	s.afterChange(ctx)
	if s.archiver != nil {
		if err := s.archiver.ArchiveBill(ctx, bill.ID); err != nil {
			s.log.Warnw("failed to schedule bill archive", "bill_id", bill.ID.String(), "error", err)
		}
	}
	return bill, nil
}

func (s *billService) validateAmounts(in CreateBillInput) error {
	charges := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"roomCharges", in.RoomCharges},
		{"foodCharges", in.FoodCharges},
		{"otherCharges", in.OtherCharges},
		{"taxPercentage", in.TaxPercentage},
	}
	for _, c := range charges {
		if c.value != nil && c.value.IsNegative() {
			return ierr.NewErrorf("%s is negative: %s", c.name, c.value.String()).
				WithHintf("%s cannot be negative", c.name).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (s *billService) GetBill(ctx context.Context, id utils.SixID) (*models.Bill, error) {
	return s.bills.FindByID(ctx, id)
}

func (s *billService) ListBills(ctx context.Context, filter models.BillFilter) (*models.BillPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = s.cfg.BillsPageLimit
	}
	if limit > maxBillsPageLimit {
		limit = maxBillsPageLimit
	}

	q := repository.BillQuery{
		Search:      strings.TrimSpace(filter.Search),
		CreatedFrom: filter.StartDate,
		CreatedTo:   filter.EndDate,
		Status:      filter.Status,
		RoomNumber:  strings.TrimSpace(filter.RoomNumber),
	}
	if q.Status != "" && !q.Status.IsValid() {
		return nil, ierr.NewErrorf("unknown status %q", q.Status).
			WithHint("status must be one of paid, pending, cancelled").
			Mark(ierr.ErrValidation)
	}

	total, err := s.bills.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if page > pages {
		// past the last page; also keeps the skip below from overflowing
		return &models.BillPage{Bills: []models.Bill{}, Page: page, Pages: pages, Total: total}, nil
	}

	bills, err := s.bills.Find(ctx, q, repository.Page{
		Order: models.SortDesc,
		Skip:  int64(page-1) * int64(limit),
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return &models.BillPage{
		Bills: bills,
		Page:  page,
		Pages: pages,
		Total: total,
	}, nil
}

// UpdateBillStatus is the only mutation allowed after creation; amounts and
// the invoice number never change.
func (s *billService) UpdateBillStatus(ctx context.Context, id utils.SixID, status models.BillStatus) (*models.Bill, error) {
	if !status.IsValid() {
		return nil, ierr.NewErrorf("unknown status %q", status).
			WithHint("status must be one of paid, pending, cancelled").
			Mark(ierr.ErrValidation)
	}
	bill, err := s.bills.UpdateStatus(ctx, id, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.log.Infow("bill status updated", "bill_id", id.String(), "status", status)
	s.afterChange(ctx)
	return bill, nil
}

func (s *billService) DeleteBill(ctx context.Context, id utils.SixID) error {
	if err := s.bills.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Infow("bill deleted", "bill_id", id.String())
	s.afterChange(ctx)
	return nil
}

func (s *billService) afterChange(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warnw("failed to invalidate report cache", "error", err)
	}
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
