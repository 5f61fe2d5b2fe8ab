package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/db"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/testutil"
	"gulmohar/billing/internal/utils"
)

func init() {
	db.Backoff = func(int) time.Duration { return 0 }
}

var ist = time.FixedZone("IST", 5*3600+1800)

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:                "test-secret",
		JwtTTL:                   time.Hour,
		BusinessTimezone:         ist,
		DefaultTaxPercentage:     decimal.NewFromInt(18),
		InvoiceAllocationRetries: 4,
		BillsPageLimit:           20,
		AdminUsername:            "admin",
		AdminPassword:            "admin123",
		AdminEmail:               "admin@gulmoharresort.com",
	}
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) ArchiveBill(ctx context.Context, billID utils.SixID) error {
	return m.Called(ctx, billID).Error(0)
}

type billFixture struct {
	cfg       *config.Config
	clock     *clock.Fixed
	bills     *testutil.InMemoryBillStore
	sequences *testutil.InMemorySequenceStore
	allocator IInvoiceSequenceService
	service   IBillService
	reports   IReportService
}

func newBillFixture(now time.Time, archiver IBillArchiver) *billFixture {
	f := &billFixture{
		cfg:       testConfig(),
		clock:     clock.NewFixed(now),
		bills:     testutil.NewInMemoryBillStore(),
		sequences: testutil.NewInMemorySequenceStore(),
	}
	log := logger.NewNop()
	f.allocator = NewInvoiceSequenceService(f.sequences, f.bills, f.cfg.BusinessTimezone, f.clock, log)
	f.service = NewBillService(f.bills, f.allocator, nil, archiver, f.clock, f.cfg, log)
	f.reports = NewReportService(f.bills, nil, f.clock, f.cfg.BusinessTimezone, log)
	return f
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInput(checkIn time.Time) CreateBillInput {
	return CreateBillInput{
		CustomerName:  "Asha Rao",
		RoomNumber:    "204",
		CheckIn:       checkIn,
		CheckOut:      checkIn.Add(48 * time.Hour),
		RoomCharges:   dec("2000"),
		FoodCharges:   dec("500"),
		OtherCharges:  dec("0"),
		PaymentMethod: "cash",
	}
}
