package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/services"
	"gulmohar/billing/internal/utils"
)

// --- Mocks ---

// MockBillService
type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) CreateBill(ctx context.Context, in services.CreateBillInput, createdBy utils.SixID) (*models.Bill, error) {
	args := m.Called(ctx, in, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillService) GetBill(ctx context.Context, id utils.SixID) (*models.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillService) ListBills(ctx context.Context, filter models.BillFilter) (*models.BillPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillPage), args.Error(1)
}

func (m *MockBillService) UpdateBillStatus(ctx context.Context, id utils.SixID, status models.BillStatus) (*models.Bill, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillService) DeleteBill(ctx context.Context, id utils.SixID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func (m *MockReportService) MonthlySummary(ctx context.Context, month, year int, order models.SortOrder) (*models.MonthlySummary, error) {
	args := m.Called(ctx, month, year, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlySummary), args.Error(1)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SeedAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) RenderBill(ctx context.Context, bill *models.Bill) ([]byte, error) {
	args := m.Called(ctx, bill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) RenderMonthlySummary(ctx context.Context, summary *models.MonthlySummary) ([]byte, error) {
	args := m.Called(ctx, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PutPDF(ctx context.Context, key string, body []byte) error {
	return m.Called(ctx, key, body).Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) PresignedGetURL(ctx context.Context, key, filename string) (string, error) {
	args := m.Called(ctx, key, filename)
	return args.String(0), args.Error(1)
}

// MockArchiver covers both bill and monthly archive scheduling.
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) ArchiveBill(ctx context.Context, billID utils.SixID) error {
	return m.Called(ctx, billID).Error(0)
}

func (m *MockArchiver) ArchiveMonthlySummary(ctx context.Context, month, year int) error {
	return m.Called(ctx, month, year).Error(0)
}
