package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/billing"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/utils"
)

// InMemoryBillStore implements repository.BillRepository, including the
// unique invoice number constraint.
type InMemoryBillStore struct {
	mu       sync.RWMutex
	bills    map[utils.SixID]*models.Bill
	invoices map[string]utils.SixID

	// BeforeInsert, when set, runs under the store lock before each insert
	// and can veto it.
	BeforeInsert func(bill *models.Bill) error
}

func NewInMemoryBillStore() *InMemoryBillStore {
	return &InMemoryBillStore{
		bills:    make(map[utils.SixID]*models.Bill),
		invoices: make(map[string]utils.SixID),
	}
}

var _ repository.BillRepository = (*InMemoryBillStore)(nil)

func copyBill(b *models.Bill) *models.Bill {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func (s *InMemoryBillStore) Insert(_ context.Context, bill *models.Bill) error {
	if bill == nil {
		return fmt.Errorf("bill cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.BeforeInsert != nil {
		if err := s.BeforeInsert(bill); err != nil {
			return err
		}
	}
	if _, taken := s.invoices[bill.InvoiceNumber]; taken {
		return ierr.NewErrorf("duplicate invoice number %s", bill.InvoiceNumber).
			WithHintf("invoice number %s is already taken", bill.InvoiceNumber).
			Mark(ierr.ErrAllocationConflict)
	}

	bill.GenIDIfEmpty()
	for _, exists := s.bills[bill.ID]; exists; _, exists = s.bills[bill.ID] {
		bill.GenID()
	}
	s.bills[bill.ID] = copyBill(bill)
	s.invoices[bill.InvoiceNumber] = bill.ID
	return nil
}

func (s *InMemoryBillStore) FindByID(_ context.Context, id utils.SixID) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bills[id]
	if !ok {
		return nil, notFound("Bill")
	}
	return copyBill(b), nil
}

func (s *InMemoryBillStore) Find(_ context.Context, q repository.BillQuery, page repository.Page) ([]models.Bill, error) {
	matched := s.match(q)
	order := page.Order
	if order == "" {
		order = models.SortDesc
	}
	billing.SortByCreatedAt(matched, order)

	if page.Skip >= int64(len(matched)) {
		return []models.Bill{}, nil
	}
	matched = matched[page.Skip:]
	if page.Limit > 0 && int64(len(matched)) > page.Limit {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (s *InMemoryBillStore) Count(_ context.Context, q repository.BillQuery) (int64, error) {
	return int64(len(s.match(q))), nil
}

func (s *InMemoryBillStore) SumTotal(_ context.Context, q repository.BillQuery) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range s.match(q) {
		total = total.Add(b.TotalAmount)
	}
	return total, nil
}

func (s *InMemoryBillStore) DeleteByID(_ context.Context, id utils.SixID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[id]
	if !ok {
		return notFound("Bill")
	}
	delete(s.invoices, b.InvoiceNumber)
	delete(s.bills, id)
	return nil
}

func (s *InMemoryBillStore) UpdateStatus(_ context.Context, id utils.SixID, status models.BillStatus, now time.Time) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[id]
	if !ok {
		return nil, notFound("Bill")
	}
	b.Status = status
	b.UpdatedAt = now
	return copyBill(b), nil
}

func (s *InMemoryBillStore) FindLastInvoiceNumber(_ context.Context, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best    string
		bestSeq int64
	)
	for num := range s.invoices {
		if !strings.HasPrefix(num, prefix) {
			continue
		}
		_, seq, err := billing.ParseInvoiceNumber(num)
		if err != nil {
			continue
		}
		if seq > bestSeq {
			best, bestSeq = num, seq
		}
	}
	return best, nil
}

// All returns every stored bill. Test helper.
func (s *InMemoryBillStore) All() []models.Bill {
	return s.match(repository.BillQuery{})
}

// Len is the number of stored bills.
func (s *InMemoryBillStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bills)
}

func (s *InMemoryBillStore) match(q repository.BillQuery) []models.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(q.Search)
	out := lo.FilterMap(lo.Values(s.bills), func(b *models.Bill, _ int) (models.Bill, bool) {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), search) &&
			!strings.Contains(strings.ToLower(b.InvoiceNumber), search) {
			return models.Bill{}, false
		}
		if q.CreatedFrom != nil && b.CreatedAt.Before(*q.CreatedFrom) {
			return models.Bill{}, false
		}
		if q.CreatedTo != nil && b.CreatedAt.After(*q.CreatedTo) {
			return models.Bill{}, false
		}
		if q.Status != "" && b.Status != q.Status {
			return models.Bill{}, false
		}
		if q.RoomNumber != "" && b.RoomNumber != q.RoomNumber {
			return models.Bill{}, false
		}
		return *b, true
	})
	return out
}

func notFound(what string) error {
	return ierr.NewErrorf("%s not found", what).
		WithHintf("%s not found", what).
		Mark(ierr.ErrNotFound)
}
