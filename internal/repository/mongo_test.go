package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulmohar/billing/internal/db"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/testutil"
	"gulmohar/billing/internal/utils"
)

const testDBName = "gulmohar_billing_test"

func newBill(num, customer string, created time.Time, status models.BillStatus, total string) *models.Bill {
	b := &models.Bill{
		InvoiceNumber: num,
		CustomerName:  customer,
		RoomNumber:    "101",
		CheckIn:       created,
		CheckOut:      created.Add(24 * time.Hour),
		NumberOfDays:  1,
		RoomCharges:   decimal.RequireFromString(total),
		Subtotal:      decimal.RequireFromString(total),
		TaxPercentage: decimal.Zero,
		TotalAmount:   decimal.RequireFromString(total),
		PaymentMethod: models.PaymentMethodCash,
		Status:        status,
	}
	b.Touch(created)
	return b
}

func TestMongoBillRepository(t *testing.T) {
	database := testutil.SetupTestDB(t, testDBName, db.BillsCollection)
	repo := repository.NewMongoBillRepository(database)
	ctx := context.Background()

	march := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	first := newBill("INV-202403-0001", "Asha Rao", march, models.BillStatusPaid, "2950.00")
	second := newBill("INV-202403-0002", "Vikram Shah", march.Add(time.Hour), models.BillStatusPending, "1180")
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))
	assert.False(t, first.ID.IsZero())

	t.Run("duplicate invoice number is an allocation conflict", func(t *testing.T) {
		dup := newBill("INV-202403-0001", "Someone Else", march, models.BillStatusPaid, "10")
		err := repo.Insert(ctx, dup)
		assert.True(t, ierr.IsAllocationConflict(err), "got %v", err)
	})

	t.Run("find by id keeps decimals exact", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-202403-0001", got.InvoiceNumber)
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("2950")))
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, utils.NewSixID())
		assert.True(t, ierr.IsNotFound(err))
		assert.True(t, ierr.IsNotFound(repo.DeleteByID(ctx, utils.NewSixID())))
	})

	t.Run("search is case-insensitive and regex-safe", func(t *testing.T) {
		bills, err := repo.Find(ctx, repository.BillQuery{Search: "asha"}, repository.Page{})
		require.NoError(t, err)
		require.Len(t, bills, 1)

		bills, err = repo.Find(ctx, repository.BillQuery{Search: "202403-000"}, repository.Page{Order: models.SortAsc})
		require.NoError(t, err)
		require.Len(t, bills, 2)
		assert.Equal(t, "INV-202403-0001", bills[0].InvoiceNumber)

		bills, err = repo.Find(ctx, repository.BillQuery{Search: ".*"}, repository.Page{})
		require.NoError(t, err)
		assert.Empty(t, bills)
	})

	t.Run("sum and count", func(t *testing.T) {
		total, err := repo.SumTotal(ctx, repository.BillQuery{Status: models.BillStatusPaid})
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("2950")), "got %s", total)

		empty, err := repo.SumTotal(ctx, repository.BillQuery{Status: models.BillStatusCancelled})
		require.NoError(t, err)
		assert.True(t, empty.IsZero())

		n, err := repo.Count(ctx, repository.BillQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("last invoice number", func(t *testing.T) {
		last, err := repo.FindLastInvoiceNumber(ctx, "INV-202403-")
		require.NoError(t, err)
		assert.Equal(t, "INV-202403-0002", last)

		last, err = repo.FindLastInvoiceNumber(ctx, "INV-202404-")
		require.NoError(t, err)
		assert.Empty(t, last)
	})

	t.Run("update status", func(t *testing.T) {
		got, err := repo.UpdateStatus(ctx, second.ID, models.BillStatusPaid, march.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, models.BillStatusPaid, got.Status)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(1180)))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, first.ID))
		_, err := repo.FindByID(ctx, first.ID)
		assert.True(t, ierr.IsNotFound(err))
	})
}

func TestMongoSequenceRepository_ConcurrentNext(t *testing.T) {
	database := testutil.SetupTestDB(t, testDBName, db.SequencesCollection)
	repo := repository.NewMongoSequenceRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	const n = 20
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(ctx, "202403", now)
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], fmt.Sprintf("missing %d", i))
	}

	require.NoError(t, repo.RaiseTo(ctx, "202403", 5, now))
	v, err := repo.Next(ctx, "202403", now)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), v, "RaiseTo must never lower the counter")

	require.NoError(t, repo.RaiseTo(ctx, "202404", 7, now))
	v, err = repo.Next(ctx, "202404", now)
	require.NoError(t, err)
	assert.Equal(t, int64(8), v)
}

func TestMongoUserRepository(t *testing.T) {
	database := testutil.SetupTestDB(t, testDBName, db.UsersCollection)
	repo := repository.NewMongoUserRepository(database)
	ctx := context.Background()

	u := &models.User{Username: "frontdesk", FullName: "Front Desk", Role: models.RoleStaff, IsActive: true}
	require.NoError(t, repo.Insert(ctx, u))

	err := repo.Insert(ctx, &models.User{Username: "frontdesk"})
	assert.True(t, ierr.Is(err, ierr.ErrAlreadyExists))

	got, err := repo.FindByUsername(ctx, "frontdesk")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.True(t, ierr.IsNotFound(err))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
