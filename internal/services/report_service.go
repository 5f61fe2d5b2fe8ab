package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"gulmohar/billing/internal/billing"
	"gulmohar/billing/internal/cache"
	"gulmohar/billing/internal/clock"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
)

// IReportService computes dashboard and monthly statistics.
type IReportService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	MonthlySummary(ctx context.Context, month, year int, order models.SortOrder) (*models.MonthlySummary, error)
}

type reportService struct {
	bills repository.BillRepository
	cache cache.ReportCache
	clock clock.Clock
	loc   *time.Location
	log   *logger.Logger
}

func NewReportService(
	bills repository.BillRepository,
	reportCache cache.ReportCache,
	clk clock.Clock,
	loc *time.Location,
	log *logger.Logger,
) IReportService {
	if reportCache == nil {
		reportCache = cache.NopReportCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		bills: bills,
		cache: reportCache,
		clock: clk,
		loc:   loc,
		log:   log.Named("reports"),
	}
}

// Dashboard revenue figures count paid bills only; the bill counts include
// every status.
func (s *reportService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	now := s.clock.Now()
	w := billing.WindowsAt(now, s.loc)

	key := "dashboard:" + w.Today.Format("20060102")
	var cached models.DashboardStats
	gen, found := s.fromCache(ctx, key, &cached)
	if found {
		return &cached, nil
	}

	lastMonthEnd := w.ThisMonth.Add(-time.Nanosecond)
	stats := &models.DashboardStats{}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		v, err := s.bills.SumTotal(ctx, repository.BillQuery{CreatedFrom: &w.Today, Status: models.BillStatusPaid})
		stats.TodayRevenue = v
		return err
	})
	p.Go(func(ctx context.Context) error {
		v, err := s.bills.SumTotal(ctx, repository.BillQuery{CreatedFrom: &w.ThisMonth, Status: models.BillStatusPaid})
		stats.MonthRevenue = v
		return err
	})
	p.Go(func(ctx context.Context) error {
		v, err := s.bills.SumTotal(ctx, repository.BillQuery{
			CreatedFrom: &w.LastMonth,
			CreatedTo:   &lastMonthEnd,
			Status:      models.BillStatusPaid,
		})
		stats.LastMonthRevenue = v
		return err
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.bills.Count(ctx, repository.BillQuery{})
		stats.TotalBills = n
		return err
	})
	p.Go(func(ctx context.Context) error {
		n, err := s.bills.Count(ctx, repository.BillQuery{CreatedFrom: &w.Today})
		stats.TodayBills = n
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, gen, key, stats)
	return stats, nil
}

// MonthlySummary aggregates the bills created in the given calendar month
// of the business time zone.
func (s *reportService) MonthlySummary(ctx context.Context, month, year int, order models.SortOrder) (*models.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, ierr.NewErrorf("invalid month %d", month).
			WithHint("month must be between 1 and 12").
			Mark(ierr.ErrValidation)
	}
	if year < 1970 || year > 9999 {
		return nil, ierr.NewErrorf("invalid year %d", year).
			WithHint("year must be between 1970 and 9999").
			Mark(ierr.ErrValidation)
	}
	if order == "" {
		order = models.SortDesc
	}
	if order != models.SortAsc && order != models.SortDesc {
		return nil, ierr.NewErrorf("invalid order %q", order).
			WithHint("order must be asc or desc").
			Mark(ierr.ErrValidation)
	}

	key := fmt.Sprintf("monthly:%04d:%02d:%s", year, month, order)
	var cached models.MonthlySummary
	gen, found := s.fromCache(ctx, key, &cached)
	if found {
		return &cached, nil
	}

	start, end := billing.MonthRange(year, time.Month(month), s.loc)
	bills, err := s.bills.Find(ctx, repository.BillQuery{CreatedFrom: &start, CreatedTo: &end}, repository.Page{Order: order})
	if err != nil {
		return nil, err
	}

	summary := billing.Summarize(month, year, bills)
	s.log.Debugw("monthly summary computed",
		"year", year, "month", month,
		"bills", summary.TotalBills,
		"revenue", summary.TotalRevenue.StringFixed(2),
	)
	s.toCache(ctx, gen, key, summary)
	return summary, nil
}

// fromCache returns the cache generation to write back under, or -1 when
// the cache could not be read.
func (s *reportService) fromCache(ctx context.Context, key string, dst any) (int64, bool) {
	found, gen, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warnw("report cache read failed", "key", key, "error", err)
		return -1, false
	}
	return gen, found
}

func (s *reportService) toCache(ctx context.Context, gen int64, key string, v any) {
	if gen < 0 {
		return
	}
	if err := s.cache.Set(ctx, gen, key, v); err != nil {
		s.log.Warnw("report cache write failed", "key", key, "error", err)
	}
}
