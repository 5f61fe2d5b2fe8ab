package services

import (
	"context"
	"time"

	"gulmohar/billing/internal/billing"
	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/repository"
)

// IInvoiceSequenceService hands out invoice numbers.
type IInvoiceSequenceService interface {
	// Allocate returns the next INV-YYYYMM-NNNN for the business month of at.
	// A returned number is never handed out again, even if the caller
	// fails to use it.
	Allocate(ctx context.Context, at time.Time) (string, error)
	// Resync raises the month's counter to the highest number already
	// stored, so bills numbered by other means cannot cause repeated
	// conflicts.
	Resync(ctx context.Context, at time.Time) error
}

type invoiceSequenceService struct {
	sequences repository.SequenceRepository
	bills     repository.BillRepository
	loc       *time.Location
	clock     clock.Clock
	log       *logger.Logger
}

func NewInvoiceSequenceService(
	sequences repository.SequenceRepository,
	bills repository.BillRepository,
	loc *time.Location,
	clk clock.Clock,
	log *logger.Logger,
) IInvoiceSequenceService {
	if loc == nil {
		loc = time.UTC
	}
	return &invoiceSequenceService{
		sequences: sequences,
		bills:     bills,
		loc:       loc,
		clock:     clk,
		log:       log.Named("invoice_sequence"),
	}
}

func (s *invoiceSequenceService) Allocate(ctx context.Context, at time.Time) (string, error) {
	ym := billing.YearMonthOf(at, s.loc)
	seq, err := s.sequences.Next(ctx, ym.Key(), s.clock.Now())
	if err != nil {
		return "", err
	}
	return billing.FormatInvoiceNumber(ym, seq), nil
}

func (s *invoiceSequenceService) Resync(ctx context.Context, at time.Time) error {
	ym := billing.YearMonthOf(at, s.loc)
	last, err := s.bills.FindLastInvoiceNumber(ctx, ym.Prefix())
	if err != nil {
		return err
	}
	if last == "" {
		return nil
	}

	_, seq, err := billing.ParseInvoiceNumber(last)
	if err != nil {
		s.log.Warnw("ignoring unparsable invoice number during resync", "invoice_number", last, "error", err)
		return nil
	}

	s.log.Infow("resyncing invoice sequence", "scope", ym.Key(), "last_seen", seq)
	return s.sequences.RaiseTo(ctx, ym.Key(), seq, s.clock.Now())
}
