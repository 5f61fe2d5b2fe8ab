package billing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const invoicePrefix = "INV-"

// ErrMalformedInvoiceNumber is returned by ParseInvoiceNumber.
var ErrMalformedInvoiceNumber = errors.New("malformed invoice number")

// YearMonth is the scope invoice sequences are counted in.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf returns the scope of t in loc.
func YearMonthOf(t time.Time, loc *time.Location) YearMonth {
	t = t.In(loc)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Key is the compact YYYYMM form used in invoice numbers and as the
// counter id.
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d%02d", ym.Year, int(ym.Month))
}

// Prefix is the leading part shared by every invoice number of the month,
// e.g. "INV-202403-".
func (ym YearMonth) Prefix() string {
	return invoicePrefix + ym.Key() + "-"
}

// FormatInvoiceNumber renders INV-YYYYMM-NNNN. The sequence is zero-padded
// to at least four digits.
func FormatInvoiceNumber(ym YearMonth, seq int64) string {
	return fmt.Sprintf("%s%04d", ym.Prefix(), seq)
}

// ParseInvoiceNumber is the inverse of FormatInvoiceNumber.
func ParseInvoiceNumber(s string) (YearMonth, int64, error) {
	rest, ok := strings.CutPrefix(s, invoicePrefix)
	if !ok {
		return YearMonth{}, 0, ErrMalformedInvoiceNumber
	}
	key, seqPart, ok := strings.Cut(rest, "-")
	if !ok || len(key) != 6 || len(seqPart) < 4 {
		return YearMonth{}, 0, ErrMalformedInvoiceNumber
	}

	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return YearMonth{}, 0, ErrMalformedInvoiceNumber
	}
	month, err := strconv.Atoi(key[4:])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, 0, ErrMalformedInvoiceNumber
	}
	for _, c := range seqPart {
		if c < '0' || c > '9' {
			return YearMonth{}, 0, ErrMalformedInvoiceNumber
		}
	}
	seq, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil || seq < 1 {
		return YearMonth{}, 0, ErrMalformedInvoiceNumber
	}

	return YearMonth{Year: year, Month: time.Month(month)}, seq, nil
}
