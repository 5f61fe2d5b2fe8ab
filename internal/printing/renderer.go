// Package printing renders bills and monthly summaries as printable PDF
// documents.
package printing

import (
	"context"
	"fmt"

	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/models"
)

// Renderer produces PDF documents.
type Renderer interface {
	RenderBill(ctx context.Context, bill *models.Bill) ([]byte, error)
	RenderMonthlySummary(ctx context.Context, summary *models.MonthlySummary) ([]byte, error)
}

type documentRenderer struct {
	engine    *TemplateEngine
	converter PDFConverter
	resort    Resort
	clock     clock.Clock
}

func NewRenderer(engine *TemplateEngine, converter PDFConverter, resort Resort, clk clock.Clock) Renderer {
	return &documentRenderer{
		engine:    engine,
		converter: converter,
		resort:    resort,
		clock:     clk,
	}
}

func (r *documentRenderer) RenderBill(ctx context.Context, bill *models.Bill) ([]byte, error) {
	html, err := r.engine.InvoiceHTML(r.resort, bill)
	if err != nil {
		return nil, err
	}
	return r.converter.HTMLToPDF(ctx, html)
}

func (r *documentRenderer) RenderMonthlySummary(ctx context.Context, summary *models.MonthlySummary) ([]byte, error) {
	html, err := r.engine.MonthlySummaryHTML(r.resort, summary, r.clock.Now())
	if err != nil {
		return nil, err
	}
	return r.converter.HTMLToPDF(ctx, html)
}

// InvoiceFilename is the download name of a bill's PDF.
func InvoiceFilename(invoiceNumber string) string {
	return fmt.Sprintf("invoice-%s.pdf", invoiceNumber)
}

// MonthlySummaryFilename is the download name of a monthly report PDF.
func MonthlySummaryFilename(year, month int) string {
	return fmt.Sprintf("monthly-summary-%d-%d.pdf", year, month)
}
