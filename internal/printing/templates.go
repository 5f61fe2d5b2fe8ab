package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"gulmohar/billing/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	invoiceTemplate        = "invoice.html"
	monthlySummaryTemplate = "monthly_summary.html"
)

// Resort is the letterhead printed on every document.
type Resort struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

type invoiceData struct {
	Resort Resort
	Bill   *models.Bill
}

type monthlySummaryData struct {
	Resort      Resort
	Summary     *models.MonthlySummary
	MonthName   string
	GeneratedAt time.Time
}

// TemplateEngine renders the document templates to HTML. Dates are printed
// in the business timezone.
type TemplateEngine struct {
	tmpl *template.Template
	loc  *time.Location
}

func NewTemplateEngine(loc *time.Location) (*TemplateEngine, error) {
	if loc == nil {
		loc = time.UTC
	}
	e := &TemplateEngine{loc: loc}

	funcs := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,
		"positive":       func(d decimal.Decimal) bool { return d.IsPositive() },
		"plural":         plural,
		"truncate":       truncate,
		"upper":          strings.ToUpper,
	}

	tmpl, err := template.New("documents").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse document templates")
	}
	e.tmpl = tmpl
	return e, nil
}

func (e *TemplateEngine) InvoiceHTML(resort Resort, bill *models.Bill) (string, error) {
	return e.execute(invoiceTemplate, invoiceData{Resort: resort, Bill: bill})
}

func (e *TemplateEngine) MonthlySummaryHTML(resort Resort, summary *models.MonthlySummary, generatedAt time.Time) (string, error) {
	return e.execute(monthlySummaryTemplate, monthlySummaryData{
		Resort:      resort,
		Summary:     summary,
		MonthName:   time.Month(summary.Month).String(),
		GeneratedAt: generatedAt,
	})
}

func (e *TemplateEngine) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "execute template %s", name)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(e.loc).Format("02/01/2006")
}

func (e *TemplateEngine) formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(e.loc).Format("02/01/2006 15:04")
}

// formatMoney renders an amount as rupees with two decimals.
func formatMoney(d decimal.Decimal) string {
	return "₹ " + d.StringFixed(2)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
