package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/printing"
	"gulmohar/billing/internal/services"
)

// IMonthlyArchiver schedules the archive of a monthly report.
type IMonthlyArchiver interface {
	ArchiveMonthlySummary(ctx context.Context, month, year int) error
}

// RestReportHandler serves dashboard and monthly report endpoints.
type RestReportHandler struct {
	reportService services.IReportService
	renderer      printing.Renderer
	archiver      IMonthlyArchiver // nil when archiving is disabled
	log           *logger.Logger
}

func NewRestReportHandler(reportService services.IReportService, renderer printing.Renderer, archiver IMonthlyArchiver, log *logger.Logger) *RestReportHandler {
	return &RestReportHandler{
		reportService: reportService,
		renderer:      renderer,
		archiver:      archiver,
		log:           log.Named("report_handler"),
	}
}

// Dashboard handles GET /api/bills/stats/dashboard
func (h *RestReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// MonthlySummary handles GET /api/bills/stats/monthly?month&year&order
func (h *RestReportHandler) MonthlySummary(c *gin.Context) {
	month, year, ok := monthYear(c)
	if !ok {
		return
	}
	order := models.SortOrder(c.DefaultQuery("order", string(models.SortDesc)))

	summary, err := h.reportService.MonthlySummary(c.Request.Context(), month, year, order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MonthlySummaryPDF handles GET /api/bills/stats/monthly/pdf?month&year.
// Bills are listed oldest first.
func (h *RestReportHandler) MonthlySummaryPDF(c *gin.Context) {
	month, year, ok := monthYear(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	summary, err := h.reportService.MonthlySummary(ctx, month, year, models.SortAsc)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := h.renderer.RenderMonthlySummary(ctx, summary)
	if err != nil {
		h.log.Errorw("failed to render monthly summary", "month", month, "year", year, "error", err)
		respondError(c, ierr.WithError(err).
			WithHint("Failed to generate PDF").
			Mark(ierr.ErrSystem))
		return
	}
	sendPDF(c, printing.MonthlySummaryFilename(year, month), pdf)
}

// ArchiveMonthlySummary handles POST /api/bills/stats/monthly/archive?month&year
func (h *RestReportHandler) ArchiveMonthlySummary(c *gin.Context) {
	if h.archiver == nil {
		respondError(c, ierr.NewError("pdf archive disabled").
			WithHint("PDF archive is not enabled").
			Mark(ierr.ErrNotFound))
		return
	}
	month, year, ok := monthYear(c)
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		respondError(c, ierr.NewErrorf("month %d out of range", month).
			WithHint("month must be between 1 and 12").
			Mark(ierr.ErrValidation))
		return
	}
	if err := h.archiver.ArchiveMonthlySummary(c.Request.Context(), month, year); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Archive scheduled"})
}

func monthYear(c *gin.Context) (month, year int, ok bool) {
	month, err := requiredQueryInt(c, "month")
	if err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	year, err = requiredQueryInt(c, "year")
	if err != nil {
		respondError(c, err)
		return 0, 0, false
	}
	return month, year, true
}
