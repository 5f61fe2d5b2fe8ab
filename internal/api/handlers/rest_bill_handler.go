package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/printing"
	"gulmohar/billing/internal/services"
	"gulmohar/billing/internal/storage"
)

// RestBillHandler handles REST requests for bills.
type RestBillHandler struct {
	billService services.IBillService
	renderer    printing.Renderer
	// archive and archiver are nil when PDF archiving is disabled.
	archive  storage.IS3Storage
	archiver services.IBillArchiver
	urlTTL   time.Duration
	loc      *time.Location
	log      *logger.Logger
}

// NewRestBillHandler creates a new RestBillHandler.
func NewRestBillHandler(
	billService services.IBillService,
	renderer printing.Renderer,
	archive storage.IS3Storage,
	archiver services.IBillArchiver,
	urlTTL time.Duration,
	loc *time.Location,
	log *logger.Logger,
) *RestBillHandler {
	return &RestBillHandler{
		billService: billService,
		renderer:    renderer,
		archive:     archive,
		archiver:    archiver,
		urlTTL:      urlTTL,
		loc:         loc,
		log:         log.Named("bill_handler"),
	}
}

// CreateBillRequest is the POST /api/bills body. Times may be RFC3339 or
// the zone-less forms sent by HTML date inputs.
type CreateBillRequest struct {
	CustomerName  string               `json:"customerName"`
	RoomNumber    string               `json:"roomNumber"`
	CheckIn       string               `json:"checkIn"`
	CheckOut      string               `json:"checkOut"`
	RoomCharges   *decimal.Decimal     `json:"roomCharges"`
	FoodCharges   *decimal.Decimal     `json:"foodCharges"`
	OtherCharges  *decimal.Decimal     `json:"otherCharges"`
	TaxPercentage *decimal.Decimal     `json:"taxPercentage"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Status        models.BillStatus    `json:"status"`
	Notes         string               `json:"notes"`
}

// UpdateBillStatusRequest is the PATCH /api/bills/:id/status body.
type UpdateBillStatusRequest struct {
	Status models.BillStatus `json:"status"`
}

// ArchiveURLResponse points at an archived invoice PDF.
type ArchiveURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

// ListBills handles GET /api/bills
func (h *RestBillHandler) ListBills(c *gin.Context) {
	filter := models.BillFilter{
		Search:     c.Query("search"),
		Status:     models.BillStatus(c.Query("status")),
		RoomNumber: c.Query("roomNumber"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 0),
	}

	start, _, err := optionalTime("startDate", c.Query("startDate"), h.loc)
	if err != nil {
		respondError(c, err)
		return
	}
	if !start.IsZero() {
		filter.StartDate = &start
	}

	end, dateOnly, err := optionalTime("endDate", c.Query("endDate"), h.loc)
	if err != nil {
		respondError(c, err)
		return
	}
	if !end.IsZero() {
		// a bare date means the whole of that day
		if dateOnly {
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.EndDate = &end
	}

	page, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateBill handles POST /api/bills
func (h *RestBillHandler) CreateBill(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation))
		return
	}

	checkIn, _, err := optionalTime("checkIn", req.CheckIn, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, _, err := optionalTime("checkOut", req.CheckOut, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), services.CreateBillInput{
		CustomerName:  req.CustomerName,
		RoomNumber:    req.RoomNumber,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		RoomCharges:   req.RoomCharges,
		FoodCharges:   req.FoodCharges,
		OtherCharges:  req.OtherCharges,
		TaxPercentage: req.TaxPercentage,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
		Notes:         req.Notes,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// GetBill handles GET /api/bills/:id
func (h *RestBillHandler) GetBill(c *gin.Context) {
	id, ok := parseIDParam(c, "Bill")
	if !ok {
		return
	}
	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// UpdateBillStatus handles PATCH /api/bills/:id/status
func (h *RestBillHandler) UpdateBillStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "Bill")
	if !ok {
		return
	}
	var req UpdateBillStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation))
		return
	}

	bill, err := h.billService.UpdateBillStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// DeleteBill handles DELETE /api/bills/:id (admin only)
func (h *RestBillHandler) DeleteBill(c *gin.Context) {
	id, ok := parseIDParam(c, "Bill")
	if !ok {
		return
	}
	if err := h.billService.DeleteBill(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill removed"})
}

// GetBillPDF handles GET /api/bills/:id/pdf
func (h *RestBillHandler) GetBillPDF(c *gin.Context) {
	id, ok := parseIDParam(c, "Bill")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	bill, err := h.billService.GetBill(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := h.renderer.RenderBill(ctx, bill)
	if err != nil {
		h.log.Errorw("failed to render invoice", "invoice_number", bill.InvoiceNumber, "error", err)
		respondError(c, ierr.WithError(err).
			WithHint("Failed to generate PDF").
			Mark(ierr.ErrSystem))
		return
	}
	sendPDF(c, printing.InvoiceFilename(bill.InvoiceNumber), pdf)
}

// GetBillArchiveURL handles GET /api/bills/:id/pdf/archive. When the PDF is
// not archived yet an archive task is scheduled and 404 returned.
func (h *RestBillHandler) GetBillArchiveURL(c *gin.Context) {
	if h.archive == nil {
		respondError(c, ierr.NewError("pdf archive disabled").
			WithHint("PDF archive is not enabled").
			Mark(ierr.ErrNotFound))
		return
	}
	id, ok := parseIDParam(c, "Bill")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	bill, err := h.billService.GetBill(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	key := storage.BillKey(bill.InvoiceNumber)
	exists, err := h.archive.Exists(ctx, key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !exists {
		if h.archiver != nil {
			if err := h.archiver.ArchiveBill(ctx, bill.ID); err != nil {
				h.log.Warnw("failed to schedule bill archive", "bill_id", bill.ID.String(), "error", err)
			}
		}
		respondError(c, ierr.NewErrorf("%s not archived", key).
			WithHint("Archived PDF is not available yet").
			Mark(ierr.ErrNotFound))
		return
	}

	url, err := h.archive.PresignedGetURL(ctx, key, printing.InvoiceFilename(bill.InvoiceNumber))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ArchiveURLResponse{URL: url, ExpiresIn: int64(h.urlTTL / time.Second)})
}

func sendPDF(c *gin.Context, filename string, pdf []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
