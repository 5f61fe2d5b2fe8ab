package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulmohar/billing/internal/api"
	"gulmohar/billing/internal/api/handlers"
	"gulmohar/billing/internal/billing"
	"gulmohar/billing/internal/clock"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/printing"
	"gulmohar/billing/internal/services"
	"gulmohar/billing/internal/testutil"
)

// fakePDF stands in for headless Chrome; it echoes a marker and the HTML
// length so responses are recognisable.
type fakePDF struct{}

func (fakePDF) HTMLToPDF(_ context.Context, html string) ([]byte, error) {
	return []byte(fmt.Sprintf("%%PDF-fake %d", len(html))), nil
}

type app struct {
	server *httptest.Server
	cfg    *config.Config
	clock  *clock.Fixed
	bills  *testutil.InMemoryBillStore
}

// newApp wires the full service graph on in-memory stores. The clock is
// pinned to the real current instant so issued JWTs stay valid.
func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	cfg := &config.Config{
		JwtSecret:                "integration-secret",
		JwtTTL:                   time.Hour,
		BusinessTimezone:         loc,
		DefaultTaxPercentage:     decimal.NewFromInt(18),
		InvoiceAllocationRetries: 4,
		BillsPageLimit:           20,
		AdminUsername:            "admin",
		AdminPassword:            "admin123",
		AdminEmail:               "admin@gulmoharresort.com",
		ResortName:               "Gulmohar Resort",
	}
	log := logger.NewNop()
	clk := clock.NewFixed(time.Now())

	bills := testutil.NewInMemoryBillStore()
	sequences := testutil.NewInMemorySequenceStore()
	users := testutil.NewInMemoryUserStore()

	userService := services.NewUserService(users, clk, cfg, log)
	created, err := userService.SeedAdmin(context.Background())
	require.NoError(t, err)
	require.True(t, created)

	allocator := services.NewInvoiceSequenceService(sequences, bills, loc, clk, log)
	billService := services.NewBillService(bills, allocator, nil, nil, clk, cfg, log)
	reportService := services.NewReportService(bills, nil, clk, loc, log)

	engine, err := printing.NewTemplateEngine(loc)
	require.NoError(t, err)
	renderer := printing.NewRenderer(engine, fakePDF{}, printing.Resort{Name: cfg.ResortName}, clk)

	router := api.SetupRouter(cfg, api.Handlers{
		Auth:   handlers.NewRestAuthHandler(userService),
		Bill:   handlers.NewRestBillHandler(billService, renderer, nil, nil, 0, loc, log),
		Report: handlers.NewRestReportHandler(reportService, renderer, nil, log),
	}, nil, log)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &app{server: srv, cfg: cfg, clock: clk, bills: bills}
}

func (a *app) call(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func (a *app) login(t *testing.T, username, password string) string {
	t.Helper()
	resp, body := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestBillLifecycle(t *testing.T) {
	a := newApp(t)
	loc := a.cfg.BusinessTimezone
	now := a.clock.Now()
	ym := billing.YearMonthOf(now, loc)

	resp, _ := a.call(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	adminToken := a.login(t, "admin", "admin123")

	// Admin registers a front desk account which then does the billing.
	resp, body := a.call(t, http.MethodPost, "/api/auth/register", adminToken, map[string]string{
		"username": "desk",
		"password": "desk123",
		"fullName": "Front Desk",
		"email":    "desk@gulmoharresort.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	deskToken := a.login(t, "desk", "desk123")

	checkIn := now.Add(-48 * time.Hour).In(loc).Format(time.RFC3339)
	checkOut := now.In(loc).Format(time.RFC3339)

	var invoices []string
	var firstID string
	for i, room := range []string{"101", "102"} {
		resp, body = a.call(t, http.MethodPost, "/api/bills", deskToken, map[string]any{
			"customerName": fmt.Sprintf("Guest %d", i+1),
			"roomNumber":   room,
			"checkIn":      checkIn,
			"checkOut":     checkOut,
			"roomCharges":  2000,
			"foodCharges":  500,
			"otherCharges": 0,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

		var bill map[string]any
		require.NoError(t, json.Unmarshal(body, &bill))
		assert.Equal(t, 2500.0, bill["subtotal"])
		assert.Equal(t, 450.0, bill["tax"])
		assert.Equal(t, 2950.0, bill["totalAmount"])
		assert.Equal(t, 2.0, bill["numberOfDays"])
		assert.Equal(t, "paid", bill["status"])
		invoices = append(invoices, bill["invoiceNumber"].(string))
		if i == 0 {
			firstID = bill["id"].(string)
		}
	}
	assert.Equal(t, []string{
		billing.FormatInvoiceNumber(ym, 1),
		billing.FormatInvoiceNumber(ym, 2),
	}, invoices)

	// Search by room
	resp, body = a.call(t, http.MethodGet, "/api/bills?roomNumber=102", deskToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page struct {
		Bills []struct {
			InvoiceNumber string `json:"invoiceNumber"`
		} `json:"bills"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, invoices[1], page.Bills[0].InvoiceNumber)

	resp, body = a.call(t, http.MethodGet, "/api/bills/"+firstID, deskToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = a.call(t, http.MethodGet, "/api/bills/"+firstID+"/pdf", deskToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.True(t, strings.HasPrefix(string(body), "%PDF-fake"))
	assert.Equal(t, "attachment; filename=invoice-"+invoices[0]+".pdf", resp.Header.Get("Content-Disposition"))

	resp, body = a.call(t, http.MethodPatch, "/api/bills/"+firstID+"/status", deskToken, map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Only the second bill is still paid.
	resp, body = a.call(t, http.MethodGet, "/api/bills/stats/dashboard", deskToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var stats map[string]any
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2950.0, stats["todayRevenue"])
	assert.Equal(t, 2950.0, stats["monthRevenue"])
	assert.Equal(t, 2.0, stats["totalBills"])
	assert.Equal(t, 2.0, stats["todayBills"])

	monthly := fmt.Sprintf("/api/bills/stats/monthly?month=%d&year=%d", int(ym.Month), ym.Year)
	resp, body = a.call(t, http.MethodGet, monthly, deskToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var summary map[string]any
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 2.0, summary["totalBills"])
	assert.Equal(t, 5900.0, summary["totalRevenue"])
	assert.Equal(t, 1.0, summary["paidCount"])
	assert.Equal(t, 1.0, summary["pendingCount"])

	resp, _ = a.call(t, http.MethodGet, strings.Replace(monthly, "monthly?", "monthly/pdf?", 1), deskToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	// Staff may not delete; admin may.
	resp, _ = a.call(t, http.MethodDelete, "/api/bills/"+firstID, deskToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = a.call(t, http.MethodDelete, "/api/bills/"+firstID, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 1, a.bills.Len())

	resp, _ = a.call(t, http.MethodGet, "/api/bills/"+firstID, deskToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Numbers are never reused after a delete.
	resp, body = a.call(t, http.MethodPost, "/api/bills", deskToken, map[string]any{
		"customerName": "Guest 3",
		"roomNumber":   "103",
		"checkIn":      checkIn,
		"checkOut":     checkOut,
		"roomCharges":  1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var third map[string]any
	require.NoError(t, json.Unmarshal(body, &third))
	assert.Equal(t, billing.FormatInvoiceNumber(ym, 3), third["invoiceNumber"])
}

func TestUnauthenticatedAccess(t *testing.T) {
	a := newApp(t)

	resp, _ := a.call(t, http.MethodGet, "/api/bills", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
