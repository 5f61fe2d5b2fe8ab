package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gulmohar/billing/internal/api"
	"gulmohar/billing/internal/api/handlers"
	"gulmohar/billing/internal/auth"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/logger"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/utils"
)

const testSecret = "handler-test-secret"

var ist = time.FixedZone("IST", 5*3600+1800)

type testServer struct {
	router   *gin.Engine
	bills    *MockBillService
	reports  *MockReportService
	users    *MockUserService
	renderer *MockRenderer
	storage  *MockStorage
	archiver *MockArchiver
}

// newTestServer mounts every handler on the real router. withArchive wires
// the S3 archive mocks; without it archiving behaves as disabled.
func newTestServer(withArchive bool) *testServer {
	gin.SetMode(gin.TestMode)
	s := &testServer{
		bills:    new(MockBillService),
		reports:  new(MockReportService),
		users:    new(MockUserService),
		renderer: new(MockRenderer),
		storage:  new(MockStorage),
		archiver: new(MockArchiver),
	}
	log := logger.NewNop()
	cfg := &config.Config{JwtSecret: testSecret}

	h := api.Handlers{Auth: handlers.NewRestAuthHandler(s.users)}
	if withArchive {
		h.Bill = handlers.NewRestBillHandler(s.bills, s.renderer, s.storage, s.archiver, 15*time.Minute, ist, log)
		h.Report = handlers.NewRestReportHandler(s.reports, s.renderer, s.archiver, log)
	} else {
		h.Bill = handlers.NewRestBillHandler(s.bills, s.renderer, nil, nil, 0, ist, log)
		h.Report = handlers.NewRestReportHandler(s.reports, s.renderer, nil, log)
	}
	s.router = api.SetupRouter(cfg, h, nil, log)
	return s
}

type caller struct {
	id    utils.SixID
	token string
}

func newCaller(t *testing.T, role models.Role) caller {
	t.Helper()
	u := &models.User{Username: "desk", Role: role, IsActive: true}
	u.ID = utils.NewSixID()
	token, err := auth.GenerateJWT(u, testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return caller{id: u.ID, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, who *caller) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		req.Header.Set("Authorization", "Bearer "+who.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
