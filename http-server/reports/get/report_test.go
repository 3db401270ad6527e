package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"jobwork-backend/internal/api"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/service/report"
)

type MockReportProvider struct {
	mock.Mock
}

func (m *MockReportProvider) MaterialTrackingReport(ctx context.Context, companyID, workerID int64, dateFrom, dateTo *time.Time) ([]report.Row, error) {
	args := m.Called(ctx, companyID, workerID, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	rows, ok := args.Get(0).([]report.Row)
	if !ok {
		return nil, fmt.Errorf("expected []report.Row, got %T", args.Get(0))
	}
	return rows, args.Error(1)
}

func newRouter(reports ReportProvider) http.Handler {
	router := chi.NewRouter()
	router.Use(actorauth.Middleware)
	router.Get("/api/workers/{id}/material-report", MaterialReport(slog.Default(), reports))
	return router
}

func doGet(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Actor-ID", "7")
	req.Header.Set("X-Company-ID", "1")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMaterialReport_Success(t *testing.T) {
	mockReports := new(MockReportProvider)

	rows := []report.Row{
		{ItemID: 1, ItemName: "Fabric", Unit: "m", QuantityGiven: 150, QuantityRemaining: 75, TotalValue: 1500},
		{ItemID: 2, ItemName: "Thread", Unit: "pcs", QuantityGiven: 10, QuantityRemaining: 8},
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mockReports.On("MaterialTrackingReport", mock.Anything, int64(1), int64(42), &from, (*time.Time)(nil)).
		Return(rows, nil)

	rr := doGet(newRouter(mockReports), "/api/workers/42/material-report?dateFrom=2025-01-01")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.ListResponse
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Total)

	mockReports.AssertExpectations(t)
}

func TestMaterialReport_BadDate(t *testing.T) {
	mockReports := new(MockReportProvider)

	rr := doGet(newRouter(mockReports), "/api/workers/42/material-report?dateFrom=01-01-2025")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "dateFrom")
	mockReports.AssertNotCalled(t, "MaterialTrackingReport")
}

func TestMaterialReport_BadWorkerID(t *testing.T) {
	mockReports := new(MockReportProvider)

	rr := doGet(newRouter(mockReports), "/api/workers/abc/material-report")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockReports.AssertNotCalled(t, "MaterialTrackingReport")
}
