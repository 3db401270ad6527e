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
	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/storage"
)

type MockAssignmentProvider struct {
	mock.Mock
}

func (m *MockAssignmentProvider) GetAssignment(ctx context.Context, companyID, id int64) (*storage.Assignment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a, ok := args.Get(0).(*storage.Assignment)
	if !ok {
		return nil, fmt.Errorf("expected *storage.Assignment, got %T", args.Get(0))
	}
	return a, args.Error(1)
}

func (m *MockAssignmentProvider) ListAssignments(ctx context.Context, f storage.AssignmentFilter) (*storage.AssignmentList, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	list, ok := args.Get(0).(*storage.AssignmentList)
	if !ok {
		return nil, fmt.Errorf("expected *storage.AssignmentList, got %T", args.Get(0))
	}
	return list, args.Error(1)
}

func newRouter(provider AssignmentProvider) http.Handler {
	router := chi.NewRouter()
	router.Use(actorauth.Middleware)
	router.Get("/api/assignments", ListAssignments(slog.Default(), provider))
	router.Get("/api/assignments/{id}", GetAssignment(slog.Default(), provider))
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

func TestListAssignments_Filters(t *testing.T) {
	mockProvider := new(MockAssignmentProvider)

	list := &storage.AssignmentList{
		Items: []*storage.Assignment{{ID: 1, Status: storage.AssignmentInProgress}},
		Total: 1,
	}

	mockProvider.On("ListAssignments", mock.Anything,
		mock.MatchedBy(func(f storage.AssignmentFilter) bool {
			return f.CompanyID == 1 &&
				f.WorkerID == 42 &&
				f.Status == storage.AssignmentInProgress &&
				f.DateFrom != nil && f.DateFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		})).Return(list, nil)

	rr := doGet(newRouter(mockProvider), "/api/assignments?workerId=42&status=in_progress&dateFrom=2025-01-01")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.ListResponse
	assert.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Total)

	mockProvider.AssertExpectations(t)
}

func TestListAssignments_BadWorkerID(t *testing.T) {
	mockProvider := new(MockAssignmentProvider)

	rr := doGet(newRouter(mockProvider), "/api/assignments?workerId=abc")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockProvider.AssertNotCalled(t, "ListAssignments")
}

func TestGetAssignment_Success(t *testing.T) {
	mockProvider := new(MockAssignmentProvider)

	a := &storage.Assignment{ID: 5, AssignmentNumber: "JOB00005", Status: storage.AssignmentAssigned}
	mockProvider.On("GetAssignment", mock.Anything, int64(1), int64(5)).Return(a, nil)

	rr := doGet(newRouter(mockProvider), "/api/assignments/5")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"assignmentNumber":"JOB00005"`)
	mockProvider.AssertExpectations(t)
}

func TestGetAssignment_NotFound(t *testing.T) {
	mockProvider := new(MockAssignmentProvider)

	mockProvider.On("GetAssignment", mock.Anything, int64(1), int64(9)).
		Return(nil, apperror.Newf(apperror.NotFound, "assignment %d not found", 9))

	rr := doGet(newRouter(mockProvider), "/api/assignments/9")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange(map[string][]string{
		"dateFrom": {"2025-01-01"},
		"dateTo":   {"2025-01-31"},
	})
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	// dateTo включает весь день
	assert.True(t, to.After(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)))

	from, to, err = ParseDateRange(map[string][]string{})
	assert.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = ParseDateRange(map[string][]string{"dateTo": {"31.01.2025"}})
	assert.Error(t, err)
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))
}
