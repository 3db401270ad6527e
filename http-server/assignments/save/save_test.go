package save

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"jobwork-backend/internal/apperror"
	"jobwork-backend/internal/middleware/actorauth"
	"jobwork-backend/internal/storage"
)

type MockAssignmentCreator struct {
	mock.Mock
}

func (m *MockAssignmentCreator) CreateAssignment(ctx context.Context, companyID, actorID int64, req storage.CreateAssignment) (*storage.Assignment, error) {
	args := m.Called(ctx, companyID, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a, ok := args.Get(0).(*storage.Assignment)
	if !ok {
		return nil, fmt.Errorf("expected *storage.Assignment, got %T", args.Get(0))
	}
	return a, args.Error(1)
}

func doPost(creator AssignmentCreator, body string) *httptest.ResponseRecorder {
	handler := actorauth.Middleware(SaveAssignment(slog.Default(), creator))

	req := httptest.NewRequest(http.MethodPost, "/api/assignments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "7")
	req.Header.Set("X-Company-ID", "1")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestSaveAssignment_Success(t *testing.T) {
	mockCreator := new(MockAssignmentCreator)

	created := &storage.Assignment{
		ID:               5,
		WorkerID:         42,
		WorkerName:       "Иванов И.И.",
		WorkerCode:       "WRK0042",
		AssignmentNumber: "JOB00001",
		Status:           storage.AssignmentAssigned,
		Materials: []storage.MaterialEntry{
			{ItemID: 11, ItemName: "Fabric", Unit: "m", QuantityGiven: 100, QuantityRemaining: 100},
		},
		PaymentStatus: storage.PaymentPending,
	}

	mockCreator.On("CreateAssignment", mock.Anything, int64(1), int64(7),
		mock.MatchedBy(func(req storage.CreateAssignment) bool {
			return req.WorkerID == 42 && req.JobType == "stitching" && len(req.Materials) == 1
		})).Return(created, nil)

	rr := doPost(mockCreator, `{
		"workerId": 42,
		"jobType": "stitching",
		"materials": [{"itemId":11,"itemName":"Fabric","unit":"m","quantityGiven":100}]
	}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Assignment created successfully")
	assert.Contains(t, rr.Body.String(), `"assignmentNumber":"JOB00001"`)
	assert.Contains(t, rr.Body.String(), `"workerName":"Иванов И.И."`)
	mockCreator.AssertExpectations(t)
}

func TestSaveAssignment_MissingWorkerID(t *testing.T) {
	mockCreator := new(MockAssignmentCreator)

	rr := doPost(mockCreator, `{"jobType":"stitching"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockCreator.AssertNotCalled(t, "CreateAssignment")
}

func TestSaveAssignment_NegativeMaterialQuantity(t *testing.T) {
	mockCreator := new(MockAssignmentCreator)

	rr := doPost(mockCreator, `{
		"workerId": 42,
		"jobType": "stitching",
		"materials": [{"itemId":11,"itemName":"Fabric","unit":"m","quantityGiven":-1}]
	}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	mockCreator.AssertNotCalled(t, "CreateAssignment")
}

func TestSaveAssignment_WorkerNotFound(t *testing.T) {
	mockCreator := new(MockAssignmentCreator)

	mockCreator.On("CreateAssignment", mock.Anything, int64(1), int64(7), mock.Anything).
		Return(nil, apperror.Newf(apperror.NotFound, "worker %d not found", 99))

	rr := doPost(mockCreator, `{"workerId":99,"jobType":"stitching"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
