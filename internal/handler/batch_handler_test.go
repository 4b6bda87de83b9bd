package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/middleware"
	"github.com/atelier-ops/workshop-api/internal/models"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

type batchServiceMock struct {
	batch        *models.Batch
	err          error
	takeCalled   bool
	lastActorID  int64
	lastBatchID  int64
	lastDecision models.ReviewDecision
}

func (m *batchServiceMock) Create(_ context.Context, cutterID int64, _ dto.CreateBatchRequest) (*models.Batch, error) {
	m.lastActorID = cutterID
	return m.batch, m.err
}

func (m *batchServiceMock) Get(_ context.Context, batchID int64) (*models.Batch, error) {
	m.lastBatchID = batchID
	return m.batch, m.err
}

func (m *batchServiceMock) List(_ context.Context, _ models.BatchFilter) ([]models.Batch, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Batch{*m.batch}, nil
}

func (m *batchServiceMock) Take(_ context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	m.takeCalled = true
	m.lastActorID = seamstressID
	m.lastBatchID = batchID
	return m.batch, m.err
}

func (m *batchServiceMock) FinishSewing(_ context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	m.lastActorID = seamstressID
	m.lastBatchID = batchID
	return m.batch, m.err
}

func (m *batchServiceMock) Review(_ context.Context, controllerID, batchID int64, decision models.ReviewDecision) (*models.Batch, error) {
	m.lastActorID = controllerID
	m.lastBatchID = batchID
	m.lastDecision = decision
	return m.batch, m.err
}

func (m *batchServiceMock) StartRework(_ context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	return m.batch, m.err
}

func (m *batchServiceMock) FinishRework(_ context.Context, seamstressID, batchID int64) (*models.Batch, error) {
	return m.batch, m.err
}

func (m *batchServiceMock) Label(_ context.Context, batchID int64) ([]byte, error) {
	m.lastBatchID = batchID
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.4"), nil
}

func testContext(t *testing.T, method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func TestBatchHandlerTakeUsesClaimsIdentity(t *testing.T) {
	mockSvc := &batchServiceMock{batch: &models.Batch{BatchID: 12, Status: models.BatchSewing}}
	h := NewBatchHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/batches/12/take", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{EmployeeID: 77, Role: models.RoleSeamstress})

	h.Take(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.takeCalled)
	assert.Equal(t, int64(77), mockSvc.lastActorID)
	assert.Equal(t, int64(12), mockSvc.lastBatchID)
}

func TestBatchHandlerTakeWithoutClaims(t *testing.T) {
	h := NewBatchHandler(&batchServiceMock{})
	c, w := testContext(t, http.MethodPost, "/batches/12/take", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}

	h.Take(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBatchHandlerReviewInvalidDecision(t *testing.T) {
	h := NewBatchHandler(&batchServiceMock{})
	c, w := testContext(t, http.MethodPost, "/batches/12/review", `{"decision":"MAYBE"}`)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{EmployeeID: 5, Role: models.RoleController})

	h.Review(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchHandlerReviewPassesDecision(t *testing.T) {
	mockSvc := &batchServiceMock{batch: &models.Batch{BatchID: 12, Status: models.BatchDone}}
	h := NewBatchHandler(mockSvc)
	c, w := testContext(t, http.MethodPost, "/batches/12/review", `{"decision":"APPROVE"}`)
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{EmployeeID: 5, Role: models.RoleController})

	h.Review(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DecisionApprove, mockSvc.lastDecision)
	assert.Equal(t, int64(5), mockSvc.lastActorID)
}

func TestBatchHandlerScanResolvesBatch(t *testing.T) {
	mockSvc := &batchServiceMock{batch: &models.Batch{BatchID: 42}}
	h := NewBatchHandler(mockSvc)
	c, w := testContext(t, http.MethodPost, "/batches/scan", `{"payload":"Проект: demo\nID: 42"}`)

	h.Scan(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), mockSvc.lastBatchID)
}

func TestBatchHandlerScanGarbledPayload(t *testing.T) {
	h := NewBatchHandler(&batchServiceMock{})
	c, w := testContext(t, http.MethodPost, "/batches/scan", `{"payload":"no id here"}`)

	h.Scan(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchHandlerLabelServesPDF(t *testing.T) {
	h := NewBatchHandler(&batchServiceMock{})
	c, w := testContext(t, http.MethodGet, "/batches/12/label", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}

	h.Label(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "batch-12.pdf")
}

func TestBatchHandlerTakeServiceError(t *testing.T) {
	mockSvc := &batchServiceMock{err: appErrors.ErrAlreadyTaken}
	h := NewBatchHandler(mockSvc)
	c, w := testContext(t, http.MethodPost, "/batches/12/take", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{EmployeeID: 77, Role: models.RoleSeamstress})

	h.Take(c)
	require.Equal(t, appErrors.ErrAlreadyTaken.Status, w.Code)
}
