package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/internal/qr"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type batchService interface {
	Create(ctx context.Context, cutterID int64, req dto.CreateBatchRequest) (*models.Batch, error)
	Get(ctx context.Context, batchID int64) (*models.Batch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
	Take(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error)
	FinishSewing(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error)
	Review(ctx context.Context, controllerID, batchID int64, decision models.ReviewDecision) (*models.Batch, error)
	StartRework(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error)
	FinishRework(ctx context.Context, seamstressID, batchID int64) (*models.Batch, error)
	Label(ctx context.Context, batchID int64) ([]byte, error)
}

// BatchHandler exposes the batch lifecycle endpoints.
type BatchHandler struct {
	batches batchService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches batchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// Create godoc
// @Summary Register a cut batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateBatchRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), claims.EmployeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Get godoc
// @Summary Get a batch
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.batches.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param status query string false "Comma-separated statuses"
// @Param seamstressId query int false "Filter by seamstress"
// @Param cutterId query int false "Filter by cutter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	var filter models.BatchFilter
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Status = append(filter.Status, models.BatchStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := c.Query("seamstressId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.SeamstressID = &id
		}
	}
	if raw := c.Query("cutterId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CutterID = &id
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	batches, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// Take godoc
// @Summary Claim a batch for sewing
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/take [post]
func (h *BatchHandler) Take(c *gin.Context) {
	h.transition(c, h.batches.Take)
}

// FinishSewing godoc
// @Summary Mark sewing complete
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/finish [post]
func (h *BatchHandler) FinishSewing(c *gin.Context) {
	h.transition(c, h.batches.FinishSewing)
}

// StartRework godoc
// @Summary Start reworking a defective batch
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/rework/start [post]
func (h *BatchHandler) StartRework(c *gin.Context) {
	h.transition(c, h.batches.StartRework)
}

// FinishRework godoc
// @Summary Finish reworking a batch
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/rework/finish [post]
func (h *BatchHandler) FinishRework(c *gin.Context) {
	h.transition(c, h.batches.FinishRework)
}

func (h *BatchHandler) transition(c *gin.Context, op func(context.Context, int64, int64) (*models.Batch, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := op(c.Request.Context(), claims.EmployeeID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Review godoc
// @Summary Record the quality verdict on a batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param payload body dto.ReviewBatchRequest true "Verdict"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/review [post]
func (h *BatchHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewBatchRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.batches.Review(c.Request.Context(), claims.EmployeeID, id, req.Decision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Label godoc
// @Summary Render the batch label PDF
// @Tags Batches
// @Produce application/pdf
// @Param id path int true "Batch ID"
// @Success 200 {file} binary
// @Router /batches/{id}/label [get]
func (h *BatchHandler) Label(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	pdf, err := h.batches.Label(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="batch-`+strconv.FormatInt(id, 10)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Scan godoc
// @Summary Resolve a scanned QR payload to its batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body dto.ScanBatchRequest true "Decoded QR text"
// @Success 200 {object} response.Envelope
// @Router /batches/scan [post]
func (h *BatchHandler) Scan(c *gin.Context) {
	var req dto.ScanBatchRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := qr.ExtractBatchID(req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.batches.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}
