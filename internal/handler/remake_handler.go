package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type remakeService interface {
	Create(ctx context.Context, applicantID int64, req dto.CreateRemakeRequest) (*models.Remake, error)
	Start(ctx context.Context, remakeID int64) (*models.Remake, error)
	Finish(ctx context.Context, remakeID int64) (*models.Remake, error)
	List(ctx context.Context, filter models.RemakeFilter) ([]models.Remake, error)
	Get(ctx context.Context, remakeID int64) (*models.Remake, error)
}

// RemakeHandler exposes the equipment repair request endpoints.
type RemakeHandler struct {
	remakes remakeService
}

// NewRemakeHandler constructs RemakeHandler.
func NewRemakeHandler(remakes remakeService) *RemakeHandler {
	return &RemakeHandler{remakes: remakes}
}

// Create godoc
// @Summary File a repair request
// @Tags Remakes
// @Accept json
// @Produce json
// @Param payload body dto.CreateRemakeRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /remakes [post]
func (h *RemakeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRemakeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	remake, err := h.remakes.Create(c.Request.Context(), claims.EmployeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, remake)
}

// Start godoc
// @Summary Take a repair request into work
// @Tags Remakes
// @Produce json
// @Param id path int true "Remake ID"
// @Success 200 {object} response.Envelope
// @Router /remakes/{id}/start [post]
func (h *RemakeHandler) Start(c *gin.Context) {
	h.advance(c, h.remakes.Start)
}

// Finish godoc
// @Summary Mark a repair request done
// @Tags Remakes
// @Produce json
// @Param id path int true "Remake ID"
// @Success 200 {object} response.Envelope
// @Router /remakes/{id}/finish [post]
func (h *RemakeHandler) Finish(c *gin.Context) {
	h.advance(c, h.remakes.Finish)
}

func (h *RemakeHandler) advance(c *gin.Context, op func(context.Context, int64) (*models.Remake, error)) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	remake, err := op(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, remake, nil)
}

// Get godoc
// @Summary Get a repair request
// @Tags Remakes
// @Produce json
// @Param id path int true "Remake ID"
// @Success 200 {object} response.Envelope
// @Router /remakes/{id} [get]
func (h *RemakeHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	remake, err := h.remakes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, remake, nil)
}

// List godoc
// @Summary List repair requests
// @Tags Remakes
// @Produce json
// @Param status query string false "Comma-separated statuses"
// @Param applicantId query int false "Filter by applicant"
// @Success 200 {object} response.Envelope
// @Router /remakes [get]
func (h *RemakeHandler) List(c *gin.Context) {
	var filter models.RemakeFilter
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, models.RemakeStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := c.Query("applicantId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ApplicantID = &id
		}
	}
	remakes, err := h.remakes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, remakes, nil)
}
