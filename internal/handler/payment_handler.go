package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type paymentService interface {
	Create(ctx context.Context, req dto.CreatePaymentRequest) (*models.Payment, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.Payment, error)
}

// PaymentHandler exposes the compensation ledger endpoints.
type PaymentHandler struct {
	payments paymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create godoc
// @Summary Record a payout or fine
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// ListByEmployee godoc
// @Summary List one employee's payments
// @Tags Payments
// @Produce json
// @Param id path int true "Employee chat ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/payments [get]
func (h *PaymentHandler) ListByEmployee(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	payments, err := h.payments.ListByEmployee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	response.JSON(c, http.StatusOK, payments, nil, map[string]interface{}{"total": total})
}
