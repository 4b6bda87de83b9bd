package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type editHandler interface {
	HandleEdit(ctx context.Context, edit dto.SheetEditNotification) error
}

type resyncer interface {
	Reconcile(ctx context.Context, tables []string) (dto.ResyncReport, error)
}

// SheetsHandler receives edit notifications from the spreadsheet script and
// serves the manager-triggered resync.
type SheetsHandler struct {
	puller     editHandler
	reconciler resyncer
}

// NewSheetsHandler constructs SheetsHandler.
func NewSheetsHandler(puller editHandler, reconciler resyncer) *SheetsHandler {
	return &SheetsHandler{puller: puller, reconciler: reconciler}
}

// Edit godoc
// @Summary Apply one spreadsheet edit notification
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-Gateway-Key header string true "Shared gateway key"
// @Param payload body dto.SheetEditNotification true "Edit notification"
// @Success 200 {object} response.Envelope
// @Router /sheets/edits [post]
func (h *SheetsHandler) Edit(c *gin.Context) {
	var edit dto.SheetEditNotification
	if err := bindJSON(c, &edit); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.puller.HandleEdit(c.Request.Context(), edit); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "applied"}, nil)
}

// Resync godoc
// @Summary Re-project store tables onto the spreadsheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Param payload body dto.ResyncRequest true "Tables to resync (empty = all)"
// @Success 200 {object} response.Envelope
// @Router /sheets/resync [post]
func (h *SheetsHandler) Resync(c *gin.Context) {
	var req dto.ResyncRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reconciler.Reconcile(c.Request.Context(), req.Tables)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
