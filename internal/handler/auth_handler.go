package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/middleware"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type tokenExchanger interface {
	ExchangeToken(ctx context.Context, presentedKey string, tgID int64) (*models.TokenPair, error)
}

// AuthHandler exposes the gateway token exchange.
type AuthHandler struct {
	auth tokenExchanger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth tokenExchanger) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Exchange godoc
// @Summary Exchange the gateway key and a chat identity for an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Gateway-Key header string true "Shared gateway key"
// @Param payload body dto.ExchangeTokenRequest true "Chat identity"
// @Success 200 {object} response.Envelope
// @Router /auth/token [post]
func (h *AuthHandler) Exchange(c *gin.Context) {
	var req dto.ExchangeTokenRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	pair, err := h.auth.ExchangeToken(c.Request.Context(), c.GetHeader(middleware.GatewayKeyHeader), req.TgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pair, nil)
}
