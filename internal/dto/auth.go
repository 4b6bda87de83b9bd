package dto

// ExchangeTokenRequest is sent by the chat gateway to trade its shared key
// plus a chat identity for a short-lived access token.
type ExchangeTokenRequest struct {
	TgID int64 `json:"tgId" validate:"required"`
}
