package dto

// CreateRemakeRequest payload for opening an equipment repair ticket.
type CreateRemakeRequest struct {
	EquipmentNm string `json:"equipmentNm" validate:"required"`
	Description string `json:"description" validate:"required"`
}
