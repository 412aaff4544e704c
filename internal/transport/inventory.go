package transport

type StockAdjustRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
}
