package request

type WalletAdjustRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,min=3,max=255"`
}

type WalletFreezeRequest struct {
	Frozen *bool `json:"frozen" validate:"required"`
}
