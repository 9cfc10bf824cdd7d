package request

type BroadcastRequest struct {
	Message string `json:"message" validate:"required,min=1,max=1000"`
}
