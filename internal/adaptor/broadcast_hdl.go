package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type BroadcastHandler struct {
	service usecase.BroadcastService
	log     *zap.Logger
}

func NewBroadcastHandler(service usecase.BroadcastService, log *zap.Logger) *BroadcastHandler {
	return &BroadcastHandler{
		service: service,
		log:     log.With(zap.String("handler", "broadcast")),
	}
}

// QueueBroadcast handles POST /api/admin/broadcasts. Messages are only
// queued here; the send-broadcasts job delivers them.
func (h *BroadcastHandler) QueueBroadcast(w http.ResponseWriter, r *http.Request) {
	staffID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.BroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.QueueBroadcast(r.Context(), staffID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "queue broadcast")
		return
	}

	utils.ResponseJSON(w, http.StatusAccepted, true, "Broadcast queued", result, nil)
}

// ListMessages handles GET /api/admin/broadcasts
func (h *BroadcastHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list messages")
		return
	}

	utils.ResponseSuccess(w, "success", messages)
}
