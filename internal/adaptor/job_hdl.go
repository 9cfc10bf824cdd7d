package adaptor

import (
	"net/http"

	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type JobHandler struct {
	service usecase.JobService
	log     *zap.Logger
}

func NewJobHandler(service usecase.JobService, log *zap.Logger) *JobHandler {
	return &JobHandler{
		service: service,
		log:     log.With(zap.String("handler", "job")),
	}
}

// Run handles POST /api/jobs/{name}. The body is the bare run summary so
// schedulers can read the counters without unwrapping.
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Run(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleServiceError(w, h.log, err, "run job")
		return
	}

	utils.WriteJSON(w, http.StatusOK, summary)
}
