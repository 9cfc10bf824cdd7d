package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireJob exposes the maintenance jobs to an external scheduler.
func wireJob(r chi.Router, jobHandler *adaptor.JobHandler, config *utils.Config, log *zap.Logger) {
	r.With(middleware.CronAuth(config.Cron, log)).Post("/api/jobs/{name}", jobHandler.Run)
}
