package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
)

// SchedulerHandler exposes scheduled job status and manual triggers
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// GetJobsHandler returns the status of all scheduled jobs
func (h *SchedulerHandler) GetJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.GetAllJobStatuses(),
	})
}

// TriggerReportHandler runs the daily report job immediately
func (h *SchedulerHandler) TriggerReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := h.scheduler.TriggerJob("daily-report"); err != nil {
		h.logger.Warn().Err(err).Msg("Manual report trigger failed")
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "started",
		"message": "daily report generation triggered",
	})
}
