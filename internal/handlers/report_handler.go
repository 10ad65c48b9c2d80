package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
)

// ReportHandler serves the daily market report and per-user advice
type ReportHandler struct {
	orchestrator interfaces.Orchestrator
	location     *time.Location
	logger       arbor.ILogger
}

func NewReportHandler(orchestrator interfaces.Orchestrator, location *time.Location, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		orchestrator: orchestrator,
		location:     location,
		logger:       logger,
	}
}

// today returns the current date in the report timezone. A report
// generated at 23:50 belongs to that calendar day, not UTC's.
func (h *ReportHandler) today() time.Time {
	return time.Now().In(h.location)
}

// GetTodayHandler returns today's market report, plus personal advice
// when ?user_id= is given. Both are generated on first access and cached
// for the rest of the day.
func (h *ReportHandler) GetTodayHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	day := h.today()

	reportRecord, err := h.orchestrator.Resolve(r.Context(), models.DailyReportKey(day), false)
	if err != nil {
		h.logger.Error().Err(err).Msg("Daily report resolve failed")
		WriteError(w, http.StatusInternalServerError, "failed to load daily report")
		return
	}

	response := map[string]interface{}{
		"report":       reportRecord.Report,
		"generated_at": reportRecord.WrittenAt,
	}

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		adviceRecord, err := h.orchestrator.Resolve(r.Context(), models.PersonalAdviceKey(userID, day), false)
		if err != nil {
			// Advice is an add-on to the report; serve the report anyway
			h.logger.Warn().Err(err).Str("user_id", userID).Msg("Advice resolve failed")
		} else {
			response["advice"] = adviceRecord.Advice
		}
	}

	WriteJSON(w, http.StatusOK, response)
}

type regenerateRequest struct {
	UserID string `json:"user_id"`
}

// RegeneratePersonalHandler discards today's cached advice for the user
// and generates it fresh
func (h *ReportHandler) RegeneratePersonalHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	record, err := h.orchestrator.Resolve(r.Context(), models.PersonalAdviceKey(req.UserID, h.today()), true)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Advice regeneration failed")
		WriteError(w, http.StatusInternalServerError, "failed to regenerate advice")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advice":       record.Advice,
		"generated_at": record.WrittenAt,
	})
}
