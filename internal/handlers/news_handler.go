package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/services/digest"
)

// NewsHandler serves cached news digests
type NewsHandler struct {
	orchestrator interfaces.Orchestrator
	logger       arbor.ILogger
}

func NewNewsHandler(orchestrator interfaces.Orchestrator, logger arbor.ILogger) *NewsHandler {
	return &NewsHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetNewsHandler returns the digest for every category, or for a single
// category via ?category=. Records are regenerated transparently when
// their freshness window has passed.
func (h *NewsHandler) GetNewsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	categories := digest.Categories()
	if requested := r.URL.Query().Get("category"); requested != "" {
		if !validCategory(requested) {
			WriteError(w, http.StatusBadRequest, "unknown category: "+requested)
			return
		}
		categories = []string{requested}
	}

	news := make(map[string][]models.NewsItem, len(categories))
	var updatedAt time.Time

	for _, category := range categories {
		record, err := h.orchestrator.Resolve(r.Context(), models.NewsKey(category), false)
		if err != nil {
			h.logger.Error().Err(err).Str("category", category).Msg("News resolve failed")
			WriteError(w, http.StatusInternalServerError, "failed to load news")
			return
		}

		news[category] = record.News
		if record.WrittenAt.After(updatedAt) {
			updatedAt = record.WrittenAt
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"news":       news,
		"updated_at": updatedAt,
	})
}

func validCategory(category string) bool {
	for _, known := range digest.Categories() {
		if category == known {
			return true
		}
	}
	return false
}
