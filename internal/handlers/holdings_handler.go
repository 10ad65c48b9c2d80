package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/services/advice"
)

// DefaultUserID is used when a holdings request carries no user_id
const DefaultUserID = "1"

// HoldingsHandler manages portfolio holdings
type HoldingsHandler struct {
	holdings interfaces.HoldingStorage
	market   interfaces.MarketDataSource
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewHoldingsHandler(holdings interfaces.HoldingStorage, market interfaces.MarketDataSource, logger arbor.ILogger) *HoldingsHandler {
	return &HoldingsHandler{
		holdings: holdings,
		market:   market,
		validate: validator.New(),
		logger:   logger,
	}
}

// HoldingsHandler routes /api/holdings: GET lists the user's holdings
// with current prices, POST creates one
func (h *HoldingsHandler) HoldingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHoldings(w, r)
	case http.MethodPost:
		h.createHolding(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HoldingsHandler) listHoldings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = DefaultUserID
	}

	holdings, err := h.holdings.GetHoldingsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Loading holdings failed")
		WriteError(w, http.StatusInternalServerError, "failed to load holdings")
		return
	}

	enriched := advice.Enrich(r.Context(), h.market, holdings, h.logger)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": enriched,
	})
}

type createHoldingRequest struct {
	UserID       string  `json:"user_id"`
	Symbol       string  `json:"symbol" validate:"required"`
	Shares       float64 `json:"shares" validate:"required,gt=0"`
	CostBasis    float64 `json:"cost_basis" validate:"required,gt=0"`
	PurchaseDate string  `json:"purchase_date"`
}

func (h *HoldingsHandler) createHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = DefaultUserID
	}

	holding := &models.Holding{
		UserID:       req.UserID,
		Symbol:       req.Symbol,
		Shares:       req.Shares,
		CostBasis:    req.CostBasis,
		PurchaseDate: req.PurchaseDate,
	}

	if err := h.holdings.SaveHolding(r.Context(), holding); err != nil {
		h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Saving holding failed")
		WriteError(w, http.StatusInternalServerError, "failed to save holding")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"holding": holding,
	})
}

// HoldingByIDHandler routes /api/holdings/{id}: PUT updates a holding,
// DELETE removes one
func (h *HoldingsHandler) HoldingByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/holdings/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "invalid holding id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateHolding(w, r, id)
	case http.MethodDelete:
		h.deleteHolding(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type updateHoldingRequest struct {
	Shares       float64 `json:"shares" validate:"required,gt=0"`
	CostBasis    float64 `json:"cost_basis" validate:"required,gt=0"`
	PurchaseDate string  `json:"purchase_date"`
}

func (h *HoldingsHandler) updateHolding(w http.ResponseWriter, r *http.Request, id string) {
	var req updateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	holding, err := h.holdings.GetHolding(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			WriteError(w, http.StatusNotFound, "holding not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Loading holding failed")
		WriteError(w, http.StatusInternalServerError, "failed to load holding")
		return
	}

	holding.Shares = req.Shares
	holding.CostBasis = req.CostBasis
	holding.PurchaseDate = req.PurchaseDate

	if err := h.holdings.SaveHolding(r.Context(), holding); err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("Updating holding failed")
		WriteError(w, http.StatusInternalServerError, "failed to update holding")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holding": holding,
	})
}

func (h *HoldingsHandler) deleteHolding(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.holdings.DeleteHolding(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrRecordNotFound) {
			WriteError(w, http.StatusNotFound, "holding not found")
			return
		}
		h.logger.Error().Err(err).Str("id", id).Msg("Deleting holding failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete holding")
		return
	}

	WriteSuccess(w, "holding deleted")
}
