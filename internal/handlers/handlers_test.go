package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
)

type fakeOrchestrator struct {
	records map[string]*models.CachedRecord
	err     error
	forced  []string
}

func (f *fakeOrchestrator) Resolve(ctx context.Context, key models.CacheKey, force bool) (*models.CachedRecord, error) {
	if force {
		f.forced = append(f.forced, key.String())
	}
	if f.err != nil {
		return nil, f.err
	}
	if record, ok := f.records[key.String()]; ok {
		return record, nil
	}
	record := models.NewRecord(key, time.Now())
	record.News = []models.NewsItem{}
	record.Advice = []models.AdviceAction{}
	return record, nil
}

type fakeHoldingStore struct {
	holdings  map[string][]*models.Holding
	byID      map[string]*models.Holding
	saved     []*models.Holding
	deleted   []string
	deleteErr error
}

func (f *fakeHoldingStore) SaveHolding(ctx context.Context, h *models.Holding) error {
	if h.ID == "" {
		h.ID = "generated-id"
	}
	f.saved = append(f.saved, h)
	return nil
}

func (f *fakeHoldingStore) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	if h, ok := f.byID[id]; ok {
		return h, nil
	}
	return nil, interfaces.ErrRecordNotFound
}

func (f *fakeHoldingStore) GetHoldingsByUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	return f.holdings[userID], nil
}

func (f *fakeHoldingStore) DeleteHolding(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMarketSource struct {
	quotes map[string]*models.Quote
}

func (f *fakeMarketSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if quote, ok := f.quotes[symbol]; ok {
		return quote, nil
	}
	return nil, errors.New("quote unavailable")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestGetNews_AllCategories(t *testing.T) {
	orch := &fakeOrchestrator{records: map[string]*models.CachedRecord{}}
	for _, category := range []string{"international", "us_finance"} {
		key := models.NewsKey(category)
		record := models.NewRecord(key, time.Now())
		record.News = []models.NewsItem{{ID: category, Title: "headline"}}
		orch.records[key.String()] = record
	}

	handler := NewNewsHandler(orch, arbor.NewLogger())
	rec := httptest.NewRecorder()
	handler.GetNewsHandler(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	news := body["news"].(map[string]interface{})
	if len(news) != 2 {
		t.Errorf("got %d categories, want 2", len(news))
	}
}

func TestGetNews_UnknownCategoryRejected(t *testing.T) {
	handler := NewNewsHandler(&fakeOrchestrator{}, arbor.NewLogger())
	rec := httptest.NewRecorder()
	handler.GetNewsHandler(rec, httptest.NewRequest("GET", "/api/news?category=celebrity", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetNews_ResolveErrorReturns500(t *testing.T) {
	handler := NewNewsHandler(&fakeOrchestrator{err: errors.New("db closed")}, arbor.NewLogger())
	rec := httptest.NewRecorder()
	handler.GetNewsHandler(rec, httptest.NewRequest("GET", "/api/news", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetToday_ReportWithAdvice(t *testing.T) {
	loc := time.UTC
	day := time.Now().In(loc)

	reportKey := models.DailyReportKey(day)
	reportRecord := models.NewRecord(reportKey, time.Now())
	reportRecord.Report = &models.DailyReport{Date: reportKey.Period, MarketCommentEN: "up"}

	adviceKey := models.PersonalAdviceKey("7", day)
	adviceRecord := models.NewRecord(adviceKey, time.Now())
	adviceRecord.Advice = []models.AdviceAction{{Symbol: "AAPL", Action: models.ActionHold}}

	orch := &fakeOrchestrator{records: map[string]*models.CachedRecord{
		reportKey.String(): reportRecord,
		adviceKey.String(): adviceRecord,
	}}

	handler := NewReportHandler(orch, loc, arbor.NewLogger())
	rec := httptest.NewRecorder()
	handler.GetTodayHandler(rec, httptest.NewRequest("GET", "/api/reports/today?user_id=7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["report"] == nil {
		t.Error("response missing report")
	}
	advice := body["advice"].([]interface{})
	if len(advice) != 1 {
		t.Errorf("got %d advice actions, want 1", len(advice))
	}
}

func TestRegeneratePersonal_ForcesResolve(t *testing.T) {
	orch := &fakeOrchestrator{records: map[string]*models.CachedRecord{}}
	handler := NewReportHandler(orch, time.UTC, arbor.NewLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/reports/personal/regenerate", strings.NewReader(`{"user_id": "7"}`))
	handler.RegeneratePersonalHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(orch.forced) != 1 {
		t.Fatalf("forced %d resolves, want 1", len(orch.forced))
	}
	if !strings.HasPrefix(orch.forced[0], "personal_advice/7/") {
		t.Errorf("forced key = %q", orch.forced[0])
	}
}

func TestRegeneratePersonal_RequiresUserID(t *testing.T) {
	handler := NewReportHandler(&fakeOrchestrator{}, time.UTC, arbor.NewLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/reports/personal/regenerate", strings.NewReader(`{}`))
	handler.RegeneratePersonalHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHoldings_ListEnriched(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"1": {{ID: "a", UserID: "1", Symbol: "AAPL", Shares: 10, CostBasis: 150}},
	}}
	market := &fakeMarketSource{quotes: map[string]*models.Quote{
		"AAPL": {Symbol: "AAPL", Price: 180, PreviousClose: 178},
	}}
	handler := NewHoldingsHandler(store, market, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HoldingsHandler(rec, httptest.NewRequest("GET", "/api/holdings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	holdings := body["holdings"].([]interface{})
	if len(holdings) != 1 {
		t.Fatalf("got %d holdings", len(holdings))
	}
	first := holdings[0].(map[string]interface{})
	if first["current_price"].(float64) != 180 {
		t.Errorf("current_price = %v", first["current_price"])
	}
}

func TestHoldings_CreateValidates(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"user_id": "1", "symbol": "2330", "shares": 100, "cost_basis": 500}`, http.StatusCreated},
		{"missing symbol", `{"shares": 100, "cost_basis": 500}`, http.StatusBadRequest},
		{"zero shares", `{"symbol": "2330", "shares": 0, "cost_basis": 500}`, http.StatusBadRequest},
		{"negative cost", `{"symbol": "2330", "shares": 100, "cost_basis": -1}`, http.StatusBadRequest},
		{"garbage body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeHoldingStore{}
			handler := NewHoldingsHandler(store, &fakeMarketSource{}, arbor.NewLogger())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/holdings", strings.NewReader(tt.body))
			handler.HoldingsHandler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHoldings_DeleteByID(t *testing.T) {
	store := &fakeHoldingStore{}
	handler := NewHoldingsHandler(store, &fakeMarketSource{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HoldingByIDHandler(rec, httptest.NewRequest("DELETE", "/api/holdings/abc-123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "abc-123" {
		t.Errorf("deleted = %v", store.deleted)
	}
}

func TestHoldings_UpdateByID(t *testing.T) {
	store := &fakeHoldingStore{byID: map[string]*models.Holding{
		"abc-123": {ID: "abc-123", UserID: "1", Symbol: "2330.TW", Shares: 100, CostBasis: 500},
	}}
	handler := NewHoldingsHandler(store, &fakeMarketSource{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	body := `{"shares": 200, "cost_basis": 480, "purchase_date": "2026-01-05"}`
	req := httptest.NewRequest("PUT", "/api/holdings/abc-123", strings.NewReader(body))
	handler.HoldingByIDHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d holdings, want 1", len(store.saved))
	}
	updated := store.saved[0]
	if updated.ID != "abc-123" {
		t.Errorf("ID = %q, want abc-123", updated.ID)
	}
	if updated.Shares != 200 || updated.CostBasis != 480 {
		t.Errorf("shares = %v, cost_basis = %v", updated.Shares, updated.CostBasis)
	}
	if updated.PurchaseDate != "2026-01-05" {
		t.Errorf("purchase_date = %q", updated.PurchaseDate)
	}
}

func TestHoldings_UpdateMissingReturns404(t *testing.T) {
	handler := NewHoldingsHandler(&fakeHoldingStore{}, &fakeMarketSource{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	body := `{"shares": 200, "cost_basis": 480}`
	req := httptest.NewRequest("PUT", "/api/holdings/missing", strings.NewReader(body))
	handler.HoldingByIDHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHoldings_UpdateValidates(t *testing.T) {
	store := &fakeHoldingStore{byID: map[string]*models.Holding{
		"abc-123": {ID: "abc-123", UserID: "1", Symbol: "2330.TW", Shares: 100, CostBasis: 500},
	}}
	handler := NewHoldingsHandler(store, &fakeMarketSource{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/holdings/abc-123", strings.NewReader(`{"shares": 0, "cost_basis": 480}`))
	handler.HoldingByIDHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(store.saved) != 0 {
		t.Errorf("saved %d holdings, want 0", len(store.saved))
	}
}

func TestHoldings_DeleteMissingReturns404(t *testing.T) {
	store := &fakeHoldingStore{deleteErr: interfaces.ErrRecordNotFound}
	handler := NewHoldingsHandler(store, &fakeMarketSource{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HoldingByIDHandler(rec, httptest.NewRequest("DELETE", "/api/holdings/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler()

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["service"] != "advisor" {
		t.Errorf("service field = %v", body["service"])
	}
}
