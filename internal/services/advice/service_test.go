package advice

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/models"
)

type fakeHoldingStore struct {
	holdings map[string][]*models.Holding
	err      error
}

func (f *fakeHoldingStore) SaveHolding(ctx context.Context, h *models.Holding) error { return nil }
func (f *fakeHoldingStore) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeHoldingStore) DeleteHolding(ctx context.Context, id string) error { return nil }
func (f *fakeHoldingStore) GetHoldingsByUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.holdings[userID], nil
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

type fakeGenerator struct {
	output  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.output, f.err
}

func adviceKey(userID string) models.CacheKey {
	return models.PersonalAdviceKey(userID, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
}

func TestGenerate_NoHoldingsReturnsEmptyAdvice(t *testing.T) {
	store := &fakeHoldingStore{}
	generator := &fakeGenerator{}
	service := NewService(store, &fakeMarketSource{}, generator, arbor.NewLogger())

	record, err := service.Generate(context.Background(), adviceKey("7"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if generator.calls != 0 {
		t.Errorf("generator called %d times for a user with no holdings", generator.calls)
	}
	if record.Advice == nil || len(record.Advice) != 0 {
		t.Errorf("Advice = %v, want empty non-nil list", record.Advice)
	}
}

func TestGenerate_EnrichesHoldingsIntoPrompt(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"7": {
			{ID: "a", UserID: "7", Symbol: "2330.TW", Shares: 100, CostBasis: 500},
			{ID: "b", UserID: "7", Symbol: "AAPL", Shares: 10, CostBasis: 150},
		},
	}}
	source := &fakeMarketSource{quotes: map[string]*models.Quote{
		"2330.TW": {Symbol: "2330.TW", Price: 600, PreviousClose: 590},
		"AAPL":    {Symbol: "AAPL", Price: 180, PreviousClose: 178},
	}}
	generator := &fakeGenerator{
		output: `[{"symbol": "2330.TW", "action": "HOLD", "reason_zh": "獲利中", "risk_level": "LOW"}, {"symbol": "AAPL", "action": "BUY", "reason_zh": "動能強", "risk_level": "MEDIUM"}]`,
	}
	service := NewService(store, source, generator, arbor.NewLogger())

	record, err := service.Generate(context.Background(), adviceKey("7"))
	if err != nil {
		t.Fatal(err)
	}
	if len(record.Advice) != 2 {
		t.Fatalf("got %d actions, want 2", len(record.Advice))
	}
	if record.Advice[0].Symbol != "2330.TW" || record.Advice[0].Action != models.ActionHold {
		t.Errorf("first action = %+v", record.Advice[0])
	}

	// 500 -> 600 is a 20% profit; the prompt must carry it
	prompt := generator.prompts[0]
	if !strings.Contains(prompt, "20.00%") {
		t.Errorf("prompt missing profit rate:\n%s", prompt)
	}
}

func TestGenerate_QuoteFailureLeavesHoldingUnpriced(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"7": {{ID: "a", UserID: "7", Symbol: "2330.TW", Shares: 100, CostBasis: 500}},
	}}
	generator := &fakeGenerator{output: `[]`}
	service := NewService(store, &fakeMarketSource{}, generator, arbor.NewLogger())

	_, err := service.Generate(context.Background(), adviceKey("7"))
	if err != nil {
		t.Fatalf("quote failure must not fail generation: %v", err)
	}
	if !strings.Contains(generator.prompts[0], "price unavailable") {
		t.Errorf("prompt should flag missing price:\n%s", generator.prompts[0])
	}
}

func TestGenerate_MalformedOutputYieldsEmptyAdvice(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"7": {{ID: "a", UserID: "7", Symbol: "AAPL", Shares: 10, CostBasis: 150}},
	}}
	source := &fakeMarketSource{quotes: map[string]*models.Quote{
		"AAPL": {Symbol: "AAPL", Price: 180, PreviousClose: 178},
	}}

	tests := []struct {
		name   string
		output string
	}{
		{"no array at all", "I cannot advise on this portfolio."},
		{"broken json", `[{"symbol": "AAPL", "action":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := &fakeGenerator{output: tt.output}
			service := NewService(store, source, generator, arbor.NewLogger())

			record, err := service.Generate(context.Background(), adviceKey("7"))
			if err != nil {
				t.Fatalf("malformed output must not fail generation: %v", err)
			}
			if record.Advice == nil || len(record.Advice) != 0 {
				t.Errorf("Advice = %v, want empty non-nil list", record.Advice)
			}
		})
	}
}

func TestGenerate_NormalizesActions(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"7": {{ID: "a", UserID: "7", Symbol: "AAPL", Shares: 10, CostBasis: 150}},
	}}
	source := &fakeMarketSource{quotes: map[string]*models.Quote{
		"AAPL": {Symbol: "AAPL", Price: 180, PreviousClose: 178},
	}}
	generator := &fakeGenerator{
		output: `[{"symbol": "AAPL", "action": "ACCUMULATE", "reason_zh": "看多", "risk_level": "EXTREME"}]`,
	}
	service := NewService(store, source, generator, arbor.NewLogger())

	record, err := service.Generate(context.Background(), adviceKey("7"))
	if err != nil {
		t.Fatal(err)
	}
	if record.Advice[0].Action != models.ActionHold {
		t.Errorf("Action = %q, want clamp to HOLD", record.Advice[0].Action)
	}
	if record.Advice[0].RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %q, want clamp to MEDIUM", record.Advice[0].RiskLevel)
	}
}

func TestGenerate_GeneratorFailurePropagates(t *testing.T) {
	store := &fakeHoldingStore{holdings: map[string][]*models.Holding{
		"7": {{ID: "a", UserID: "7", Symbol: "AAPL", Shares: 10, CostBasis: 150}},
	}}
	generator := &fakeGenerator{err: errors.New("model unavailable")}
	service := NewService(store, &fakeMarketSource{}, generator, arbor.NewLogger())

	_, err := service.Generate(context.Background(), adviceKey("7"))
	if err == nil {
		t.Fatal("generator failure must fail generation")
	}
}

func TestGenerate_HoldingStoreFailurePropagates(t *testing.T) {
	store := &fakeHoldingStore{err: errors.New("db closed")}
	service := NewService(store, &fakeMarketSource{}, &fakeGenerator{}, arbor.NewLogger())

	_, err := service.Generate(context.Background(), adviceKey("7"))
	if err == nil {
		t.Fatal("holding store failure must fail generation")
	}
}

func TestEnrich_ProfitRate(t *testing.T) {
	source := &fakeMarketSource{quotes: map[string]*models.Quote{
		"AAPL": {Symbol: "AAPL", Price: 180, PreviousClose: 178},
	}}
	enriched := Enrich(context.Background(), source, []*models.Holding{
		{Symbol: "AAPL", Shares: 10, CostBasis: 150},
	}, arbor.NewLogger())

	if len(enriched) != 1 {
		t.Fatalf("got %d enriched holdings", len(enriched))
	}
	if math.Abs(enriched[0].ProfitRate-20.0) > 1e-9 {
		t.Errorf("ProfitRate = %f, want 20.0", enriched[0].ProfitRate)
	}
}
