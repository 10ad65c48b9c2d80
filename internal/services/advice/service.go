// Package advice builds per-user daily trading advice from the user's
// portfolio holdings and their current quotes.
package advice

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
)

// Service generates personal advice records. It implements
// interfaces.TierPipeline for the personal advice tier.
type Service struct {
	holdings  interfaces.HoldingStorage
	source    interfaces.MarketDataSource
	generator interfaces.TextGenerator
	logger    arbor.ILogger
}

// NewService creates an advice pipeline
func NewService(holdings interfaces.HoldingStorage, source interfaces.MarketDataSource, generator interfaces.TextGenerator, logger arbor.ILogger) *Service {
	return &Service{
		holdings:  holdings,
		source:    source,
		generator: generator,
		logger:    logger,
	}
}

// Tier identifies the pipeline tier
func (s *Service) Tier() models.Tier {
	return models.TierPersonalAdvice
}

// Generate builds advice for the user in key.Scope. A user with no
// holdings gets an empty advice record without a model call. Quote
// failures leave the affected holding unpriced but still advised on.
func (s *Service) Generate(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error) {
	record := models.NewRecord(key, time.Now())
	record.Advice = []models.AdviceAction{}

	holdings, err := s.holdings.GetHoldingsByUser(ctx, key.Scope)
	if err != nil {
		return nil, fmt.Errorf("loading holdings for user %s failed: %w", key.Scope, err)
	}
	if len(holdings) == 0 {
		s.logger.Info().Str("user_id", key.Scope).Msg("No holdings, returning empty advice")
		return record, nil
	}

	enriched := Enrich(ctx, s.source, holdings, s.logger)

	output, err := s.generator.Generate(ctx, advicePrompt(enriched, key.Period))
	if err != nil {
		return nil, fmt.Errorf("advice generation for user %s failed: %w", key.Scope, err)
	}

	record.Advice = parseActions(output, s.logger)

	s.logger.Info().
		Str("user_id", key.Scope).
		Int("holdings", len(holdings)).
		Int("actions", len(record.Advice)).
		Msg("Personal advice generated")

	return record, nil
}

// Enrich joins each holding with its current quote, concurrently. A
// failed quote leaves CurrentPrice and ProfitRate at zero.
func Enrich(ctx context.Context, source interfaces.MarketDataSource, holdings []*models.Holding, logger arbor.ILogger) []models.EnrichedHolding {
	enriched := make([]models.EnrichedHolding, len(holdings))

	var wg sync.WaitGroup
	for i, holding := range holdings {
		enriched[i] = models.EnrichedHolding{Holding: *holding}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()

			quote, err := source.GetQuote(ctx, symbol)
			if err != nil {
				logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote failed, holding left unpriced")
				return
			}

			enriched[i].CurrentPrice = quote.Price
			if enriched[i].CostBasis > 0 {
				enriched[i].ProfitRate = (quote.Price - enriched[i].CostBasis) / enriched[i].CostBasis * 100
			}
		}(i, holding.Symbol)
	}
	wg.Wait()

	sort.Slice(enriched, func(i, j int) bool {
		return enriched[i].Symbol < enriched[j].Symbol
	})

	return enriched
}

// parseActions extracts the JSON array from the model output and
// normalizes each action. Output the model mangled beyond recovery
// yields an empty list, never an error.
func parseActions(output string, logger arbor.ILogger) []models.AdviceAction {
	raw := common.ExtractJSONArray(output)
	if raw == "" {
		logger.Warn().Msg("No JSON array in advice output, returning empty advice")
		return []models.AdviceAction{}
	}

	var actions []models.AdviceAction
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		logger.Warn().Err(err).Msg("Advice output unparseable, returning empty advice")
		return []models.AdviceAction{}
	}

	for i := range actions {
		actions[i].Normalize()
	}
	return actions
}

func advicePrompt(holdings []models.EnrichedHolding, date string) string {
	var b strings.Builder
	b.WriteString("You are a portfolio advisor. Today is ")
	b.WriteString(date)
	b.WriteString(".\n\nThe user holds:\n")
	for _, h := range holdings {
		if h.CurrentPrice > 0 {
			fmt.Fprintf(&b, "- %s: %.0f shares, cost %.2f, current %.2f, profit %.2f%%\n",
				h.Symbol, h.Shares, h.CostBasis, h.CurrentPrice, h.ProfitRate)
		} else {
			fmt.Fprintf(&b, "- %s: %.0f shares, cost %.2f, current price unavailable\n",
				h.Symbol, h.Shares, h.CostBasis)
		}
	}
	b.WriteString("\nFor each symbol give one recommendation. Reply with a JSON array only, no other text:\n")
	b.WriteString(`[{"symbol": "...", "action": "BUY|HOLD|SELL", "reason_zh": "<reason in Traditional Chinese>", "risk_level": "LOW|MEDIUM|HIGH"}]`)
	b.WriteString("\n")
	return b.String()
}
