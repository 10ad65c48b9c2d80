// Package report builds the daily market report: concurrent index
// snapshot, model commentary, and a cacheable record keyed by date.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/services/fallback"
)

// Service generates daily report records. It implements
// interfaces.TierPipeline for the daily report tier.
type Service struct {
	source    interfaces.MarketDataSource
	generator interfaces.TextGenerator
	symbols   map[string]string
	logger    arbor.ILogger
}

// NewService creates a report pipeline. symbols maps index symbols to
// their display names.
func NewService(source interfaces.MarketDataSource, generator interfaces.TextGenerator, symbols map[string]string, logger arbor.ILogger) *Service {
	return &Service{
		source:    source,
		generator: generator,
		symbols:   symbols,
		logger:    logger,
	}
}

// Tier identifies the pipeline tier
func (s *Service) Tier() models.Tier {
	return models.TierDailyReport
}

// Generate snapshots the configured indexes and asks the model for
// bilingual commentary. Individual symbol failures are skipped; with no
// market data at all the report degrades to its default sentences
// without a model call.
func (s *Service) Generate(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error) {
	snapshot := s.snapshot(ctx)

	record := models.NewRecord(key, time.Now())

	if len(snapshot) == 0 {
		s.logger.Warn().Str("date", key.Period).Msg("No market data available, using default report")
		record.Report = fallback.Report(nil, key.Period)
		return record, nil
	}

	output, err := s.generator.Generate(ctx, reportPrompt(snapshot, key.Period))
	if err != nil {
		return nil, fmt.Errorf("report generation for %s failed: %w", key.Period, err)
	}

	parsed := common.ParseLabeledFields(output, fallback.ReportLabels())
	record.Report = fallback.Report(parsed, key.Period)

	s.logger.Info().
		Str("date", key.Period).
		Int("indexes", len(snapshot)).
		Msg("Daily report generated")

	return record, nil
}

// snapshot fetches all configured index quotes concurrently, best
// effort. Failed symbols are logged and skipped.
func (s *Service) snapshot(ctx context.Context) []models.IndexSnapshot {
	var mu sync.Mutex
	var wg sync.WaitGroup
	snapshots := make([]models.IndexSnapshot, 0, len(s.symbols))

	for symbol, name := range s.symbols {
		wg.Add(1)
		go func(symbol, name string) {
			defer wg.Done()

			quote, err := s.source.GetQuote(ctx, symbol)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Index quote failed, skipping")
				return
			}

			mu.Lock()
			snapshots = append(snapshots, models.IndexSnapshot{Name: name, Quote: *quote})
			mu.Unlock()
		}(symbol, name)
	}
	wg.Wait()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	return snapshots
}

func reportPrompt(snapshot []models.IndexSnapshot, date string) string {
	var b strings.Builder
	b.WriteString("You are a market analyst writing the daily wrap for ")
	b.WriteString(date)
	b.WriteString(".\n\nIndex levels:\n")
	for _, s := range snapshot {
		fmt.Fprintf(&b, "- %s: %.2f (change %+.2f, %+.2f%%)\n",
			s.Name, s.Quote.Price, s.Quote.Change(), s.Quote.ChangePercent())
	}
	b.WriteString("\nReply with exactly four lines in this format:\n")
	b.WriteString("MARKET_ZH: <market commentary in Traditional Chinese>\n")
	b.WriteString("SUGGEST_ZH: <action suggestion in Traditional Chinese>\n")
	b.WriteString("MARKET_EN: <market commentary in English>\n")
	b.WriteString("SUGGEST_EN: <action suggestion in English>\n")
	return b.String()
}
