// Package fallback fills gaps in parsed model output so every pipeline
// produces complete records regardless of how the model behaved.
package fallback

import (
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/models"
)

// Labels emitted by the summarization and report prompts
const (
	LabelTitleZH   = "TITLE_ZH"
	LabelSummaryZH = "ZH"
	LabelSummaryEN = "EN"
	LabelSentiment = "SENTIMENT"

	LabelMarketZH  = "MARKET_ZH"
	LabelMarketEN  = "MARKET_EN"
	LabelSuggestZH = "SUGGEST_ZH"
	LabelSuggestEN = "SUGGEST_EN"
)

// Default report sentences used when the model output carries no usable
// field. These are user-visible content, not error messages.
const (
	DefaultMarketZH  = "今日市場資訊不足。"
	DefaultMarketEN  = "Market data insufficient today."
	DefaultSuggestZH = "今日無法提供操作建議。"
	DefaultSuggestEN = "No actionable trading suggestions."
)

// Truncation lengths for raw-body summaries, in runes
const (
	summaryENMaxRunes = 200
	summaryZHMaxRunes = 150
)

// NewsLabels returns the label set for the per-article summarization prompt
func NewsLabels() []string {
	return []string{LabelTitleZH, LabelSummaryZH, LabelSummaryEN, LabelSentiment}
}

// ReportLabels returns the label set for the daily report prompt
func ReportLabels() []string {
	return []string{LabelMarketZH, LabelSuggestZH, LabelMarketEN, LabelSuggestEN}
}

// News builds a complete NewsItem from whatever fields parsed plus the
// source article. Total: any subset of parsed fields, including none,
// yields a complete item.
func News(parsed map[string]string, article models.SourceArticle) models.NewsItem {
	body := article.Body()

	item := models.NewsItem{
		Title:         article.Title,
		OriginalTitle: article.Title,
		URL:           article.URL,
		SummaryEN:     common.TruncateRunes(body, summaryENMaxRunes),
		SummaryZH:     common.TruncateRunes(body, summaryZHMaxRunes),
		Sentiment:     models.SentimentNeutral,
		Source:        article.Source,
		PublishedAt:   article.PublishedAt,
		ImageURL:      article.ImageURL,
	}

	if v := parsed[LabelTitleZH]; v != "" {
		item.Title = v
	}
	if v := parsed[LabelSummaryEN]; v != "" {
		item.SummaryEN = v
	}
	if v := parsed[LabelSummaryZH]; v != "" {
		item.SummaryZH = v
	}
	if v := parsed[LabelSentiment]; v != "" {
		item.Sentiment = models.ParseSentiment(v)
	}

	return item
}

// Report builds a complete DailyReport for the given date key from
// whatever fields parsed. Total for any input, including an empty map.
func Report(parsed map[string]string, date string) *models.DailyReport {
	report := &models.DailyReport{
		Date:               date,
		MarketCommentZH:    DefaultMarketZH,
		MarketCommentEN:    DefaultMarketEN,
		ActionSuggestionZH: DefaultSuggestZH,
		ActionSuggestionEN: DefaultSuggestEN,
	}

	if v := parsed[LabelMarketZH]; v != "" {
		report.MarketCommentZH = v
	}
	if v := parsed[LabelMarketEN]; v != "" {
		report.MarketCommentEN = v
	}
	if v := parsed[LabelSuggestZH]; v != "" {
		report.ActionSuggestionZH = v
	}
	if v := parsed[LabelSuggestEN]; v != "" {
		report.ActionSuggestionEN = v
	}

	return report
}
