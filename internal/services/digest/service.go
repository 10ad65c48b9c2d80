// Package digest builds the per-category news digest: fetch, filter,
// summarize, and assemble a cacheable record.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/services/fallback"
)

// News categories
const (
	CategoryInternational = "international"
	CategoryUSFinance     = "us_finance"
)

// Categories returns the digest categories in display order
func Categories() []string {
	return []string{CategoryInternational, CategoryUSFinance}
}

// Service generates news digest records. It implements
// interfaces.TierPipeline for the news tier.
type Service struct {
	source    interfaces.NewsSource
	generator interfaces.TextGenerator
	config    *common.NewsConfig
	logger    arbor.ILogger
}

// NewService creates a digest pipeline
func NewService(source interfaces.NewsSource, generator interfaces.TextGenerator, config *common.NewsConfig, logger arbor.ILogger) *Service {
	return &Service{
		source:    source,
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Tier identifies the pipeline tier
func (s *Service) Tier() models.Tier {
	return models.TierNews
}

// queryForCategory maps a category to its source query
func queryForCategory(category string, pageSize int) interfaces.NewsQuery {
	switch category {
	case CategoryUSFinance:
		return interfaces.NewsQuery{
			Category: category,
			Country:  "us",
			Topic:    "technology",
			PageSize: pageSize,
		}
	default:
		return interfaces.NewsQuery{
			Category: category,
			Query:    "(technology OR tech OR semiconductor OR chip OR AI OR finance OR stock OR market)",
			PageSize: pageSize,
		}
	}
}

// Generate fetches, filters, and summarizes articles for the key's
// category. A source failure fails the whole generation; a per-article
// summarization failure only degrades that article to its fallback form.
func (s *Service) Generate(ctx context.Context, key models.CacheKey) (*models.CachedRecord, error) {
	query := queryForCategory(key.Scope, s.config.PageSize)

	articles, err := s.source.FetchArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("news fetch for %s failed: %w", key.Scope, err)
	}

	kept := s.filterArticles(articles)

	items := make([]models.NewsItem, 0, len(kept))
	for _, article := range kept {
		item := s.summarizeArticle(ctx, article)
		item.ID = uuid.New().String()
		items = append(items, item)
	}

	s.logger.Info().
		Str("category", key.Scope).
		Int("fetched", len(articles)).
		Int("kept", len(items)).
		Msg("News digest generated")

	record := models.NewRecord(key, time.Now())
	record.News = items
	return record, nil
}

// filterArticles drops articles without images or with denylisted title
// keywords, and caps the result at the configured maximum
func (s *Service) filterArticles(articles []models.SourceArticle) []models.SourceArticle {
	kept := make([]models.SourceArticle, 0, s.config.MaxPerCategory)
	for _, article := range articles {
		if article.ImageURL == "" {
			continue
		}
		if s.titleDenied(article.Title) {
			continue
		}
		kept = append(kept, article)
		if len(kept) >= s.config.MaxPerCategory {
			break
		}
	}
	return kept
}

func (s *Service) titleDenied(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range s.config.TitleDenylist {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// summarizeArticle runs one article through the model and resolves the
// result to a complete item. Never fails: a generation error or
// unparseable output both degrade to the fallback fields.
func (s *Service) summarizeArticle(ctx context.Context, article models.SourceArticle) models.NewsItem {
	clean := article
	clean.Description = stripHTML(article.Description)
	clean.Content = stripHTML(article.Content)

	output, err := s.generator.Generate(ctx, summaryPrompt(clean))
	if err != nil {
		s.logger.Warn().Err(err).Str("title", article.Title).Msg("Article summarization failed, using fallback")
		return fallback.News(nil, clean)
	}

	parsed := common.ParseLabeledFields(output, fallback.NewsLabels())
	return fallback.News(parsed, clean)
}

func summaryPrompt(article models.SourceArticle) string {
	var b strings.Builder
	b.WriteString("You are a financial news editor. Summarize the article below.\n")
	b.WriteString("Reply with exactly four lines in this format:\n")
	b.WriteString("TITLE_ZH: <Traditional Chinese translation of the title>\n")
	b.WriteString("ZH: <summary in Traditional Chinese, 150 characters max>\n")
	b.WriteString("EN: <summary in English, 200 characters max>\n")
	b.WriteString("SENTIMENT: <positive, neutral, or negative for stock investors>\n\n")
	b.WriteString("Title: ")
	b.WriteString(article.Title)
	b.WriteString("\nContent: ")
	b.WriteString(article.Body())
	return b.String()
}
