package digest

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/newsapi"
)

// NewsAPISource adapts the NewsAPI client to the NewsSource interface.
// Queries with a country set use the top-headlines endpoint; everything
// else goes through full-text search.
type NewsAPISource struct {
	client *newsapi.Client
	logger arbor.ILogger
}

// NewNewsAPISource creates a NewsSource backed by NewsAPI.org
func NewNewsAPISource(client *newsapi.Client, logger arbor.ILogger) interfaces.NewsSource {
	return &NewsAPISource{
		client: client,
		logger: logger,
	}
}

// FetchArticles retrieves raw articles for a query
func (s *NewsAPISource) FetchArticles(ctx context.Context, query interfaces.NewsQuery) ([]models.SourceArticle, error) {
	var resp *newsapi.ArticlesResponse
	var err error

	if query.Country != "" {
		resp, err = s.client.TopHeadlines(ctx, newsapi.TopHeadlinesOptions{
			Country:  query.Country,
			Category: query.Topic,
			PageSize: query.PageSize,
		})
	} else {
		resp, err = s.client.Everything(ctx, newsapi.EverythingOptions{
			Query:    query.Query,
			Language: "en",
			SortBy:   "publishedAt",
			PageSize: query.PageSize,
		})
	}
	if err != nil {
		return nil, interfaces.NewProviderError("newsapi", "fetch_articles", err)
	}

	articles := make([]models.SourceArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, models.SourceArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	s.logger.Debug().
		Str("category", query.Category).
		Int("count", len(articles)).
		Msg("Fetched articles")

	return articles, nil
}
