package interfaces

import (
	"context"
	"fmt"

	"github.com/ternarybob/advisor/internal/models"
)

// ProviderError is the uniform failure shape for all external providers.
// The orchestrator treats every provider failure the same way regardless
// of which adapter raised it.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps an adapter failure in the uniform error shape
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// NewsQuery selects which feed a news source should fetch
type NewsQuery struct {
	Category string
	Query    string
	Country  string
	Topic    string
	PageSize int
}

// NewsSource fetches raw articles for a category
type NewsSource interface {
	FetchArticles(ctx context.Context, query NewsQuery) ([]models.SourceArticle, error)
}

// MarketDataSource fetches point-in-time quotes per symbol
type MarketDataSource interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// TextGenerator produces text from a prompt. Implementations wrap LLM
// backends behind a single call shape.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
