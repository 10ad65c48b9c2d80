package newsapi

import (
	"fmt"
	"time"
)

// EverythingOptions are query parameters for the /everything endpoint.
type EverythingOptions struct {
	Query    string
	Language string
	SortBy   string
	PageSize int
}

// TopHeadlinesOptions are query parameters for the /top-headlines endpoint.
type TopHeadlinesOptions struct {
	Country  string
	Category string
	PageSize int
}

// ArticlesResponse is the envelope returned by both article endpoints.
// On failure the API returns status "error" with code and message set.
type ArticlesResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Article is one raw article from the API.
type Article struct {
	Source      ArticleSource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

// ArticleSource identifies the publisher of an article.
type ArticleSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIError represents an API error response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NewsAPI error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("NewsAPI rate limit exceeded, retry after %v", e.RetryAfter)
}
