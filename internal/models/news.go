package models

// Sentiment is the closed sentiment set for news summaries
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment normalizes free-form sentiment text to the closed set.
// Unknown or empty values map to neutral.
func ParseSentiment(raw string) Sentiment {
	switch normalizeSentiment(raw) {
	case "positive", "bullish", "利多", "正面":
		return SentimentPositive
	case "negative", "bearish", "利空", "負面":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func normalizeSentiment(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '\t':
			// skip
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// NewsItem is one summarized article within a news digest record
type NewsItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"` // translated title, original on fallback
	OriginalTitle string    `json:"original_title"`
	URL           string    `json:"url"`
	SummaryEN     string    `json:"summary_en"`
	SummaryZH     string    `json:"summary_zh"`
	Sentiment     Sentiment `json:"sentiment"`
	Source        string    `json:"source"`
	PublishedAt   string    `json:"published_at,omitempty"`
	ImageURL      string    `json:"image_url"`
}

// SourceArticle is a raw article as returned by a news source, before
// filtering and summarization
type SourceArticle struct {
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt string
}

// Body returns the best available article text for summarization
func (a SourceArticle) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Description
}

// Quote is a point-in-time price snapshot for one symbol
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previous_close"`
}

// Change returns the absolute move from the previous close
func (q Quote) Change() float64 {
	return q.Price - q.PreviousClose
}

// ChangePercent returns the percentage move from the previous close,
// zero when the previous close is unavailable
func (q Quote) ChangePercent() float64 {
	if q.PreviousClose == 0 {
		return 0
	}
	return (q.Price - q.PreviousClose) / q.PreviousClose * 100
}

// IndexSnapshot is one named index with its quote, used in the daily
// report prompt
type IndexSnapshot struct {
	Name  string `json:"name"`
	Quote Quote  `json:"quote"`
}
