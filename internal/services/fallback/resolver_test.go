package fallback

import (
	"strings"
	"testing"

	"github.com/ternarybob/advisor/internal/models"
)

func testArticle() models.SourceArticle {
	return models.SourceArticle{
		Title:       "Chipmaker beats estimates",
		Description: "Quarterly results came in ahead of expectations on strong data center demand.",
		URL:         "https://example.com/story",
		ImageURL:    "https://example.com/story.jpg",
		Source:      "Example Wire",
		PublishedAt: "2025-03-01T08:00:00Z",
	}
}

func TestNews_AllFieldsParsed(t *testing.T) {
	parsed := map[string]string{
		LabelTitleZH:   "晶片廠財報優於預期",
		LabelSummaryZH: "資料中心需求強勁。",
		LabelSummaryEN: "Data center demand stayed strong.",
		LabelSentiment: "positive",
	}

	item := News(parsed, testArticle())

	if item.Title != "晶片廠財報優於預期" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.SummaryZH != "資料中心需求強勁。" {
		t.Errorf("SummaryZH = %q", item.SummaryZH)
	}
	if item.SummaryEN != "Data center demand stayed strong." {
		t.Errorf("SummaryEN = %q", item.SummaryEN)
	}
	if item.Sentiment != models.SentimentPositive {
		t.Errorf("Sentiment = %q", item.Sentiment)
	}
	if item.OriginalTitle != "Chipmaker beats estimates" {
		t.Errorf("OriginalTitle = %q", item.OriginalTitle)
	}
}

func TestNews_EmptyParse(t *testing.T) {
	article := testArticle()
	item := News(map[string]string{}, article)

	if item.Title != article.Title {
		t.Errorf("Title should fall back to original, got %q", item.Title)
	}
	if !strings.HasPrefix(article.Description, item.SummaryEN) && item.SummaryEN != article.Description {
		t.Errorf("SummaryEN should come from the article body, got %q", item.SummaryEN)
	}
	if item.Sentiment != models.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral", item.Sentiment)
	}
	if item.URL != article.URL || item.ImageURL != article.ImageURL {
		t.Error("passthrough fields should always be populated")
	}
}

func TestNews_PartialParse(t *testing.T) {
	// Only the Chinese summary came back; everything else falls back
	parsed := map[string]string{LabelSummaryZH: "測試"}
	article := testArticle()

	item := News(parsed, article)

	if item.SummaryZH != "測試" {
		t.Errorf("SummaryZH = %q, want parsed value", item.SummaryZH)
	}
	if item.SummaryEN == "" || item.SummaryEN == "測試" {
		t.Errorf("SummaryEN = %q, want truncated article body", item.SummaryEN)
	}
	if item.Sentiment != models.SentimentNeutral {
		t.Errorf("Sentiment = %q, want neutral", item.Sentiment)
	}
	if item.Title != article.Title {
		t.Errorf("Title = %q, want original title", item.Title)
	}
}

func TestNews_TruncationIsRuneSafe(t *testing.T) {
	article := models.SourceArticle{
		Title:       "t",
		Description: strings.Repeat("漢", 300),
	}

	item := News(nil, article)

	if got := len([]rune(item.SummaryEN)); got != 200 {
		t.Errorf("SummaryEN rune length = %d, want 200", got)
	}
	if got := len([]rune(item.SummaryZH)); got != 150 {
		t.Errorf("SummaryZH rune length = %d, want 150", got)
	}
	for _, r := range item.SummaryZH {
		if r != '漢' {
			t.Fatalf("truncation corrupted multibyte text: %q", r)
		}
	}
}

func TestReport_AllDefaults(t *testing.T) {
	report := Report(nil, "2025-03-01")

	if report.Date != "2025-03-01" {
		t.Errorf("Date = %q", report.Date)
	}
	if report.MarketCommentZH != DefaultMarketZH {
		t.Errorf("MarketCommentZH = %q", report.MarketCommentZH)
	}
	if report.MarketCommentEN != DefaultMarketEN {
		t.Errorf("MarketCommentEN = %q", report.MarketCommentEN)
	}
	if report.ActionSuggestionZH != DefaultSuggestZH {
		t.Errorf("ActionSuggestionZH = %q", report.ActionSuggestionZH)
	}
	if report.ActionSuggestionEN != DefaultSuggestEN {
		t.Errorf("ActionSuggestionEN = %q", report.ActionSuggestionEN)
	}
}

func TestReport_FieldSubsets(t *testing.T) {
	tests := []struct {
		name   string
		parsed map[string]string
	}{
		{"market zh only", map[string]string{LabelMarketZH: "大盤收漲。"}},
		{"suggest en only", map[string]string{LabelSuggestEN: "Hold positions."}},
		{"two fields", map[string]string{LabelMarketEN: "Indexes rose.", LabelSuggestZH: "續抱。"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Report(tt.parsed, "2025-03-01")

			// Every field is populated no matter which subset parsed
			if report.MarketCommentZH == "" || report.MarketCommentEN == "" ||
				report.ActionSuggestionZH == "" || report.ActionSuggestionEN == "" {
				t.Fatal("report has empty fields")
			}
			for label, want := range tt.parsed {
				var got string
				switch label {
				case LabelMarketZH:
					got = report.MarketCommentZH
				case LabelMarketEN:
					got = report.MarketCommentEN
				case LabelSuggestZH:
					got = report.ActionSuggestionZH
				case LabelSuggestEN:
					got = report.ActionSuggestionEN
				}
				if got != want {
					t.Errorf("%s = %q, want %q", label, got, want)
				}
			}
		})
	}
}
