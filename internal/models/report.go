package models

// DailyReport is the single market report for one calendar day, in both
// languages
type DailyReport struct {
	Date               string `json:"date"`
	MarketCommentZH    string `json:"market_comment_zh"`
	MarketCommentEN    string `json:"market_comment_en"`
	ActionSuggestionZH string `json:"action_suggestion_zh"`
	ActionSuggestionEN string `json:"action_suggestion_en"`
}
