package models

import "time"

// AdviceAction values
const (
	ActionBuy  = "BUY"
	ActionHold = "HOLD"
	ActionSell = "SELL"
)

// Risk levels
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// AdviceAction is one per-symbol recommendation within a personal advice
// record
type AdviceAction struct {
	Symbol    string `json:"symbol"`
	Action    string `json:"action"`
	ReasonZH  string `json:"reason_zh"`
	RiskLevel string `json:"risk_level"`
}

// Normalize clamps action and risk level to their closed sets
func (a *AdviceAction) Normalize() {
	switch a.Action {
	case ActionBuy, ActionSell:
	default:
		a.Action = ActionHold
	}
	switch a.RiskLevel {
	case RiskLow, RiskHigh:
	default:
		a.RiskLevel = RiskMedium
	}
}

// Holding is one position in a user's portfolio
type Holding struct {
	ID           string    `json:"id" badgerhold:"key"`
	UserID       string    `json:"user_id" badgerhold:"index"`
	Symbol       string    `json:"symbol"`
	Shares       float64   `json:"shares"`
	CostBasis    float64   `json:"cost_basis"`
	PurchaseDate string    `json:"purchase_date,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EnrichedHolding is a holding joined with its current quote for prompt
// construction
type EnrichedHolding struct {
	Holding
	CurrentPrice float64 `json:"current_price"`
	ProfitRate   float64 `json:"profit_rate"`
}
