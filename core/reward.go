package core

import "github.com/shopspring/decimal"

// Reward is one paid-out reward line on a shiller's history.
type Reward struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Campaign  string          `json:"campaign,omitempty"`
	Task      string          `json:"task,omitempty"`
	CreatedAt string          `json:"createdAt"`
}
